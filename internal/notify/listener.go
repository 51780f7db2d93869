package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/jobdeck/jobdeck/internal/jobfeed"
)

// DefaultChannel is the Postgres NOTIFY channel raised by the jobs insert
// trigger; the payload is the new row's id.
const DefaultChannel = "new_job"

const (
	DefaultMinReconnect = time.Second
	DefaultMaxReconnect = time.Minute

	pingInterval   = 90 * time.Second
	hydrateTimeout = 5 * time.Second
)

// RowLoader hydrates a full posting from the id carried in a notification.
type RowLoader interface {
	GetJob(ctx context.Context, id string) (jobfeed.Job, error)
}

// Listener holds the single upstream notification connection and feeds the
// Hub. Reconnects are handled by pq.Listener with bounded exponential
// backoff between the configured intervals; events raised while disconnected
// are not replayed (delivery stays at-most-once), but live delivery resumes
// as soon as the connection is back.
type Listener struct {
	pql     *pq.Listener
	channel string
	loader  RowLoader
	hub     *Hub
	logger  *log.Logger
}

func NewListener(dsn, channel string, minReconnect, maxReconnect time.Duration, loader RowLoader, hub *Hub, logger *log.Logger) *Listener {
	if channel == "" {
		channel = DefaultChannel
	}
	if minReconnect <= 0 {
		minReconnect = DefaultMinReconnect
	}
	if maxReconnect <= 0 {
		maxReconnect = DefaultMaxReconnect
	}
	if logger == nil {
		logger = log.Default()
	}
	l := &Listener{channel: channel, loader: loader, hub: hub, logger: logger}
	l.pql = pq.NewListener(dsn, minReconnect, maxReconnect, l.onEvent)
	return l
}

func (l *Listener) onEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		listenerUpGauge.Set(1)
		l.logger.Printf("[LISTEN] connected, listening on %q", l.channel)
	case pq.ListenerEventReconnected:
		listenerUpGauge.Set(1)
		l.logger.Printf("[LISTEN] reconnected, live delivery resumed")
	case pq.ListenerEventDisconnected:
		listenerUpGauge.Set(0)
		l.logger.Printf("[LISTEN] disconnected: %v", err)
	case pq.ListenerEventConnectionAttemptFailed:
		l.logger.Printf("[LISTEN] reconnect attempt failed: %v", err)
	}
}

// Run blocks until ctx is cancelled, receiving notifications and handing
// hydrated rows to the hub. A nil notification marks a reconnect; nothing is
// replayed for it.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.pql.Listen(l.channel); err != nil {
		return fmt.Errorf("listen on %q: %w", l.channel, err)
	}
	defer l.pql.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-l.pql.Notify:
			if n == nil {
				continue
			}
			eventsCounter.Inc()
			l.handle(ctx, n.Extra)
		case <-time.After(pingInterval):
			// nudge pq.Listener to notice a dead connection
			go func() {
				if err := l.pql.Ping(); err != nil {
					l.logger.Printf("[LISTEN] ping: %v", err)
				}
			}()
		}
	}
}

// handle hydrates one notification and publishes it. A failed hydration
// drops that event only; the listener stays up.
func (l *Listener) handle(ctx context.Context, jobID string) {
	if jobID == "" {
		return
	}
	hctx, cancel := context.WithTimeout(ctx, hydrateTimeout)
	defer cancel()
	job, err := l.loader.GetJob(hctx, jobID)
	if err != nil {
		l.logger.Printf("[LISTEN] hydrate job %s: %v", jobID, err)
		return
	}
	l.hub.Publish(job)
}
