package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jobdeck/jobdeck/internal/jobfeed"
	"github.com/jobdeck/jobdeck/internal/notify"
)

func TestStreamRejectsBadMinFit(t *testing.T) {
	e := echo.New()
	handler := &StreamHandler{Hub: notify.NewHub(4, log.New(io.Discard, "", 0))}

	for _, q := range []string{"minFit=abc", "minFit=-1", "minFit=101"} {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/stream?"+q, nil)
		rec := httptest.NewRecorder()
		ctx := e.NewContext(req, rec)
		ctx.Set("user_id", "user-1")

		err := handler.stream(ctx)
		httpErr, ok := err.(*echo.HTTPError)
		if !ok || httpErr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %v", q, err)
		}
	}
}

func TestStreamDeliversMatchingJobs(t *testing.T) {
	hub := notify.NewHub(4, log.New(io.Discard, "", 0))
	e := echo.New()
	handler := &StreamHandler{Hub: hub}
	e.GET("/api/jobs/stream", handler.stream)

	ts := httptest.NewServer(e)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/jobs/stream?minFit=50", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type: %s", ct)
	}

	// the subscription activates asynchronously; keep publishing until the
	// event comes through
	score := 80.0
	go func() {
		ticker := time.NewTicker(25 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				hub.Publish(jobfeed.Job{ID: "job-1", Source: "linkedin", Title: "Go Engineer",
					PublishedAt: time.Now(), FitScore: &score})
			}
		}
	}()

	reader := bufio.NewReader(resp.Body)
	var event string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if strings.HasPrefix(line, "event: ") {
			event = strings.TrimPrefix(line, "event: ")
			continue
		}
		if strings.HasPrefix(line, "data: ") && event == "new_job" {
			var jr JobResponse
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &jr); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if jr.ID != "job-1" || jr.Source != "LINKEDIN" || jr.FitScore != 80 {
				t.Fatalf("unexpected event payload: %+v", jr)
			}
			return
		}
	}
}

func TestStreamFiltersBelowThreshold(t *testing.T) {
	hub := notify.NewHub(4, log.New(io.Discard, "", 0))
	e := echo.New()
	handler := &StreamHandler{Hub: hub}
	e.GET("/api/jobs/stream", handler.stream)

	ts := httptest.NewServer(e)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/jobs/stream?minFit=90", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	low, high := 50.0, 95.0
	go func() {
		ticker := time.NewTicker(25 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				hub.Publish(jobfeed.Job{ID: "low", PublishedAt: time.Now(), FitScore: &low})
				hub.Publish(jobfeed.Job{ID: "high", PublishedAt: time.Now(), FitScore: &high})
			}
		}
	}()

	reader := bufio.NewReader(resp.Body)
	var event string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if strings.HasPrefix(line, "event: ") {
			event = strings.TrimPrefix(line, "event: ")
			continue
		}
		if strings.HasPrefix(line, "data: ") && event == "new_job" {
			var jr JobResponse
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &jr); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			// only the job above the threshold may ever arrive
			if jr.ID != "high" {
				t.Fatalf("job below threshold delivered: %+v", jr)
			}
			return
		}
	}
}
