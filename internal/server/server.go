package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/jobdeck/jobdeck/config"
	"github.com/jobdeck/jobdeck/internal/embedder"
	"github.com/jobdeck/jobdeck/internal/jobfeed"
	"github.com/jobdeck/jobdeck/internal/notify"
	"github.com/jobdeck/jobdeck/internal/runtime"
	"github.com/jobdeck/jobdeck/internal/store"
)

// httpErrorHandler renders every handler error as an HTTPError envelope
// and logs the request it failed on.
func httpErrorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, HTTPError{Error: msg})
		}
	}
}

func Run(cfgPath, addr string) error {
	cfg, err := appconfig.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	e.HTTPErrorHandler = httpErrorHandler(log.New(log.Writer(), "[HTTP] ", log.LstdFlags))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie", "Authorization"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	dsn, err := cfg.Databases.Postgres.DSN()
	if err != nil {
		return err
	}
	if err := Migrate("file://migrations", dsn, "up", 0); err != nil {
		return err
	}

	ctx := context.Background()
	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}
	st.IvfflatProbes = cfg.Query.IvfflatProbes

	secret := cfg.General.JWTSecret
	if secret == "" {
		return fmt.Errorf("jwt secret not configured (general.jwt_secret)")
	}

	// Redis backs the filter-bounds cache. The API works without it,
	// every facets request just hits Postgres.
	var rdb *redis.Client
	if cfg.Databases.Redis.Host != "" && cfg.Databases.Redis.Port != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Databases.Redis.Host, cfg.Databases.Redis.Port),
			Password: cfg.Databases.Redis.Password,
			DB:       cfg.Databases.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("[HTTP] redis unavailable, filter bounds cache disabled: %v", err)
			rdb = nil
		}
	} else {
		log.Printf("[HTTP] redis not configured, filter bounds cache disabled")
	}

	emb := embedder.New(cfg.Embedder.BaseURL, cfg.Embedder.Timeout)

	hub := notify.NewHub(cfg.Notify.Buffer, nil)
	lst := notify.NewListener(dsn, cfg.Notify.Channel, cfg.Notify.MinReconnect, cfg.Notify.MaxReconnect,
		st, hub, nil)
	go func() {
		if err := lst.Run(ctx); err != nil {
			log.Printf("[LISTEN] stopped: %v", err)
		}
	}()

	auth := &AuthHandler{Store: st, Secret: []byte(secret), SecureCookie: cfg.General.Env == "prod"}

	api := e.Group("/api")
	auth.Register(api.Group("/auth"))

	withAuth := runtime.EchoAuthMiddleware(auth.Secret)

	jh := &JobsHandler{Store: st, Planner: &jobfeed.Planner{Store: st}}
	jh.Register(api.Group("/jobs"), withAuth)

	fh := &FiltersHandler{Store: st, Redis: rdb}
	fh.Register(api.Group("/jobs"), withAuth)

	sh := &StreamHandler{Hub: hub}
	sh.Register(api.Group("/jobs"), withAuth)

	ph := &PipelineHandler{Store: st}
	ph.Register(api.Group("/pipeline"), withAuth)

	mh := &ProfileHandler{Store: st, Embedder: emb}
	mh.Register(api.Group("/me"), withAuth)

	if addr == "" {
		addr = cfg.General.Listen
		if addr != "" && addr[0] != ':' {
			addr = ":" + addr
		}
		if addr == "" {
			addr = ":8080"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
