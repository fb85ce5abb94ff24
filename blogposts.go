// Package blogposts is a small in-memory blog post service built with Go and
// Echo. It serves a JSON CRUD API over an ordered collection of posts, plus
// an RSS feed and an HTML index of the same collection.
package blogposts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
)

// App is the central service. It wires together the store, limiter,
// handlers and middleware.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  PostStore

	writeLimiter *RateLimiter
	registry     *prometheus.Registry
	customRoutes []func(*App)
}

// New builds an App ready to serve: the store is opened (and seeded unless
// Config.SkipSeed is set) and all middleware and routes are registered.
func New(cfg Config, opts ...Option) (*App, error) {
	cfg.setDefaults()

	lvl, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("blogposts: %w", err)
	}

	a := &App{
		Config:   cfg,
		Echo:     echo.New(),
		registry: prometheus.NewRegistry(),
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(lvl)

	for _, opt := range opts {
		opt(a)
	}

	if a.Store == nil {
		store, err := NewStore(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("blogposts: init store: %w", err)
		}
		a.Store = store
	}

	if !cfg.SkipSeed {
		if err := Seed(context.Background(), a.Store, SamplePosts); err != nil {
			a.Store.Close()
			return nil, fmt.Errorf("blogposts: %w", err)
		}
	}

	if cfg.WriteLimit > 0 {
		a.writeLimiter = NewRateLimiter(cfg.WriteLimit, time.Minute)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a, nil
}

// Start listens on Config.Addr and blocks until the server stops.
func (a *App) Start() error {
	a.Echo.Logger.Infof("blogposts: listening on %s (store=%s)", a.Config.Addr, a.Config.Store)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully, waiting for in-flight requests.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/", a.handleIndex)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/healthz", handleHealth)

	g := e.Group("/blog-posts")
	if a.writeLimiter != nil {
		g.Use(writeLimitMiddleware(a.writeLimiter))
	}
	g.GET("", a.handleListPosts)
	g.POST("", a.handleCreatePost)
	g.GET("/:id", a.handleGetPost)
	g.PUT("/:id", a.handleUpdatePost)
	g.DELETE("/:id", a.handleDeletePost)

	if !a.Config.DisableMetrics {
		a.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "blogposts",
			Name:      "posts",
			Help:      "Number of blog posts currently held by the store.",
		}, a.countPosts))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: a.registry,
		}))
	}
}

func (a *App) countPosts() float64 {
	n, err := a.Store.Len(context.Background())
	if err != nil {
		return 0
	}
	return float64(n)
}

// Close releases the store and stops background work.
func (a *App) Close() error {
	if a.writeLimiter != nil {
		a.writeLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func parseLogLevel(s string) (log.Lvl, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
