// Package server exposes assessment sessions over HTTP. A browser client
// drives the session and streams its integrity signals to /events; the
// server owns the controllers, their clocks and their monitors.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/integrity"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/metrics"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
)

// Deps are the collaborators every session shares.
type Deps struct {
	Composer *session.Composer
	Session  session.Config
	Policy   integrity.Policy

	// Sink receives every terminal record. May be nil.
	Sink session.Sink

	// Metrics is served on /metrics and records integrity outcomes.
	// May be nil.
	Metrics *metrics.Metrics

	Logger *slog.Logger

	// SessionTTL bounds how long finished and unstarted sessions are kept.
	SessionTTL time.Duration

	// Tick is the session clock interval. Zero means one second.
	Tick time.Duration
}

// Server is the HTTP surface.
type Server struct {
	deps     Deps
	base     context.Context
	registry *Registry
	engine   *gin.Engine
	logger   *slog.Logger
}

// New builds a Server. Session goroutines live until base is cancelled
// or their session ends.
func New(base context.Context, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Tick <= 0 {
		deps.Tick = time.Second
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = 15 * time.Minute
	}
	logger := deps.Logger.With("component", "server")

	s := &Server{
		deps:     deps,
		base:     base,
		registry: NewRegistry(deps.SessionTTL, logger),
		logger:   logger,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Registry returns the session registry.
func (s *Server) Registry() *Registry { return s.registry }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.registry.Len()})
	})
	if s.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	api := r.Group("/api/sessions")
	{
		api.POST("", s.createSession)
		api.GET("/:id", s.getSession)
		api.GET("/:id/record", s.getRecord)
		api.POST("/:id/start", s.transition((*session.Controller).Start))
		api.POST("/:id/next", s.transition((*session.Controller).Next))
		api.POST("/:id/finish", s.transition((*session.Controller).Finish))
		api.POST("/:id/reenter", s.transition((*session.Controller).ReenterExclusiveMode))
		api.POST("/:id/answers", s.answer)
		api.POST("/:id/events", s.postEvents)
	}
	return r
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"remote_addr", c.ClientIP(),
			"latency", time.Since(start))
	}
}

// Run serves on addr and sweeps the registry until ctx ends, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.registry.Run(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// open creates a controller and starts its clock, monitor and warning
// pump. The returned entry is registered before loading so a failed
// load can still be inspected.
func (s *Server) open() (*entry, error) {
	env := &remoteEnv{}
	opts := []session.Option{
		session.WithEnvironment(env),
		session.WithLogger(s.deps.Logger),
	}
	if s.deps.Sink != nil {
		opts = append(opts, session.WithSink(s.deps.Sink))
	}
	ctrl, err := session.New(s.deps.Composer, s.deps.Session, opts...)
	if err != nil {
		return nil, err
	}

	var monOpts []integrity.MonitorOption
	monOpts = append(monOpts, integrity.WithLogger(s.deps.Logger))
	if s.deps.Metrics != nil {
		monOpts = append(monOpts, integrity.WithRecorder(s.deps.Metrics))
	}
	mon := integrity.NewMonitor(ctrl, s.deps.Policy, monOpts...)

	ctx, cancel := context.WithCancel(s.base)
	e := &entry{
		ctrl:    ctrl,
		env:     env,
		events:  make(chan integrity.Event, 64),
		cancel:  cancel,
		created: s.registry.now(),
	}

	go session.RunClock(ctx, ctrl, s.deps.Tick)
	go mon.Run(ctx, e.events)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ctrl.Done():
				return
			case w := <-mon.Warnings():
				e.addWarning(w)
			}
		}
	}()

	s.registry.add(ctrl.ID(), e)
	return e, nil
}
