package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"vibeapps/internal/config"
	"vibeapps/internal/db"
	"vibeapps/internal/handlers"
	"vibeapps/internal/metrics"
	"vibeapps/internal/middleware"
	"vibeapps/internal/router"
	"vibeapps/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	// Initialize Database
	if err := db.Init(cfg.DatabaseURL); err != nil {
		slog.Error("init database", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 异步变更推送
	feed := services.NewChangeFeed(collector)
	go feed.Run(ctx)

	engine := services.NewEngine(db.DB, services.Options{
		CommentMinLength: cfg.CommentMinLength,
		Feed:             feed,
		Metrics:          collector,
	})

	limiter, err := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	if err != nil {
		slog.Error("create rate limiter", "err", err)
		os.Exit(1)
	}

	// 拒绝未知字段
	binding.EnableDecoderDisallowUnknownFields = true

	// Initialize Gin
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("vibeapps_session", store))

	// Middleware
	r.Use(middleware.LoadUser(db.DB))

	var auth *handlers.AuthHandler
	if cfg.GoogleClientID != "" {
		auth = handlers.NewGoogleAuthHandler(db.DB, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.SiteURL)
	} else {
		slog.Warn("GOOGLE_CLIENT_ID not set, login routes disabled")
	}

	router.RegisterRoutes(r, router.Deps{
		DB:       db.DB,
		Engine:   engine,
		Feed:     feed,
		Limiter:  limiter,
		Gatherer: reg,
		Auth:     auth,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// SSE streams end with the process context
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "err", err)
	}
	slog.Info("server stopped")
}
