package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"studybud/internal/auth"
	"studybud/internal/config"
	"studybud/internal/database"
	"studybud/internal/handlers"
	"studybud/internal/middleware"
	"studybud/internal/services"
	"studybud/internal/view"
	"studybud/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := logger.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		logger.Fatal("Invalid logging configuration: %v", err)
	}

	// Initialize database
	db, err := database.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		logger.Fatal("Failed to migrate database: %v", err)
	}

	// Initialize services
	authService := auth.NewService(db, cfg)
	sessions := auth.NewSessions(auth.NewCookieStore(cfg), authService)
	roomService := services.NewRoomService(db)
	messageService := services.NewMessageService(db)

	renderer, err := view.NewPageRenderer()
	if err != nil {
		logger.Fatal("Failed to load templates: %v", err)
	}

	var limiter *middleware.LimiterStore
	if cfg.RateLimit.PerMinute > 0 {
		limiter = middleware.NewLimiterStore(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, time.Minute)
	}

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(authService, sessions, renderer)
	roomHandlers := handlers.NewRoomHandlers(roomService, sessions, renderer)
	messageHandlers := handlers.NewMessageHandlers(messageService, sessions, renderer)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handlers.NewRouter(authHandlers, roomHandlers, messageHandlers, sessions, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error: %v", err)
		}
	}()
	logger.Info("Server started on http://localhost%s (%s store)", cfg.Server.Port, cfg.Database.Driver)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				logger.Info("Server shutting down...")
				err := server.Shutdown(ctx)
				// in-flight requests are done with the store by now
				if closeErr := db.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
				return err
			},
			"rate-limiter": func(ctx context.Context) error {
				if limiter != nil {
					limiter.Stop()
				}
				return nil
			},
		},
	)

	exitCode := <-wait
	logger.Info("Server exited with code %d", exitCode)
	os.Exit(exitCode)
}
