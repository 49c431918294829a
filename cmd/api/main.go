package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/nithinshettyy/appointment-system/appointment"
	"github.com/nithinshettyy/appointment-system/auth"
	"github.com/nithinshettyy/appointment-system/dashboard"
	"github.com/nithinshettyy/appointment-system/db"
	"github.com/nithinshettyy/appointment-system/httpapi"
)

type config struct {
	addr          string
	databaseURL   string
	jwtSecret     string
	migrationsDir string
}

func loadConfig() (config, error) {
	cfg := config{
		addr:          os.Getenv("ADDR"),
		databaseURL:   os.Getenv("DATABASE_URL"),
		jwtSecret:     os.Getenv("JWT_SECRET"),
		migrationsDir: os.Getenv("MIGRATIONS_DIR"),
	}
	if cfg.addr == "" {
		cfg.addr = ":8080"
	}
	if cfg.migrationsDir == "" {
		cfg.migrationsDir = "migrations"
	}
	if cfg.databaseURL == "" {
		return config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.jwtSecret == "" {
		return config{}, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

func main() {
	_ = godotenv.Load()

	logger := log.New(os.Stdout, "api: ", log.LstdFlags)

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.databaseURL)
	if err != nil {
		logger.Fatalf("bootstrap database pool: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool, cfg.migrationsDir); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	authService := auth.NewService(auth.NewRepository(pool), cfg.jwtSecret)
	appointmentService := appointment.NewService(appointment.NewRepository(pool))
	watcher := appointment.NewWatcher(pool, logger)

	server := httpapi.NewServer(authService, appointmentService, dashboard.WatcherSource{Watcher: watcher}, logger)

	httpServer := &http.Server{
		Addr:              cfg.addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Printf("listening on %s", cfg.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Fatalf("server: %v", err)
	}
	logger.Print("shutdown complete")
}
