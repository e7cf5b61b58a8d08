package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/consultdesk/consultdesk/db"
	"github.com/consultdesk/consultdesk/internal/auth"
	"github.com/consultdesk/consultdesk/internal/billing"
	"github.com/consultdesk/consultdesk/internal/config"
	"github.com/consultdesk/consultdesk/internal/handlers"
	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/reports"
	"github.com/consultdesk/consultdesk/internal/router"
	"github.com/consultdesk/consultdesk/internal/scheduler"
	"github.com/consultdesk/consultdesk/internal/services"
	"github.com/consultdesk/consultdesk/internal/store"
	"github.com/consultdesk/consultdesk/internal/timetrack"
	"github.com/gin-gonic/gin"
	flags "github.com/jessevdk/go-flags"
)

const (
	logFilename     = "consultdesk.log"
	shutdownTimeout = 10 * time.Second
)

// seedDemoUser creates the demo user on first start and returns it.
func seedDemoUser(ctx context.Context, st *store.Store, cfg *config.Config) (*models.User, error) {
	hash, err := auth.HashPassword(cfg.DemoPassword)
	if err != nil {
		return nil, err
	}
	return st.EnsureUser(ctx, &models.User{
		Username:     cfg.DemoUsername,
		PasswordHash: hash,
		Name:         cfg.DemoName,
		Email:        cfg.DemoEmail,
		Title:        cfg.SenderTitle,
		Address:      cfg.SenderAddress,
	})
}

func sender(cfg *config.Config, demo *models.User) billing.Sender {
	s := billing.Sender{
		Name:    cfg.SenderName,
		Title:   cfg.SenderTitle,
		Address: cfg.SenderAddress,
		Email:   cfg.SenderEmail,
	}
	if demo != nil {
		if s.Name == "" {
			s.Name = demo.Name
		}
		if s.Email == "" {
			s.Email = demo.Email
		}
	}
	return s
}

func _main() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return nil
		}
		return err
	}

	if err := initLogRotator(filepath.Join(cfg.LogDir, logFilename)); err != nil {
		return err
	}
	defer logRotator.Close()
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return err
	}

	log.Infof("Starting ConsultDesk (driver %s, time zone %s)", cfg.DBDriver, cfg.Location())

	gdb, err := db.ConnectDatabase(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %v", err)
	}
	if err := db.MigrateDatabase(gdb); err != nil {
		return fmt.Errorf("migrate database: %v", err)
	}
	st := store.New(gdb, cfg.StoreTimeout)

	if err := auth.SetSecret(cfg.JWTSecret); err != nil {
		return err
	}

	ctx := context.Background()
	var demo *models.User
	demoUsername := ""
	if !cfg.NoDemo {
		demo, err = seedDemoUser(ctx, st, cfg)
		if err != nil {
			return fmt.Errorf("seed demo user: %v", err)
		}
		demoUsername = demo.Username
		log.Infof("Demo mode enabled as %s", demo.Username)
	}

	notifier := services.NewNotifier(cfg.SlackWebhook, cfg.DiscordWebhook)
	billingOpts := []billing.Option{billing.WithLocation(cfg.Location())}
	if notifier.Enabled() {
		billingOpts = append(billingOpts, billing.WithNotifier(notifier))
	}

	timer := timetrack.New(st)
	hub := handlers.NewHub(cfg.Origins)
	h := handlers.New(handlers.Options{
		Store:   st,
		Timer:   timer,
		Billing: billing.New(st, billingOpts...),
		Reports: reports.New(st, cfg.Location()),
		Hub:     hub,
		Sender:  sender(cfg, demo),
	})

	sched := scheduler.New(scheduler.Config{
		Timers:     timer,
		MaxRunning: cfg.TimerMaxRunning(),
		JobTimeout: cfg.StoreTimeout * 4,
		OnStopped: func(entries []models.TimeEntry) {
			seen := make(map[string]bool)
			for _, e := range entries {
				if !seen[e.UserID] {
					seen[e.UserID] = true
					hub.BroadcastRefresh(e.UserID, handlers.ResourceTimeEntries)
				}
			}
		},
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %v", err)
	}
	defer sched.Stop()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr: ":" + cfg.Listen,
		Handler: router.NewRouter(h, router.Config{
			Users:          st,
			DemoUsername:   demoUsername,
			AllowedOrigins: cfg.Origins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Infof("Received %v, shutting down", s)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Graceful shutdown failed: %v", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}

	log.Infof("Exiting")
	return nil
}

func main() {
	if err := _main(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
