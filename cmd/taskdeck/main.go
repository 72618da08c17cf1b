package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/monocle-dev/taskdeck/db"
	"github.com/monocle-dev/taskdeck/internal/auth"
	"github.com/monocle-dev/taskdeck/internal/config"
	"github.com/monocle-dev/taskdeck/internal/handlers"
	"github.com/monocle-dev/taskdeck/internal/logger"
	"github.com/monocle-dev/taskdeck/internal/router"
	"github.com/monocle-dev/taskdeck/internal/scheduler"
	"github.com/monocle-dev/taskdeck/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskdeck: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be set.
	envErr := godotenv.Load()

	cfg, err := config.Load()

	if err != nil {
		return err
	}

	log, logCloser, err := logger.New(cfg.Env, cfg.Log, os.Stdout)

	if err != nil {
		return err
	}
	defer logCloser.Close()

	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file loaded")
	}

	conn, err := db.Connect(cfg.Database.Driver, cfg.Database.DSN)

	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect to database")
		return err
	}
	defer db.Close(conn)

	if err := db.MigrateDatabase(conn); err != nil {
		log.Error().Err(err).Msg("failed to migrate database")
		return err
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer)

	if err != nil {
		return err
	}

	identity := services.NewIdentityService(conn, log, tokens, services.SessionConfig{
		TTL:          cfg.Session.TTL,
		RememberTTL:  cfg.Session.RememberTTL,
		PasswordCost: cfg.Session.BcryptCost,
	})

	h := handlers.New(handlers.Deps{
		Logger:    log,
		DB:        conn,
		Identity:  identity,
		Projects:  services.NewProjectService(conn, log),
		Tasks:     services.NewTaskService(conn, log),
		Dashboard: services.NewDashboardService(conn, log),
		Cookie: handlers.CookieConfig{
			Domain: cfg.CookieDomain,
			Secure: !cfg.IsLocal(),
		},
	})

	sched := scheduler.NewScheduler(log)
	scheduler.ScheduleSessionSweep(sched, identity, cfg.Session.SweepInterval, log)
	defer sched.Stop()

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr: net.JoinHostPort("", cfg.Port),
		Handler: router.NewRouter(router.Options{
			Handler:        h,
			Sessions:       identity,
			Logger:         log,
			AllowedOrigins: cfg.Origins(),
		}),
	}

	serveErr := make(chan error, 1)

	go func() {
		log.Info().
			Str("env", cfg.Env).
			Str("port", cfg.Port).
			Msg("starting http server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("failed to listen and serve http")
			return err
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down http server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shut down http server")
		return err
	}

	log.Info().Msg("shut down http server")

	return nil
}
