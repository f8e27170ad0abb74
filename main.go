package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/irodav/taskdeck-be/internal/api"
	"github.com/irodav/taskdeck-be/internal/auth"
	"github.com/irodav/taskdeck-be/internal/config"
	"github.com/irodav/taskdeck-be/internal/database"
	"github.com/irodav/taskdeck-be/internal/logger"
	"github.com/irodav/taskdeck-be/internal/monitoring"
	"github.com/irodav/taskdeck-be/internal/ratelimit"
	"github.com/irodav/taskdeck-be/internal/services"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db, eventService)
	taskService := services.NewTaskService(db, eventService)

	// Admission control and token issuance
	limiter := ratelimit.NewLimiter(cfg.RateLimit)
	tokens := auth.NewManager(cfg.JWT)

	// Set up and run the background sweeper
	sweeper, err := monitoring.NewSweeper(cfg.SweepSchedule, limiter, taskService, eventService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure sweeper")
	}
	sweeper.Run()

	// Set up router
	router := api.NewRouter(cfg, limiter, tokens, userService, taskService, eventService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
