package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mortargolf/backend/internal/api"
	"github.com/mortargolf/backend/internal/config"
	"github.com/mortargolf/backend/internal/database"
	"github.com/mortargolf/backend/internal/game"
	"github.com/mortargolf/backend/internal/logging"
	"github.com/mortargolf/backend/internal/migrations"
	"github.com/mortargolf/backend/internal/redis"
	"github.com/mortargolf/backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logging is not configured yet
		logging.Setup("info", true)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, !cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Match history is optional; without a database matches still run.
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			log.Info().Msg("running DB migrations on startup")
			if err := migrations.RunMigrations(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
				log.Fatal().Err(err).Msg("failed to run migrations")
			}
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set; match history will not be recorded")
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable; running without snapshots or fan-out")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	course := game.DefaultCourse()
	if cfg.CourseFile != "" {
		course, err = game.LoadCourse(cfg.CourseFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.CourseFile).Msg("failed to load course")
		}
	}
	log.Info().Str("course", course.Name).Int("holes", course.HoleCount()).Int("par", course.TotalPar()).Msg("course loaded")

	manager := game.InitializeManager(ctx, db, rdb, cfg, course, ws.MatchHub, log.Logger)
	manager.StartReaper(ctx, 30*time.Second)
	ws.StartEventSubscriber(ctx, rdb, manager.InstanceID())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("instance", manager.InstanceID()).Msg("starting MortarGolf server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
