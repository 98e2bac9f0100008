package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/round-server/internal/config"
	"github.com/robalobadob/wordle/apps/round-server/internal/database"
	"github.com/robalobadob/wordle/apps/round-server/internal/game"
	"github.com/robalobadob/wordle/apps/round-server/internal/httpserver"
	"github.com/robalobadob/wordle/apps/round-server/internal/metrics"
	"github.com/robalobadob/wordle/apps/round-server/internal/store"
	"github.com/robalobadob/wordle/apps/round-server/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	list, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	scoring, _ := game.ParseScoring(cfg.Scoring)
	engine, err := game.NewEngine(list.Words(), game.WithScoring(scoring))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build engine")
	}

	db, err := database.OpenMigrated(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()

	srv := httpserver.New(httpserver.Deps{
		Config:  cfg,
		Engine:  engine,
		Words:   list,
		Store:   store.NewMemoryStore(),
		DB:      db,
		Metrics: metrics.New("wordle"),
	})

	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Int("words", list.Len()).
			Str("scoring", string(scoring)).
			Dur("round_ttl", cfg.RoundTTL).
			Msg("starting round server")
		if err := srv.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server stopped")
}

func setupLogging(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
