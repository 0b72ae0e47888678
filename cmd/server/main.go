package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sprintdeck/sprintdeck/internal/config"
	"github.com/sprintdeck/sprintdeck/internal/engine"
	"github.com/sprintdeck/sprintdeck/internal/httpapi"
	"github.com/sprintdeck/sprintdeck/internal/hub"
	"github.com/sprintdeck/sprintdeck/internal/store"
	"github.com/sprintdeck/sprintdeck/internal/sweeper"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	if err := st.Migrate(); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, log)
	eng := engine.New(st, h, log)

	sw := sweeper.New(st, log, sweeper.Config{
		PresenceInterval: cfg.PresenceSweepInterval,
		PresenceMaxAge:   cfg.PresenceMaxAge,
		RoomInterval:     cfg.RoomSweepInterval,
		RoomInactiveDays: cfg.RoomInactiveDays,
	})
	sw.Start(ctx)
	defer sw.Stop()

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.New(eng, h, log).Routes(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
