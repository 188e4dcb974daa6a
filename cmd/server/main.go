package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/securevox/whisperbridge/internal/bridge"
	"github.com/securevox/whisperbridge/internal/config"
	serverhttp "github.com/securevox/whisperbridge/internal/http"
	"github.com/securevox/whisperbridge/internal/whisper"
	"github.com/securevox/whisperbridge/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.LoadLogging().Apply()
		log.Fatal().Err(err).Msg("failed to parse config")
	}
	cfg.Logging.Apply()

	log.Info().
		Bool("native", whisper.NativeAvailable()).
		Str("system_info", whisper.SystemInfo()).
		Msg("whisper engine")

	tctx, err := bridge.Init(cfg.ModelPath)
	if err != nil {
		log.Fatal().Err(err).Str("model", cfg.ModelPath).Msg("failed to load model")
	}

	log.Info().
		Str("model", tctx.ModelPath()).
		Bool("multilingual", tctx.IsMultilingual()).
		Msg("model ready")

	wss := ws.NewServer(cfg, tctx)
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      serverhttp.NewRouter(cfg, tctx, wss),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Msg("whisperbridge server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Int("sessions", wss.Sessions()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		wss.CloseAll()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	tctx.Free()
	if err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}
