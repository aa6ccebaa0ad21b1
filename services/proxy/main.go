// proxy is the HTTP front-end for PaLM text generation.
//
//   GET  /        liveness string
//   POST /prompt  {"prompt": "..."} → generateText, upstream body relayed as-is
//
// PALM_API_KEY is read from the environment on every call. The env file
// (.env, or ENV_FILE) must exist at startup.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nerdprompt/palm-proxy/services/proxy/internal"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := internal.LoadEnv(internal.EnvFile()); err != nil {
		log.Fatal().Err(err).Msg("failed to load env file")
	}

	cfg := internal.ConfigFromEnv()
	gin.SetMode(gin.ReleaseMode)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		gin.SetMode(gin.DebugMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info().Msg("shutdown signal, stopping proxy")
		cancel()
	}()

	srv := internal.NewServer(cfg, internal.NewPalmClient())

	log.Info().
		Str("addr", cfg.ListenAddr()).
		Str("env_file", cfg.EnvFile).
		Msg("palm proxy online")

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
