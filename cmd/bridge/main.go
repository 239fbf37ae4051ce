package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"wconnect/internal/logging"
	"wconnect/internal/relay"
)

var (
	addr        string
	name        string
	corsOrigins []string
	queueTTL    time.Duration
	pruneEvery  time.Duration
	debug       bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "bridge",
		Short:        "WalletConnect v1 bridge server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.ConfigureRuntime("bridge")
			if !debug {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := relay.NewServer(relay.ServerConfig{
				Name:          name,
				CORSOrigins:   corsOrigins,
				QueueTTL:      queueTTL,
				PruneInterval: pruneEvery,
				Logger:        &log.Logger,
			})
			if err := srv.Run(ctx, addr); err != nil {
				log.Error().Err(err).Msg("bridge stopped")
				return err
			}
			log.Info().Msg("bridge shut down")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&name, "name", "bridge", "server name used in /info and metrics")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origin", nil, "allowed CORS origin (repeatable; default any)")
	cmd.Flags().DurationVar(&queueTTL, "queue-ttl", 24*time.Hour, "how long messages for absent subscribers are held")
	cmd.Flags().DurationVar(&pruneEvery, "prune-interval", time.Minute, "how often expired held messages are dropped")
	cmd.Flags().BoolVar(&debug, "debug", false, "run gin in debug mode")
	return cmd
}
