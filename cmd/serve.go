package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/metrics"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session API and Prometheus metrics over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Server.Addr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}
	gin.SetMode(cfg.Server.Mode)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	m := metrics.New()
	eng, err := buildEngine(ctx, cfg, st, m, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	sink, closeSink, err := buildSink(ctx, cfg.Results, st, m, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	srv := server.New(ctx, server.Deps{
		Composer:   eng.composer,
		Session:    cfg.Session,
		Policy:     cfg.Integrity,
		Sink:       sink,
		Metrics:    m,
		Logger:     logger,
		SessionTTL: cfg.Server.SessionTTL,
	})
	logger.Info("serving", "addr", addr, "provider", eng.provider.ModelID(), "bank", eng.bank.Version())
	if err := srv.Run(ctx, addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
