package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ignite/kcheck/internal/oracle/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Oracle HTTP service backed by the configured LLM provider",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :8787)")
	serveCmd.Flags().Int("rate-limit", 0, "Requests per minute per client IP (0 disables)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, bindings{
		"serve.addr":       "addr",
		"serve.rate_limit": "rate-limit",
	})
	if err != nil {
		return err
	}

	cfg.Log.Console = os.Stderr
	log, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	o, err := newLLMOracle(cmd, cfg, st.EventRepo(), log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Serve.Addr,
		Handler: server.New(o, server.Options{
			RatePerMinute: cfg.Serve.RatePerMinute,
			Burst:         cfg.Serve.Burst,
			Log:           log.Named("server"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("oracle service listening",
			zap.String("addr", cfg.Serve.Addr),
			zap.String("provider", cfg.LLM.Provider))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
