package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/office-hr/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := startHTTPServer(); err != nil {
			fmt.Fprintf(os.Stderr, "server: %v\n", err)
			os.Exit(1)
		}
	},
}

func startHTTPServer() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Env,
		logger.WithFormat(cfg.Observability.Logging.Format),
		logger.WithLevel(cfg.Observability.Logging.Level))
	lg := logger.LoggerWrapper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	repos, err := openRepositories(ctx, cfg.Database)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	app := newApplication(cfg, repos, lg)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		lg.Info("starting HTTP server", "address", addr, "driver", cfg.Database.Driver)
		serverErrChan <- server.ListenAndServe()
	}()

	var serveErr error
	select {
	case sig := <-sigChan:
		lg.Info("received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("server shutdown error", "error", err)
	}
	if err := app.Shutdown(shutdownCtx); err != nil {
		lg.Error("application shutdown error", "error", err)
	}

	slog.Info("server stopped")
	return serveErr
}
