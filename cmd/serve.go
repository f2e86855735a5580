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

	"github.com/ziadkadry99/umlgen/internal/render"
	"github.com/ziadkadry99/umlgen/internal/server"
	"github.com/ziadkadry99/umlgen/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web editor and HTTP API",
	Long: `Starts an HTTP server with a browser editor, a JSON API for generation,
encoding and export, and a websocket that streams viewer state. With
--watch the given markup file is applied to the session on every save.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides config)")
	serveCmd.Flags().String("watch", "", "markup file to apply on every change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	watchPath, _ := cmd.Flags().GetString("watch")

	session, hist, cleanup, err := newSession(cfg, true)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.New(server.Config{
		Port:     cfg.Server.Port,
		AllowAll: cfg.Server.AllowAllOrigins,
	}, session, render.NewFetcher(nil, appLog), hist, appLog)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchPath != "" {
		w, err := watch.New(watchPath, session, appLog)
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx, nil); err != nil {
				appLog.Error(err, "watcher stopped")
			}
		}()
		fmt.Fprintf(os.Stderr, "  Watching: %s\n", w.Path())
	}

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Error(err, "server shutdown")
		}
	}()

	fmt.Fprintf(os.Stderr, "umlgen server %s starting on %s\n", Version, urlText(fmt.Sprintf("http://localhost:%d", cfg.Server.Port)))
	fmt.Fprintf(os.Stderr, "  Provider: %s (%s)\n", cfg.Provider, cfg.Model)
	fmt.Fprintf(os.Stderr, "  Renderer: %s\n", cfg.Render.BaseURL)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
