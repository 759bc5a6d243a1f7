package main

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

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/humanintuition/insight/internal/server"
	"github.com/humanintuition/insight/internal/storage"
	"github.com/humanintuition/insight/internal/whisper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the transcript upload web server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides configured port)")
}

func runServer(cmd *cobra.Command) error {
	fmt.Fprintf(os.Stderr, "insight version %s\n", version)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	// Audio uploads are optional; without a Whisper key the server still
	// handles text transcripts.
	var transcriber server.Transcriber
	if err := cfg.RequireWhisperKey(); err != nil {
		printWarning("No transcription API key configured; audio uploads will be rejected")
	} else {
		transcriber = whisper.New(cfg.Whisper.APIKey, cfg.Whisper.BaseURL, cfg.Whisper.Model)
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("closing storage", "error", err)
		}
	}()

	handler := server.NewHandler(server.Deps{
		Store:       store,
		Analyst:     analyzer,
		Transcriber: transcriber,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Port 5000 is often taken by macOS AirPlay Receiver, hence the 5001 default.
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Fprintf(os.Stderr, "insight listening on http://%s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve insight tools over MCP stdio",
	Long: `Expose transcript analysis as MCP tools over stdio, for use from MCP
clients (editors, chat apps).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		analyzer, err := newAnalyzer(cfg)
		if err != nil {
			return err
		}

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mcpSrv := server.NewMCPServer(server.MCPDeps{
			Store:    store,
			Analyzer: analyzer,
		})
		stdioSrv := mcpserver.NewStdioServer(mcpSrv)

		slog.Info("MCP server started (stdio transport)")
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
