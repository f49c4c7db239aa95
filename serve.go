package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fmuoria/talent-screening-agent/internal/api"
	"github.com/fmuoria/talent-screening-agent/internal/report"
	"github.com/fmuoria/talent-screening-agent/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides PORT and config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	screeningAgent, cleanup, err := newAgent(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	server := api.NewServer(screeningAgent, session.NewRegistry(), report.NewPDFRenderer())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown failed: %v", err)
		}
	}()

	fmt.Printf("Starting Talent Screening Agent on port %d...\n", cfg.Port)
	fmt.Printf("Endpoints:\n")
	fmt.Printf("  POST /sessions - Start a screening session\n")
	fmt.Printf("  POST /sessions/{id}/resumes - Upload and evaluate resumes\n")
	fmt.Printf("  GET /sessions/{id}/ranking - Get ranked candidates\n")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}
