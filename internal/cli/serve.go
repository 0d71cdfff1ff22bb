package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spetersoncode/ago/internal/server"
	"github.com/spf13/cobra"
)

// Serve command flags
var (
	servePort int
	serveHost string
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config, 18081)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host address to bind to (default from config, localhost)")

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing relative-time formatting and marks as JSON.

Endpoints:
  GET /api/format?ts=<ms>[&abbrev=true][&now=<ms>]
  GET /api/marks[?limit=N]
  GET /api/marks/{name}
  GET /api/health

Examples:
  ago serve                    # Start on the configured port
  ago serve --port 8080        # Start on a custom port
  ago serve --host 0.0.0.0     # Bind to all interfaces`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	c, err := clock()
	if err != nil {
		return err
	}

	cfg := GetConfig()
	srvConfig := server.Config{
		Port:       cfg.Server.Port,
		Host:       cfg.Server.Host,
		DB:         database.DB,
		Clock:      c,
		Abbreviate: IsAbbreviate(),
	}
	if servePort != 0 {
		srvConfig.Port = servePort
	}
	if serveHost != "" {
		srvConfig.Host = serveHost
	}

	srv, err := server.New(srvConfig)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	OutputLine("ago server listening at http://%s", srv.Address())
	OutputLine("Press Ctrl+C to stop")

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-stop:
		OutputLine("\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	OutputLine("Server stopped")
	return nil
}
