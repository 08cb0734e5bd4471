package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"monu/internal/api"
	"monu/internal/web"
	"monu/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the backend API",
	Long: `Start the backend HTTP API.

Endpoints:
  POST /check-grammar  {"text": "..."}
  POST /highlight      {"original": "...", "corrected": "..."}
  GET  /health
  GET  /history?limit=N  (when caching is on)
  DELETE /history
  GET  /metrics
  GET  /ws`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var webAddr, webBackend string

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the browser frontend",
	Args:  cobra.NoArgs,
	RunE:  runWeb,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	webCmd.Flags().StringVar(&webAddr, "addr", "", "listen address (default from config, :5000)")
	webCmd.Flags().StringVar(&webBackend, "backend", "", "backend base URL (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	o, history, cleanup, err := buildOracle(cfg, GetRootDir())
	if err != nil {
		return fmt.Errorf("failed to create oracle: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := usecase.NewCheckUseCase(o, cfg.Server.MaxTextChars)
	return api.NewServer(checker, cfg.Server).WithHistory(history).ListenAndServe(ctx)
}

func runWeb(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if webAddr != "" {
		cfg.Web.Addr = webAddr
	}
	if webBackend != "" {
		cfg.Web.BackendURL = webBackend
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := web.NewBackendClient(cfg.Web.BackendURL, cfg.Web.Timeout())
	return web.NewServer(client, cfg.Web.Addr).ListenAndServe(ctx)
}
