package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Xevion/go-buzz/internal"
	"github.com/Xevion/go-buzz/internal/config"
	"github.com/Xevion/go-buzz/internal/logging"
)

var (
	logger *slog.Logger
	cfg    *config.Config

	configPath string
	serverURL  string
)

var rootCmd = &cobra.Command{
	Use:           "buzz",
	Short:         "Periodic buzz alarm",
	Long:          "buzz keeps a live clock and fires an audible and visual alert at configured daily times.",
	Version:       internal.Version(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("BUZZ_CONFIG"), "path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "daemon URL for client commands (default http://<http_addr>)")

	rootCmd.AddCommand(serveCmd, timesCmd, audioCmd, volumeCmd, testCmd, statusCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called before every command)
func loadConfig() error {
	// a missing .env is fine
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment, cfg.LogLevel)
	return nil
}
