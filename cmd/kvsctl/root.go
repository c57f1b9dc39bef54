package main

import (
	"fmt"
	"os"

	"github.com/cuemby/kvs/pkg/config"
	"github.com/cuemby/kvs/pkg/log"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "kvsctl",
	Short: "kvsctl - embeddable type-safe key-value store",
	Long: `kvsctl drives a local, file-backed key-value store: typed scalar
preferences, TTL-expiring entries, and single-object documents, each
persisted as one file per named store under --data-dir.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("kvsctl version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("data-dir", "", "Base directory stores are resolved under (default: platform data dir)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().Bool("encrypt", false, "Encrypt store files with AES-256-GCM")
	rootCmd.PersistentFlags().String("passphrase", "", "Encryption passphrase (overrides the config's passphrase_env)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ~/.kvsctl.yaml)")

	cobra.OnInitialize(initConfigAndLogging)

	rootCmd.AddCommand(prefCmd)
	rootCmd.AddCommand(ttlCmd)
	rootCmd.AddCommand(docCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfigAndLogging() {
	path, _ := rootCmd.PersistentFlags().GetString("config")
	if path == "" {
		if defaultPath, err := config.DefaultPath(); err == nil {
			path = defaultPath
		}
	}

	loaded, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		loaded = config.Default()
	}
	cfg = loaded

	if v, _ := rootCmd.PersistentFlags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if rootCmd.PersistentFlags().Changed("log-json") {
		cfg.LogJSON, _ = rootCmd.PersistentFlags().GetBool("log-json")
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})
}
