// Command anyvar serves and drives the AnyVar variation registration,
// retrieval, and search engine: `anyvar serve` runs the HTTP API and
// async ingest worker, `anyvar ingest` runs the VCF pipeline directly
// against a file pair, and `anyvar config` manages ~/.anyvar.yaml the
// way vibe-vep config manages ~/.vibe-vep.yaml.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "anyvar",
		Short:         "AnyVar variation registration, retrieval, and search engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.anyvar.yaml)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig wires viper to read ~/.anyvar.yaml (or --config) and to
// bind every §6.3 key to an ANYVAR_-prefixed environment variable, e.g.
// ANYVAR_STORAGE_URI for storage.uri.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".anyvar")
	}

	viper.SetEnvPrefix("anyvar")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("storage.uri", "memory://")
	viper.SetDefault("storage.batch_limit", 100_000)
	viper.SetDefault("storage.max_pending_batches", 50)
	viper.SetDefault("storage.flush_on_exit", true)
	viper.SetDefault("storage.merge_strategy", "insert_notin")
	viper.SetDefault("dataproxy.uri", "local://")
	viper.SetDefault("async.work_dir", "/tmp/anyvar-async")
	viper.SetDefault("async.broker_uri", "memory://")
	viper.SetDefault("async.result_uri", "memory://")
	viper.SetDefault("async.run_ttl_seconds", 86400)
	viper.SetDefault("async.soft_time_limit_seconds", 3600)
	viper.SetDefault("async.hard_time_limit_seconds", 3900)
	viper.SetDefault("async.workers", 4)
	viper.SetDefault("http.addr", ":8000")
	viper.SetDefault("http.failed_run_status_code", 500)
	viper.SetDefault("log.level", "info")
}

// buildLogger constructs a zap.Logger honoring log.level.
func buildLogger() (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		return nil, fmt.Errorf("parse log.level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
