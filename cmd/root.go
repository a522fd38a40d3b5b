package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/civtab/internal/config"
	"github.com/KaramelBytes/civtab/internal/logging"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	logLevel string
	strict   bool

	// Loaded configuration and per-run logging state
	cfg    *cfgpkg.Global
	logger *slog.Logger = logging.Discard()
	runCtx              = context.Background()
)

var rootCmd = &cobra.Command{
	Use:   "civtab",
	Short: "civtab: filter, count and summarize civic registry tables",
	Long: `civtab loads CSV, TSV and XLSX exports of civic registries, filters them by
column values, counts rows per group for every combination of filter values,
and computes grouped statistics, with results printed as tables or exported to
CSV, XLSX, JSON or YAML.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.civtab/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "treat missing filter columns as errors")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	// Apply CLI overrides if provided
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if debug {
		level = "debug"
	}
	if strict {
		cfg.StrictColumns = true
	}
	logger = logging.New(logging.Options{Level: level, Format: cfg.LogFormat, Writer: cmd.ErrOrStderr()})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx = logging.WithRunID(ctx, uuid.NewString())
	logger.DebugContext(runCtx, "configuration loaded",
		slog.String("command", cmd.CommandPath()),
		slog.String("recipes_dir", cfg.RecipesDir),
		slog.Bool("strict_columns", cfg.StrictColumns))
	return nil
}
