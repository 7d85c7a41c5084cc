package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/config"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/store"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "clario",
	Short: "Proctored career assessments",
	Long: `Clario generates a tiered multiple-choice assessment for a career topic
and runs it as a timed, proctored session, in the terminal or over HTTP.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runAssess,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides CLARIO_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CLARIO_DB env var)")
	rootCmd.PersistentFlags().StringSlice("env-file", []string{".env"}, "Env files to load before reading CLARIO_* variables")
	addAssessFlags(rootCmd)

	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the config file, env files, and flags into cfg and
// installs the logger.
func loadConfig(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")

	c, err := config.Load(path, envFiles...)
	if err != nil {
		return err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		c.Store.Path = p
	}
	cfg = c
	logger = config.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return nil
}

// resolveDBPath returns the database path using --db / config (highest
// priority), then CLARIO_DB, then the default XDG path.
func resolveDBPath() (string, error) {
	if p := cfg.Store.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
