package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyaudit/internal/config"
	"github.com/abhisek/studyaudit/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "studyaudit",
	Short: "Quiz yourself on your study material",
	Long: "StudyAudit turns a document or a topic into a practice quiz, grades your answers\n" +
		"and keeps a cognitive audit of your last sessions.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYAUDIT_DB)")
	rootCmd.PersistentFlags().String("config", "", "Path to a studyaudit.yaml config file")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config, if any, and the
// environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then the configured db, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// openStore loads configuration and opens the database.
func openStore(cmd *cobra.Command) (config.Config, string, *store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return config.Config{}, "", nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return config.Config{}, "", nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return config.Config{}, "", nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, dbPath, st, nil
}
