package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/lifelog/internal/config"
	"github.com/lazypower/lifelog/internal/logger"
	"github.com/lazypower/lifelog/internal/store"
)

var (
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lifelog",
	Short: "A personal journal for events, routines, logs and notes",
	Long: `lifelog keeps a private journal: event timestamps, PDCA cycles, weather,
timed logs such as sleep, proverbs, daily routines, study notes and
why-why mind graphs. Single Go binary backed by SQLite.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
		return logger.Init(logger.Config{
			Debug:      cfg.Log.Debug,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.lifelog/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(stampCmd)
	rootCmd.AddCommand(mcpCmd)
}

// openDB opens the configured database, falling back to the default path.
func openDB() (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
