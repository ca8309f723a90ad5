package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/SongSearch/internal/config"
	"github.com/himanishpuri/SongSearch/internal/service"
	"github.com/himanishpuri/SongSearch/pkg/logger"
	"github.com/himanishpuri/SongSearch/pkg/songsearch"
)

var version = "0.3.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "songsearch",
		Short: "SongSearch - semantic search over a song catalog",
		Long: `songsearch manages a local catalog of song metadata and ranks it
against free-text queries using vector embeddings.

Songs are stored in SQLite and keyed by a SHA-256 fingerprint of their
metadata, so adding the same song twice is a no-op.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", os.Getenv("SONGSEARCH_CONFIG"), "Path to YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database (overrides config and SONGSEARCH_DB_PATH)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAddCmd(),
		newGetCmd(),
		newDeleteCmd(),
		newListCmd(),
		newSearchCmd(),
		newSeedCmd(),
		newCleanupCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "songsearch version %s\n", version)
			return nil
		},
	}
}

// loadConfig resolves the config file, environment and --db flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Storage.DBPath = db
	}
	return cfg, nil
}

// openService builds the catalog service. Logs go to stderr so --json
// output stays parseable.
func openService(cmd *cobra.Command) (songsearch.Service, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log := service.ConfigureLogger(cfg.Logging)
	log.SetOutput(cmd.ErrOrStderr())

	svc, err := service.New(commandContext(cmd), cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func cliLogger() *logger.Logger {
	return logger.GetLogger().Named("cli")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
