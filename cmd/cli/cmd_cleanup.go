package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/SongSearch/pkg/utils"
)

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete the catalog database",
		Long: `Remove the SQLite catalog file together with its -wal and -shm
sidecars. A missing database is not an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			removed, err := utils.DeleteDatabase(cfg.Storage.DBPath)
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}
			if removed == nil {
				removed = []string{}
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"database": cfg.Storage.DBPath,
					"removed":  removed,
				})
			}
			if len(removed) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No database found at %s\n", cfg.Storage.DBPath)
				return nil
			}
			for _, p := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", p)
			}
			return nil
		},
	}
}
