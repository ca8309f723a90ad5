package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/SongSearch/pkg/songsearch"
)

type resultView struct {
	songView
	Similarity float64 `json:"similarity"`
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank catalog songs against a free-text query",
		Long: `Search embeds the query once and ranks every song passing the filters
by L2 distance. Similarity is 1/(1+distance), so 1.0 is an exact match.

Examples:
  songsearch search "operatic rock from the seventies"
  songsearch search --artist Queen --top-k 3 "stadium anthem"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			topK, _ := cmd.Flags().GetInt("top-k")

			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			resp, err := svc.Search(commandContext(cmd), songsearch.SearchRequest{
				Query:   strings.Join(args, " "),
				Filters: filtersFromFlags(cmd),
				TopK:    topK,
			})
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			views := make([]resultView, len(resp.Results))
			for i, r := range resp.Results {
				views[i] = resultView{
					songView: newSongView(songsearch.CatalogSong{
						Fingerprint: r.Fingerprint,
						Song:        r.Song,
					}),
					Similarity: r.Similarity,
				}
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"query":      resp.Query,
					"top_k":      resp.TopK,
					"candidates": resp.Candidates,
					"results":    views,
				})
			}

			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No matching songs")
				return nil
			}
			fmt.Fprintf(out, "Top %d of %d candidate(s) for %q:\n\n", len(views), resp.Candidates, resp.Query)
			for i, v := range views {
				printSong(out, i+1, v.songView, v.Similarity)
			}
			return nil
		},
	}
	cmd.Flags().Int("top-k", 0, "Number of results (0 uses the configured default)")
	addFilterFlags(cmd)
	return cmd
}
