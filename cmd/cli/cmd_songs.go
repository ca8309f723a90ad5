package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/SongSearch/internal/service"
	"github.com/himanishpuri/SongSearch/pkg/songsearch"
)

// songView is the JSON shape of a catalog song on the command line.
type songView struct {
	Hash        string `json:"hash"`
	Artist      string `json:"artist"`
	Song        string `json:"song"`
	Album       string `json:"album"`
	Year        *int   `json:"year"`
	Description string `json:"description"`
	Model       string `json:"model,omitempty"`
}

func newSongView(cs songsearch.CatalogSong) songView {
	return songView{
		Hash:        cs.Fingerprint,
		Artist:      cs.Artist,
		Song:        cs.Title,
		Album:       cs.Album,
		Year:        cs.Year,
		Description: cs.Description,
		Model:       cs.Model,
	}
}

// printSong writes one numbered entry. similarity is shown when non-negative.
func printSong(w io.Writer, i int, s songView, similarity float64) {
	year := "unknown"
	if s.Year != nil {
		year = fmt.Sprint(*s.Year)
	}
	fmt.Fprintf(w, "%d. %q by %s\n", i, s.Song, s.Artist)
	if similarity >= 0 {
		fmt.Fprintf(w, "   Similarity: %.4f\n", similarity)
	}
	if s.Album != "" {
		fmt.Fprintf(w, "   Album: %s (%s)\n", s.Album, year)
	} else {
		fmt.Fprintf(w, "   Year:  %s\n", year)
	}
	if s.Description != "" {
		fmt.Fprintf(w, "   %s\n", s.Description)
	}
	fmt.Fprintf(w, "   Hash:  %s\n\n", s.Hash)
}

// addFilterFlags registers the exact-match filters shared by list and search.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("artist", "", "Only songs by this artist")
	cmd.Flags().String("song", "", "Only songs with this title")
	cmd.Flags().String("album", "", "Only songs from this album")
	cmd.Flags().Int("year", 0, "Only songs from this year")
}

func filtersFromFlags(cmd *cobra.Command) songsearch.Filters {
	artist, _ := cmd.Flags().GetString("artist")
	song, _ := cmd.Flags().GetString("song")
	album, _ := cmd.Flags().GetString("album")
	year, _ := cmd.Flags().GetInt("year")
	return songsearch.Filters{Artist: artist, Title: song, Album: album, Year: year}
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a song to the catalog",
		Long: `Add a song record. At least one of --artist or --song is required.

Examples:
  songsearch add --artist Queen --song "Bohemian Rhapsody" --album "A Night at the Opera" --year 1975
  songsearch add --song "Untitled demo" --description "lo-fi piano sketch"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			artist, _ := cmd.Flags().GetString("artist")
			title, _ := cmd.Flags().GetString("song")
			album, _ := cmd.Flags().GetString("album")
			description, _ := cmd.Flags().GetString("description")

			song := songsearch.Song{Artist: artist, Title: title, Album: album, Description: description}
			if cmd.Flags().Changed("year") {
				year, _ := cmd.Flags().GetInt("year")
				song.Year = &year
			}

			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			res, err := svc.AddSong(commandContext(cmd), song)
			if err != nil {
				return fmt.Errorf("failed to add song: %w", err)
			}

			message := "Song added successfully"
			if !res.Created {
				message = "Song already exists"
			}
			cliLogger().Infof("%s: %s", message, res.Fingerprint)

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"hash":    res.Fingerprint,
					"created": res.Created,
					"message": message,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n   Hash: %s\n", message, res.Fingerprint)
			return nil
		},
	}
	cmd.Flags().String("artist", "", "Artist name")
	cmd.Flags().String("song", "", "Song title")
	cmd.Flags().String("album", "", "Album name")
	cmd.Flags().Int("year", 0, "Release year (omit when unknown)")
	cmd.Flags().String("description", "", "Free-text description")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <hash>",
		Short: "Show a song by hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			song, err := svc.GetSong(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to get song %s: %w", args[0], err)
			}

			view := newSongView(*song)
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			printSong(cmd.OutOrStdout(), 1, view, -1)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <hash>",
		Short: "Delete a song by hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.DeleteSong(commandContext(cmd), args[0]); err != nil {
				return fmt.Errorf("failed to delete song %s: %w", args[0], err)
			}
			cliLogger().Infof("Deleted song %s", args[0])

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"hash":    args[0],
					"message": fmt.Sprintf("Song with hash %s has been deleted.", args[0]),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Song with hash %s has been deleted.\n", args[0])
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog songs in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			songs, err := svc.ListSongs(commandContext(cmd), filtersFromFlags(cmd))
			if err != nil {
				return fmt.Errorf("failed to list songs: %w", err)
			}

			views := make([]songView, len(songs))
			for i, s := range songs {
				views[i] = newSongView(s)
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"songs": views,
					"count": len(views),
				})
			}

			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No songs in catalog")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Found %d song(s):\n\n", len(views))
			for i, v := range views {
				printSong(cmd.OutOrStdout(), i+1, v, -1)
			}
			return nil
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			created, err := service.Seed(commandContext(cmd), svc, cliLogger())
			if err != nil {
				return err
			}
			total := len(songsearch.SampleSongs())

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]int{
					"created": created,
					"total":   total,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d of %d demo songs\n", created, total)
			return nil
		},
	}
}
