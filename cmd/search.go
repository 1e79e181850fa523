package cmd

import (
	"fmt"
	"strings"

	"github.com/brogergvhs/nelo/internal/providers"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	flagSearchTags    []string
	flagSearchExclude []string
	flagSearchStatus  string
	flagSearchOrder   string
	flagCursor        string
	flagPick          bool
)

var searchCmd = &cobra.Command{
	Use:   "search [title]",
	Short: "Search the catalog by title, genres and status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cursor, err := providers.ParseCursor(flagCursor)
		if err != nil {
			return err
		}

		s, err := newSession(globalOptions())
		if err != nil {
			return err
		}

		req := providers.SearchRequest{
			Title:        strings.Join(args, " "),
			IncludedTags: flagSearchTags,
			ExcludedTags: flagSearchExclude,
			Status:       flagSearchStatus,
			OrderBy:      flagSearchOrder,
		}

		res, err := s.src.Search(cmd.Context(), req, cursor)
		if err != nil {
			return err
		}

		if flagPick && !res.Empty() {
			return pickAndShow(cmd, s, res.Items)
		}

		printTiles(cmd.OutOrStdout(), res.Items, res.Next)
		return nil
	},
}

var moreCmd = &cobra.Command{
	Use:       "more <section-id>",
	Short:     "Page through a home section (latest_updates, new_manga)",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(providers.ListingLatestUpdates), string(providers.ListingNewManga)},
	RunE: func(cmd *cobra.Command, args []string) error {
		cursor, err := providers.ParseCursor(flagCursor)
		if err != nil {
			return err
		}

		s, err := newSession(globalOptions())
		if err != nil {
			return err
		}

		res, err := s.src.GetViewMoreItems(cmd.Context(), args[0], cursor)
		if err != nil {
			return err
		}
		if res.Empty() && cursor == nil {
			s.log.Warnf("section %q has no listing", args[0])
		}

		if flagPick && !res.Empty() {
			return pickAndShow(cmd, s, res.Items)
		}

		printTiles(cmd.OutOrStdout(), res.Items, res.Next)
		return nil
	},
}

func init() {
	searchCmd.Flags().StringSliceVar(&flagSearchTags, "tag", nil, "genre ids to include (see `nelo tags`)")
	searchCmd.Flags().StringSliceVar(&flagSearchExclude, "exclude-tag", nil, "genre ids to exclude")
	searchCmd.Flags().StringVar(&flagSearchStatus, "status", "", "ongoing or completed")
	searchCmd.Flags().StringVar(&flagSearchOrder, "order", "", "latest, newest, topview or az")

	for _, c := range []*cobra.Command{searchCmd, moreCmd} {
		c.Flags().StringVar(&flagCursor, "cursor", "", "resume from the cursor printed by a previous page")
		c.Flags().BoolVar(&flagPick, "pick", false, "choose a result interactively and show its details")
	}

	rootCmd.AddCommand(searchCmd, moreCmd)
}

func pickAndShow(cmd *cobra.Command, s *session, tiles []providers.MangaTile) error {
	items := make([]string, 0, len(tiles))
	for _, t := range tiles {
		items = append(items, fmt.Sprintf("%s  (%s)", t.Title, t.ID))
	}

	prompt := promptui.Select{
		Label: "Select manga",
		Items: items,
		Size:  12,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return fmt.Errorf("selection cancelled")
	}

	m, err := s.src.GetMangaDetails(cmd.Context(), tiles[idx].ID)
	if err != nil {
		return err
	}

	printManga(cmd.OutOrStdout(), m, s.src.MangaShareURL(m.ID))
	return nil
}
