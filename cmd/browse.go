package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/brogergvhs/nelo/internal/chapters"
	"github.com/brogergvhs/nelo/internal/providers"
	"github.com/brogergvhs/nelo/internal/ui"
	"github.com/brogergvhs/nelo/internal/util"

	"github.com/spf13/cobra"
)

var detailsCmd = &cobra.Command{
	Use:   "details <manga-id>",
	Short: "Show a manga's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(globalOptions())
		if err != nil {
			return err
		}

		m, err := s.src.GetMangaDetails(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printManga(cmd.OutOrStdout(), m, s.src.MangaShareURL(m.ID))
		return nil
	},
}

var chaptersCmd = &cobra.Command{
	Use:   "chapters <manga-id>",
	Short: "List a manga's chapters in reading order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(globalOptions())
		if err != nil {
			return err
		}

		list, err := s.src.GetChapters(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No chapters found.")
			return nil
		}

		rows := make([][]string, 0, len(list))
		for i, ch := range chapters.FromSource(list) {
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				ch.Label(),
				ui.Truncate(ch.Name, 50),
				ch.ID,
				formatDate(ch.Time),
				util.HumanCount(ch.Views),
			})
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Table([]string{"#", "Label", "Name", "ID", "Date", "Views"}, rows))
		return nil
	},
}

var pagesCmd = &cobra.Command{
	Use:   "pages <manga-id> <chapter-id>",
	Short: "Print the page image URLs of a chapter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(globalOptions())
		if err != nil {
			return err
		}

		cd, err := s.src.GetChapterDetails(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		for _, p := range cd.Pages {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the genres usable with search --tag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(globalOptions())
		if err != nil {
			return err
		}

		sections, err := s.src.GetTags(cmd.Context())
		if err != nil {
			return err
		}
		if len(sections) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tags found.")
			return nil
		}

		for _, sec := range sections {
			rows := make([][]string, 0, len(sec.Tags))
			for _, t := range sec.Tags {
				rows = append(rows, []string{t.ID, t.Label})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Title(sec.Label))
			fmt.Fprintln(cmd.OutOrStdout(), ui.Table([]string{"ID", "Tag"}, rows))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detailsCmd, chaptersCmd, pagesCmd, tagsCmd)
}

func printManga(w io.Writer, m *providers.Manga, shareURL string) {
	fmt.Fprintln(w, ui.Title(m.Title))
	if len(m.AltTitles) > 0 {
		fmt.Fprintf(w, "Also:     %s\n", strings.Join(m.AltTitles, "; "))
	}
	fmt.Fprintf(w, "ID:       %s\n", m.ID)
	fmt.Fprintf(w, "Author:   %s\n", m.Author)
	fmt.Fprintf(w, "Status:   %s\n", m.Status)
	fmt.Fprintf(w, "Rating:   %.2f\n", m.Rating)
	fmt.Fprintf(w, "Views:    %s\n", util.HumanCount(m.Views))
	fmt.Fprintf(w, "Updated:  %s\n", formatDate(m.LastUpdate))

	for _, sec := range m.Tags {
		labels := make([]string, 0, len(sec.Tags))
		for _, t := range sec.Tags {
			labels = append(labels, t.Label)
		}
		fmt.Fprintf(w, "%-9s %s\n", sec.Label+":", strings.Join(labels, ", "))
	}

	fmt.Fprintf(w, "Link:     %s\n", shareURL)
	if m.Description != "" {
		fmt.Fprintf(w, "\n%s\n", m.Description)
	}
}

func printTiles(w io.Writer, tiles []providers.MangaTile, next *providers.Cursor) {
	if len(tiles) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	rows := make([][]string, 0, len(tiles))
	for i, t := range tiles {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), ui.Truncate(t.Title, 58), t.ID, ui.Truncate(t.Subtitle, 24)})
	}
	fmt.Fprintln(w, ui.Table([]string{"#", "Title", "ID", "Latest"}, rows))

	if next != nil {
		fmt.Fprintf(w, "More: --cursor %s\n", next)
	}
}
