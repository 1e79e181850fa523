package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/brogergvhs/nelo/internal/providers"
	"github.com/brogergvhs/nelo/internal/providers/manganelo"
	"github.com/brogergvhs/nelo/internal/providers/manganelo/parser"
	"github.com/brogergvhs/nelo/internal/ui"

	"github.com/spf13/cobra"
)

var (
	flagSince          string
	flagIDs            []string
	flagIDsFile        string
	flagMaxUpdatePages int
	flagNoProgress     bool
)

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Report which of the given manga were updated since a point in time",
	Example: `  nelo updates --since 72h --ids manga-ab123,manga-cd456
  nelo updates --since 2024-03-01 --ids-file library.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		since, err := parseSince(flagSince, time.Now())
		if err != nil {
			return err
		}

		ids, err := readIDs(flagIDs, flagIDsFile)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("no manga ids given (use --ids or --ids-file)")
		}

		opts := globalOptions()
		opts.MaxUpdatePages = flagMaxUpdatePages
		s, err := newSession(opts)
		if err != nil {
			return err
		}

		var bar *ui.ScanProgress
		var sched manganelo.Scheduler = s.sched
		if !flagNoProgress {
			bar = ui.NewScanProgress(os.Stderr, "Scanning")
			sched = countingScheduler{next: s.sched, onFetch: bar.PageFetched}
		}

		src := manganelo.New(sched, parser.New(), manganelo.Options{
			BaseURL:        s.cfg.BaseURL,
			MaxUpdatePages: s.cfg.MaxUpdatePages,
			Logger:         s.log,
		})

		var updated []string
		err = src.FilterUpdatedManga(cmd.Context(), since, ids, func(u providers.MangaUpdates) {
			updated = append(updated, u.IDs...)
			if bar != nil {
				bar.Found(len(u.IDs))
			}
		})
		if bar != nil {
			bar.Done()
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(updated) == 0 {
			fmt.Fprintf(out, "Nothing updated since %s.\n", formatDate(since))
			return nil
		}
		for _, id := range updated {
			fmt.Fprintln(out, id)
		}
		return nil
	},
}

func init() {
	updatesCmd.Flags().StringVar(&flagSince, "since", "24h", "duration back from now (72h, 3d) or a date")
	updatesCmd.Flags().StringSliceVar(&flagIDs, "ids", nil, "manga ids to check, comma separated")
	updatesCmd.Flags().StringVar(&flagIDsFile, "ids-file", "", "file with one manga id per line (- for stdin)")
	updatesCmd.Flags().IntVar(&flagMaxUpdatePages, "max-pages", 0, "stop the scan after this many listing pages")
	updatesCmd.Flags().BoolVar(&flagNoProgress, "no-progress", false, "hide the scan spinner")

	rootCmd.AddCommand(updatesCmd)
}
