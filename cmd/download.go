package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/brogergvhs/nelo/internal/chapters"
	"github.com/brogergvhs/nelo/internal/downloader"
	"github.com/brogergvhs/nelo/internal/providers"
	"github.com/brogergvhs/nelo/internal/ui"
	"github.com/brogergvhs/nelo/internal/util"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagChapter string
	flagRange   string
	flagList    string

	// runtime
	flagOutput         string
	flagImageWorkers   int
	flagChapterWorkers int
	flagKeepFolders    bool
	flagDryRun         bool
	flagSkipBroken     bool
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download <manga-id>",
		Short: "Download chapters as CBZ files. Uses the defaults from the selected config, overwritten by CLI flags",
		Args:  cobra.ExactArgs(1),
		RunE:  runDownload,
	}

	// selection
	downloadCmd.Flags().StringVar(&flagChapter, "chapter", "", "single chapter by label, id or index (e.g. 28.5 or 5)")
	downloadCmd.Flags().StringVar(&flagRange, "range", "", "range of chapters by index (e.g. 5-12)")
	downloadCmd.Flags().StringVar(&flagList, "list", "", "specific chapter indices (e.g. 1,3,5)")

	// runtime
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for CBZ files")
	downloadCmd.Flags().IntVar(&flagImageWorkers, "image-workers", 0, "parallel image downloads per chapter")
	downloadCmd.Flags().IntVar(&flagChapterWorkers, "chapter-workers", 0, "parallel chapter downloads")
	downloadCmd.Flags().BoolVar(&flagKeepFolders, "keep-folders", false, "keep temporary folders")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be downloaded, don't download")
	downloadCmd.Flags().BoolVar(&flagSkipBroken, "skip-broken", false, "skip failed images instead of failing the whole chapter")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	opts := globalOptions()
	opts.Output = flagOutput
	opts.ImageWorkers = flagImageWorkers
	opts.ChapterWorkers = flagChapterWorkers
	opts.KeepFolders = flagKeepFolders
	opts.SkipBroken = flagSkipBroken

	s, err := newSession(opts)
	if err != nil {
		return err
	}
	cfg := s.cfg
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	mangaID := args[0]

	m, err := s.src.GetMangaDetails(ctx, mangaID)
	if err != nil {
		return err
	}
	list, err := s.src.GetChapters(ctx, mangaID)
	if err != nil {
		return err
	}

	all := chapters.FromSource(list)
	selected := all.Select(flagChapter, flagRange, flagList)
	if len(selected) == 0 {
		return fmt.Errorf("no chapters selected (%d available)", len(all))
	}

	mangaDir := filepath.Join(cfg.Output, chapters.Sanitize(m.Title))

	if flagDryRun {
		fmt.Fprintf(out, "Dry-run: %d chapters selected.\n\n", len(selected))
		for i, ch := range selected {
			fmt.Fprintf(out, "%3d) %s  [%s]\n    %s\n", i+1, ch.Name, ch.Label(), ch.OutputCBZPath(mangaDir))
		}
		return nil
	}

	if err := os.MkdirAll(mangaDir, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	pm := ui.NewProgressManager(out)
	stats := &ui.Stats{}
	dl := downloader.New(s.sched.Client(), downloader.Options{
		SkipBroken: cfg.SkipBroken,
		Attempts:   cfg.Attempts,
		Timeout:    cfg.Timeout,
	})
	start := time.Now()

	sem := make(chan struct{}, max(1, cfg.ChapterWorkers))
	var wg sync.WaitGroup

	for _, ch := range selected {
		ch := ch
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if err := downloadChapter(ctx, s, dl, pm, m, ch, mangaDir, stats); err != nil {
				stats.FailedChapters.Add(1)
				s.log.Errorf("Chapter %s failed: %v", ch.Label(), err)
			}
		}()
	}
	wg.Wait()
	pm.Close()

	if ctx.Err() != nil {
		util.CleanupUnfinishedTempFolders(mangaDir, os.Stderr)
		util.RemoveIfEmpty(mangaDir, os.Stderr)
		return ctx.Err()
	}

	fmt.Fprintln(out)
	stats.Print(out, time.Since(start))
	fmt.Fprintln(out, "\nAll done.")

	if failed := stats.FailedChapters.Load(); failed > 0 {
		return fmt.Errorf("%d of %d chapters failed", failed, len(selected))
	}
	return nil
}

func downloadChapter(
	ctx context.Context,
	s *session,
	dl *downloader.Downloader,
	pm *ui.MPBProgressManager,
	m *providers.Manga,
	ch chapters.Chapter,
	dir string,
	stats *ui.Stats,
) error {
	cd, err := s.src.GetChapterDetails(ctx, m.ID, ch.ID)
	if err != nil {
		return err
	}
	if len(cd.Pages) == 0 {
		return fmt.Errorf("no pages")
	}

	handle := pm.Register("Ch." + ch.Label())
	handle.SetTotal(len(cd.Pages))

	tmpFolder := filepath.Join(dir, ch.FolderName())
	cbzOut := ch.OutputCBZPath(dir)
	referer := s.src.ChapterURL(m.ID, ch.ID)

	files, n, err := dl.DownloadPages(ctx, cd.Pages, tmpFolder, referer, max(1, s.cfg.ImageWorkers), handle)
	if err != nil {
		_ = os.RemoveAll(tmpFolder)
		return err
	}

	info := &util.ComicInfo{
		Series:  m.Title,
		Title:   ch.Name,
		Number:  ch.Label(),
		Writer:  m.Author,
		Summary: m.Description,
		Web:     referer,
	}
	if err := util.CreateCBZ(files, cbzOut, info); err != nil {
		_ = os.RemoveAll(tmpFolder)
		return err
	}

	if !s.cfg.KeepFolders {
		util.CleanupFolder(tmpFolder)
	}

	stats.TotalChapters.Add(1)
	stats.TotalImages.Add(int64(len(files)))
	stats.TotalBytes.Add(n)
	return nil
}
