// Package downloader fetches chapter page images to disk.
package downloader

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Progress receives per-chapter progress. *ui.ProgressHandle implements it.
type Progress interface {
	Update(done, total int, bytes int64)
	MarkDone()
}

type noProgress struct{}

func (noProgress) Update(int, int, int64) {}
func (noProgress) MarkDone()              {}

type Options struct {
	SkipBroken bool
	Attempts   int
	Backoff    time.Duration
	Timeout    time.Duration
}

type Downloader struct {
	client     *http.Client
	skipBroken bool
	attempts   int
	backoff    time.Duration
	timeout    time.Duration
}

// New returns a Downloader sharing c, normally the scheduler's client so
// images go out with the same cookies and user agent as page requests.
func New(c *http.Client, opts Options) *Downloader {
	if opts.Attempts < 1 {
		opts.Attempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Downloader{
		client:     c,
		skipBroken: opts.SkipBroken,
		attempts:   opts.Attempts,
		backoff:    opts.Backoff,
		timeout:    opts.Timeout,
	}
}

type chapterState struct {
	mu          sync.Mutex
	doneImages  int
	totalImages int
	doneBytes   int64
	ph          Progress
}

func (cs *chapterState) imageDone() {
	cs.mu.Lock()
	cs.doneImages++
	cs.ph.Update(cs.doneImages, cs.totalImages, cs.doneBytes)
	cs.mu.Unlock()
}

func (cs *chapterState) addBytes(n int64) {
	cs.mu.Lock()
	cs.doneBytes += n
	cs.ph.Update(cs.doneImages, cs.totalImages, cs.doneBytes)
	cs.mu.Unlock()
}

// DownloadPages stores urls in folder as page_001.ext, page_002.ext, ...
// using maxParallel workers. It returns the written files and byte count.
// A failed image fails the chapter unless SkipBroken is set.
func (d *Downloader) DownloadPages(
	ctx context.Context,
	urls []string,
	folder string,
	referer string,
	maxParallel int,
	ph Progress,
) ([]string, int64, error) {
	if ph == nil {
		ph = noProgress{}
	}
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, 0, err
	}

	total := len(urls)
	if maxParallel < 1 {
		maxParallel = 1
	}
	if maxParallel > total && total > 0 {
		maxParallel = total
	}

	cs := &chapterState{totalImages: total, ph: ph}
	ph.Update(0, total, 0)

	var filesMu sync.Mutex
	files := make([]string, 0, len(urls))
	var errs []error

	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			u := urls[i]

			// animated gifs on the reader are banners, not pages
			if strings.EqualFold(pageExt(u), ".gif") {
				cs.imageDone()
				continue
			}

			out := filepath.Join(folder, pageName(i+1, total, u))
			var last int64

			progress := func(done int64) {
				if delta := done - last; delta > 0 {
					last = done
					cs.addBytes(delta)
				}
			}

			if err := d.downloadWithRetry(ctx, u, out, referer, progress); err != nil {
				filesMu.Lock()
				errs = append(errs, fmt.Errorf("image %d: %w", i+1, err))
				filesMu.Unlock()
				cs.imageDone()
				continue
			}

			filesMu.Lock()
			files = append(files, out)
			filesMu.Unlock()
			cs.imageDone()
		}
	}

	wg.Add(maxParallel)
	for w := 0; w < maxParallel; w++ {
		go worker()
	}

	for i := range urls {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			ph.MarkDone()
			return files, cs.doneBytes, ctx.Err()
		case jobs <- i:
		}
	}

	close(jobs)
	wg.Wait()
	ph.MarkDone()

	if len(errs) > 0 && !d.skipBroken {
		return files, cs.doneBytes, fmt.Errorf("failed %d/%d images (use --skip-broken to continue): %w", len(errs), total, errs[0])
	}

	return files, cs.doneBytes, nil
}

// pageName pads the page number to the width of total so that names sort
// in reading order, whatever the chapter length.
func pageName(n, total int, u string) string {
	width := max(3, len(strconv.Itoa(total)))
	return fmt.Sprintf("page_%0*d%s", width, n, pageExt(u))
}

// pageExt takes the extension from the URL path so query strings on CDN
// links do not leak into file names.
func pageExt(u string) string {
	p := u
	if parsed, err := url.Parse(u); err == nil {
		p = parsed.Path
	}
	ext := path.Ext(p)
	if ext == "" || len(ext) > 5 {
		return ".jpg"
	}
	return strings.ToLower(ext)
}

func (d *Downloader) downloadWithRetry(
	ctx context.Context,
	u string,
	output string,
	referer string,
	progress func(done int64),
) error {
	var err error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		err = d.download(ctx, u, output, referer, progress)
		if err == nil || attempt == d.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * d.backoff):
		}
	}

	return err
}

func (d *Downloader) download(
	ctx context.Context,
	u, output, referer string,
	progress func(done int64),
) (err error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); !strings.HasPrefix(mt, "image/") {
			return fmt.Errorf("unexpected MIME: %s", ct)
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	written, err := copyWithProgress(f, resp.Body, progress)
	if err != nil {
		return err
	}

	if progress != nil && resp.ContentLength > 0 && written < resp.ContentLength {
		progress(resp.ContentLength)
	}

	return nil
}
