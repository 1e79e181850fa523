package manganelo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/nelo/internal/providers"
	"github.com/brogergvhs/nelo/internal/scheduler"
)

const testBase = "https://nelo.test"

type fakeScheduler struct {
	mu       sync.Mutex
	requests []scheduler.Request
	pages    map[string]string
	fail     map[string]error
	fallback string
	onFetch  func(scheduler.Request)
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{pages: map[string]string{}, fail: map[string]error{}}
}

func (f *fakeScheduler) Schedule(_ context.Context, req scheduler.Request) ([]byte, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.onFetch != nil {
		f.onFetch(req)
	}
	if err, ok := f.fail[req.URL]; ok {
		return nil, err
	}
	if body, ok := f.pages[req.URL]; ok {
		return []byte(body), nil
	}
	if f.fallback != "" {
		return []byte(f.fallback), nil
	}

	return nil, &scheduler.FetchError{URL: req.URL, Status: 404}
}

func (f *fakeScheduler) urls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.URL
	}
	return out
}

// row is one listing entry; day is the day of January 2024 it was updated.
type row struct {
	id  string
	day int
}

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}

func listingPage(last bool, rows ...row) string {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	for _, r := range rows {
		fmt.Fprintf(&b, `<li data-id="%s" data-day="%d">%s</li>`, r.id, r.day, strings.ToUpper(r.id))
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, `<span id="last">%t</span></body></html>`, last)
	return b.String()
}

// fakeExtractor understands the markup produced by listingPage and a few
// hand-written pages in the tests.
type fakeExtractor struct {
	updated func(doc *goquery.Document, since time.Time, known map[string]struct{}) providers.UpdateBatch
}

func tiles(doc *goquery.Document) []providers.MangaTile {
	var out []providers.MangaTile
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-id")
		out = append(out, providers.MangaTile{ID: id, Title: s.Text()})
	})
	return out
}

func (fakeExtractor) MangaDetails(doc *goquery.Document, mangaID string) (*providers.Manga, error) {
	title := doc.Find("#manga")
	if title.Length() == 0 {
		return nil, fmt.Errorf("manga %s: %w", mangaID, providers.ErrNotFound)
	}
	return &providers.Manga{ID: mangaID, Title: title.Text()}, nil
}

func (fakeExtractor) Chapters(doc *goquery.Document, mangaID string) []providers.Chapter {
	var out []providers.Chapter
	for _, t := range tiles(doc) {
		out = append(out, providers.Chapter{ID: t.ID, MangaID: mangaID, Name: t.Title})
	}
	return out
}

func (fakeExtractor) ChapterDetails(doc *goquery.Document, mangaID, chapterID string) (*providers.ChapterDetails, error) {
	cd := &providers.ChapterDetails{ID: chapterID, MangaID: mangaID}
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		cd.Pages = append(cd.Pages, s.AttrOr("src", ""))
	})
	return cd, nil
}

func (fakeExtractor) HomeSections(doc *goquery.Document, sections []providers.HomeSection, emit func(providers.HomeSection)) {
	for _, sec := range sections {
		doc.Find(`section[data-id="` + sec.ID + `"] li`).Each(func(_ int, s *goquery.Selection) {
			id, _ := s.Attr("data-id")
			sec.Items = append(sec.Items, providers.MangaTile{ID: id, Title: s.Text()})
		})
		if len(sec.Items) > 0 {
			emit(sec)
		}
	}
}

func (fakeExtractor) Search(doc *goquery.Document) []providers.MangaTile { return tiles(doc) }

func (fakeExtractor) ViewMore(doc *goquery.Document) []providers.MangaTile { return tiles(doc) }

func (fakeExtractor) Tags(doc *goquery.Document) []providers.TagSection {
	var tags []providers.Tag
	doc.Find(".tag").Each(func(_ int, s *goquery.Selection) {
		tags = append(tags, providers.Tag{ID: s.AttrOr("data-id", ""), Label: s.Text()})
	})
	if len(tags) == 0 {
		return nil
	}
	return []providers.TagSection{{ID: "genres", Label: "Genres", Tags: tags}}
}

func (f fakeExtractor) UpdatedManga(doc *goquery.Document, since time.Time, known map[string]struct{}) providers.UpdateBatch {
	if f.updated != nil {
		return f.updated(doc, since, known)
	}

	batch := providers.UpdateBatch{Continue: true}
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		n, _ := strconv.Atoi(s.AttrOr("data-day", "0"))
		if day(n).Before(since) {
			batch.Continue = false
			return
		}
		id := s.AttrOr("data-id", "")
		if _, ok := known[id]; ok {
			batch.IDs = append(batch.IDs, id)
		}
	})
	return batch
}

func (fakeExtractor) IsLastPage(doc *goquery.Document) bool {
	return doc.Find("#last").Text() != "false"
}

func (fakeExtractor) SearchQuery(req providers.SearchRequest) string {
	if req.Title == "" {
		return ""
	}
	return "keyw=" + strings.ReplaceAll(req.Title, " ", "_")
}

func newTestSource(s *fakeScheduler, x Extractor) *Source {
	return New(s, x, Options{BaseURL: testBase + "/"})
}
