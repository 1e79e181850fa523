package manganelo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/nelo/internal/providers"
	"github.com/brogergvhs/nelo/internal/scheduler"
	"github.com/brogergvhs/nelo/internal/ui"
)

const (
	DefaultBaseURL        = "https://manganelo.com"
	DefaultMaxUpdatePages = 50

	SectionTopWeek       = "top_week"
	SectionLatestUpdates = string(providers.ListingLatestUpdates)
	SectionNewManga      = string(providers.ListingNewManga)
)

// Scheduler executes requests. Retries, rate limits and timeouts are its
// business; Source never retries.
type Scheduler interface {
	Schedule(ctx context.Context, req scheduler.Request) ([]byte, error)
}

// Extractor turns fetched Manganelo pages into records. Implementations are
// pure functions of the document and their arguments.
type Extractor interface {
	MangaDetails(doc *goquery.Document, mangaID string) (*providers.Manga, error)
	Chapters(doc *goquery.Document, mangaID string) []providers.Chapter
	ChapterDetails(doc *goquery.Document, mangaID, chapterID string) (*providers.ChapterDetails, error)
	HomeSections(doc *goquery.Document, sections []providers.HomeSection, emit func(providers.HomeSection))
	Search(doc *goquery.Document) []providers.MangaTile
	ViewMore(doc *goquery.Document) []providers.MangaTile
	Tags(doc *goquery.Document) []providers.TagSection
	UpdatedManga(doc *goquery.Document, since time.Time, known map[string]struct{}) providers.UpdateBatch
	IsLastPage(doc *goquery.Document) bool
	SearchQuery(req providers.SearchRequest) string
}

type Logger interface {
	Debugf(string, ...any)
	Warnf(string, ...any)
}

type Options struct {
	BaseURL string
	// MaxUpdatePages bounds FilterUpdatedManga in case the listing never
	// reports a row older than the watermark.
	MaxUpdatePages int
	Logger         Logger
}

type Source struct {
	sched          Scheduler
	x              Extractor
	baseURL        string
	maxUpdatePages int
	log            Logger
}

var _ providers.Source = (*Source)(nil)

func New(s Scheduler, x Extractor, opts Options) *Source {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.MaxUpdatePages <= 0 {
		opts.MaxUpdatePages = DefaultMaxUpdatePages
	}
	if opts.Logger == nil {
		opts.Logger = ui.NewLoggerTo(io.Discard, false)
	}

	return &Source{
		sched:          s,
		x:              x,
		baseURL:        trimSlash(opts.BaseURL),
		maxUpdatePages: opts.MaxUpdatePages,
		log:            opts.Logger,
	}
}

func (s *Source) fetch(ctx context.Context, req scheduler.Request) (*goquery.Document, error) {
	body, err := s.sched.Schedule(ctx, req)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", req.URL, err)
	}

	return doc, nil
}

func (s *Source) MangaShareURL(mangaID string) string {
	return s.mangaRequest(mangaID).URL
}

// ChapterURL is the reader page of a chapter. Image hosts expect it as
// referer.
func (s *Source) ChapterURL(mangaID, chapterID string) string {
	return s.chapterRequest(mangaID, chapterID).URL
}

func (s *Source) GetMangaDetails(ctx context.Context, mangaID string) (*providers.Manga, error) {
	doc, err := s.fetch(ctx, s.mangaRequest(mangaID))
	if err != nil {
		return nil, err
	}

	return s.x.MangaDetails(doc, mangaID)
}

func (s *Source) GetChapters(ctx context.Context, mangaID string) ([]providers.Chapter, error) {
	doc, err := s.fetch(ctx, s.mangaRequest(mangaID))
	if err != nil {
		return nil, err
	}

	return s.x.Chapters(doc, mangaID), nil
}

func (s *Source) GetChapterDetails(ctx context.Context, mangaID, chapterID string) (*providers.ChapterDetails, error) {
	req := s.chapterRequest(mangaID, chapterID)
	doc, err := s.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	cd, err := s.x.ChapterDetails(doc, mangaID, chapterID)
	if err != nil {
		return nil, err
	}

	for i, p := range cd.Pages {
		cd.Pages[i] = resolveURL(req.URL, p)
	}
	return cd, nil
}

func homeSkeletons() []providers.HomeSection {
	return []providers.HomeSection{
		{ID: SectionTopWeek, Title: "TOP OF THE WEEK"},
		{ID: SectionLatestUpdates, Title: "LATEST UPDATES", ViewMore: true},
		{ID: SectionNewManga, Title: "NEW MANGA", ViewMore: true},
	}
}

// GetHomePageSections emits every section empty before any I/O so a reader
// can lay them out, then fills whichever sections the home page provides
// from a single fetch.
func (s *Source) GetHomePageSections(ctx context.Context, emit func(providers.HomeSection)) error {
	sections := homeSkeletons()
	for _, sec := range sections {
		emit(sec)
	}

	doc, err := s.fetch(ctx, s.homeRequest())
	if err != nil {
		return err
	}

	s.x.HomeSections(doc, sections, emit)
	return nil
}

func (s *Source) Search(ctx context.Context, req providers.SearchRequest, cursor *providers.Cursor) (providers.PagedResult[providers.MangaTile], error) {
	query := s.x.SearchQuery(req)

	return paginate(ctx, s, providers.ListingSearch, providers.ScopeOf(query), cursor,
		func(page int) scheduler.Request { return s.searchRequest(query, page) },
		s.x.Search,
	)
}

func (s *Source) GetTags(ctx context.Context) ([]providers.TagSection, error) {
	doc, err := s.fetch(ctx, s.tagsRequest())
	if err != nil {
		return nil, err
	}

	return s.x.Tags(doc), nil
}

// GetViewMoreItems pages through the listing behind a home section. Unknown
// sections yield an empty result without touching the network.
func (s *Source) GetViewMoreItems(ctx context.Context, sectionID string, cursor *providers.Cursor) (providers.PagedResult[providers.MangaTile], error) {
	var listing providers.Listing
	switch sectionID {
	case SectionLatestUpdates:
		listing = providers.ListingLatestUpdates
	case SectionNewManga:
		listing = providers.ListingNewManga
	default:
		return providers.PagedResult[providers.MangaTile]{}, nil
	}

	return paginate(ctx, s, listing, "", cursor,
		func(page int) scheduler.Request { return s.listingRequest(listing, page) },
		s.x.ViewMore,
	)
}
