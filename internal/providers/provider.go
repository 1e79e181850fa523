package providers

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a page does not contain the block an
	// extractor expects (missing manga, removed chapter).
	ErrNotFound = errors.New("not found")

	ErrCursorMismatch = errors.New("cursor belongs to a different listing or query")
	ErrInvalidCursor  = errors.New("invalid cursor")
)

type MangaStatus string

const (
	StatusUnknown   MangaStatus = "Unknown"
	StatusOngoing   MangaStatus = "Ongoing"
	StatusCompleted MangaStatus = "Completed"
)

type Manga struct {
	ID          string
	Title       string
	AltTitles   []string
	Image       string
	Author      string
	Artist      string
	Status      MangaStatus
	Rating      float64
	Views       int64
	Description string
	Tags        []TagSection
	LastUpdate  time.Time
}

// MangaTile is the summary row shown in listings and home sections.
type MangaTile struct {
	ID       string
	Title    string
	Image    string
	Subtitle string
}

type Chapter struct {
	ID       string
	MangaID  string
	Name     string
	Number   float64
	Volume   float64
	LangCode string
	Time     time.Time
	Views    int64
}

type ChapterDetails struct {
	ID        string
	MangaID   string
	Pages     []string
	LongStrip bool
}

type HomeSection struct {
	ID       string
	Title    string
	ViewMore bool
	Items    []MangaTile
}

type Tag struct {
	ID    string
	Label string
}

type TagSection struct {
	ID    string
	Label string
	Tags  []Tag
}

type SearchRequest struct {
	Title        string
	IncludedTags []string
	ExcludedTags []string
	Status       string
	OrderBy      string
}

type MangaUpdates struct {
	IDs []string
}

// UpdateBatch is what an extractor reports for one page of the recently
// updated listing. IDs is a subset of the known set; Continue is false once
// the page held a row older than the watermark.
type UpdateBatch struct {
	IDs      []string
	Continue bool
}

// PagedResult is one page of a listing. Next is nil on the last page.
type PagedResult[T any] struct {
	Items []T
	Next  *Cursor
}

// Empty reports whether r is the sentinel returned for listings the source
// does not know.
func (r PagedResult[T]) Empty() bool {
	return len(r.Items) == 0 && r.Next == nil
}

// Source is the set of operations a catalog source exposes to a reader.
type Source interface {
	GetMangaDetails(ctx context.Context, mangaID string) (*Manga, error)
	GetChapters(ctx context.Context, mangaID string) ([]Chapter, error)
	GetChapterDetails(ctx context.Context, mangaID, chapterID string) (*ChapterDetails, error)
	GetHomePageSections(ctx context.Context, emit func(HomeSection)) error
	Search(ctx context.Context, req SearchRequest, cursor *Cursor) (PagedResult[MangaTile], error)
	GetTags(ctx context.Context) ([]TagSection, error)
	GetViewMoreItems(ctx context.Context, sectionID string, cursor *Cursor) (PagedResult[MangaTile], error)
	FilterUpdatedManga(ctx context.Context, since time.Time, ids []string, onUpdate func(MangaUpdates)) error
	MangaShareURL(mangaID string) string
}
