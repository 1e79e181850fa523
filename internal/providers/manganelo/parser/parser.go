// Package parser extracts catalog records from Manganelo pages.
package parser

import (
	"fmt"
	"math"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/nelo/internal/providers"
)

var (
	reChapterNum = regexp.MustCompile(`(?i)chapter[\s_\-]*(\d+(?:\.\d+)?)`)
	reVolume     = regexp.MustCompile(`(?i)vol(?:ume)?\.?[\s_\-]*(\d+(?:\.\d+)?)`)
	reDigits     = regexp.MustCompile(`\d+`)
)

type Parser struct {
	now func() time.Time
	loc *time.Location
}

func New() *Parser {
	return &Parser{now: time.Now, loc: time.UTC}
}

// NewWithClock returns a Parser resolving relative dates ("2 hours ago")
// against now.
func NewWithClock(now func() time.Time) *Parser {
	return &Parser{now: now, loc: time.UTC}
}

func (p *Parser) MangaDetails(doc *goquery.Document, mangaID string) (*providers.Manga, error) {
	info := doc.Find(".panel-story-info").First()
	if info.Length() == 0 {
		return nil, fmt.Errorf("manga %s: %w", mangaID, providers.ErrNotFound)
	}

	m := &providers.Manga{
		ID:     mangaID,
		Title:  clean(info.Find(".story-info-right h1").First().Text()),
		Image:  imageSrc(info.Find(".info-image img").First()),
		Status: providers.StatusUnknown,
	}

	info.Find(".variations-tableInfo tr").Each(func(_ int, tr *goquery.Selection) {
		label := strings.ToLower(tr.Find(".table-label").Text())
		value := tr.Find(".table-value")

		switch {
		case strings.Contains(label, "alternative"):
			m.AltTitles = splitList(value.Text())
		case strings.Contains(label, "author"):
			m.Author = joinLinks(value)
		case strings.Contains(label, "status"):
			m.Status = parseStatus(value.Text())
		case strings.Contains(label, "genres"):
			if tags := genreLinks(value); len(tags) > 0 {
				m.Tags = []providers.TagSection{{ID: "genres", Label: "Genres", Tags: tags}}
			}
		}
	})
	m.Artist = m.Author

	info.Find(".story-info-right-extent p").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToLower(row.Find(".stre-label").Text())
		value := row.Find(".stre-value").Text()

		switch {
		case strings.Contains(label, "updated"):
			if t, ok := p.parseTime(value); ok {
				m.LastUpdate = t
			}
		case strings.Contains(label, "view"):
			m.Views = parseCount(value)
		}
	})

	if r, err := strconv.ParseFloat(clean(info.Find(`em[property="v:average"]`).First().Text()), 64); err == nil {
		m.Rating = r
	}

	desc := clean(doc.Find("#panel-story-info-description").First().Text())
	m.Description = strings.TrimSpace(strings.TrimPrefix(desc, "Description :"))

	return m, nil
}

// Chapters returns the chapter list in page order, newest first.
func (p *Parser) Chapters(doc *goquery.Document, mangaID string) []providers.Chapter {
	var out []providers.Chapter

	doc.FindMatcher(chapterRowSel).Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a.chapter-name").First()
		id := lastSegment(a.AttrOr("href", ""))
		if id == "" {
			return
		}

		name := clean(a.Text())
		ch := providers.Chapter{
			ID:       id,
			MangaID:  mangaID,
			Name:     name,
			Number:   firstFloat(reChapterNum, name, id),
			Volume:   firstFloat(reVolume, name),
			LangCode: "en",
			Views:    parseCount(li.Find(".chapter-view").Text()),
		}

		when := li.Find(".chapter-time").First()
		if t, ok := p.parseTime(when.AttrOr("title", when.Text())); ok {
			ch.Time = t
		}

		out = append(out, ch)
	})

	return out
}

func (p *Parser) ChapterDetails(doc *goquery.Document, mangaID, chapterID string) (*providers.ChapterDetails, error) {
	reader := doc.Find(".container-chapter-reader").First()
	if reader.Length() == 0 {
		return nil, fmt.Errorf("chapter %s/%s: %w", mangaID, chapterID, providers.ErrNotFound)
	}

	cd := &providers.ChapterDetails{ID: chapterID, MangaID: mangaID}
	reader.Find("img").Each(func(_ int, img *goquery.Selection) {
		if src := imageSrc(img); src != "" {
			cd.Pages = append(cd.Pages, src)
		}
	})

	return cd, nil
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func imageSrc(img *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src"} {
		if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}

// lastSegment returns the final path element of href, which is how the
// site encodes manga and chapter ids.
func lastSegment(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' }) {
		if v := clean(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func joinLinks(sel *goquery.Selection) string {
	var names []string
	sel.Find("a").Each(func(_ int, a *goquery.Selection) {
		if v := clean(a.Text()); v != "" {
			names = append(names, v)
		}
	})
	if len(names) == 0 {
		return clean(sel.Text())
	}
	return strings.Join(names, ", ")
}

func genreLinks(sel *goquery.Selection) []providers.Tag {
	var tags []providers.Tag
	sel.Find("a").Each(func(_ int, a *goquery.Selection) {
		id := strings.TrimPrefix(lastSegment(a.AttrOr("href", "")), "genre-")
		label := clean(a.Text())
		if id == "" || label == "" {
			return
		}
		tags = append(tags, providers.Tag{ID: id, Label: label})
	})
	return tags
}

func parseStatus(s string) providers.MangaStatus {
	switch strings.ToLower(clean(s)) {
	case "ongoing":
		return providers.StatusOngoing
	case "completed":
		return providers.StatusCompleted
	default:
		return providers.StatusUnknown
	}
}

// parseCount reads view counters such as "12,345", "3.4K" or "1.2M".
func parseCount(raw string) int64 {
	s := strings.ToUpper(strings.ReplaceAll(clean(raw), ",", ""))
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "K"):
		mult = 1e3
	case strings.HasSuffix(s, "M"):
		mult = 1e6
	case strings.HasSuffix(s, "B"):
		mult = 1e9
	}
	s = strings.TrimRight(s, "KMB")

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f * mult))
}

func firstFloat(re *regexp.Regexp, candidates ...string) float64 {
	for _, c := range candidates {
		if m := re.FindStringSubmatch(c); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				return f
			}
		}
	}
	return 0
}
