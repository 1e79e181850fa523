package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/brogergvhs/nelo/internal/providers"
)

// Home section ids as announced by the source's skeletons.
const (
	sectionTopWeek       = "top_week"
	sectionLatestUpdates = string(providers.ListingLatestUpdates)
	sectionNewManga      = string(providers.ListingNewManga)
)

var (
	genresItemSel = cascadia.MustCompile(".content-genres-item")
	searchItemSel = cascadia.MustCompile(".search-story-item")
	chapterRowSel = cascadia.MustCompile(".row-content-chapter li")
)

type tileCollector struct {
	out  []providers.MangaTile
	seen map[string]bool
}

func (c *tileCollector) add(t providers.MangaTile) {
	if t.ID == "" || c.seen[t.ID] {
		return
	}
	if c.seen == nil {
		c.seen = map[string]bool{}
	}
	c.seen[t.ID] = true
	c.out = append(c.out, t)
}

func genreTile(item *goquery.Selection) providers.MangaTile {
	link := item.Find("a.genres-item-img").First()
	titleLink := item.Find("h3 a").First()

	href := link.AttrOr("href", titleLink.AttrOr("href", ""))
	title := clean(titleLink.Text())
	if title == "" {
		title = clean(link.AttrOr("title", ""))
	}

	return providers.MangaTile{
		ID:       lastSegment(href),
		Title:    title,
		Image:    imageSrc(link.Find("img").First()),
		Subtitle: clean(item.Find(".genres-item-chap").First().Text()),
	}
}

func storyTile(item *goquery.Selection) providers.MangaTile {
	link := item.Find("a.item-img").First()
	return providers.MangaTile{
		ID:       lastSegment(link.AttrOr("href", "")),
		Title:    clean(item.Find(".item-title").First().Text()),
		Image:    imageSrc(link.Find("img").First()),
		Subtitle: clean(item.Find(".item-chapter").First().Text()),
	}
}

func (p *Parser) Search(doc *goquery.Document) []providers.MangaTile {
	var c tileCollector
	doc.FindMatcher(genresItemSel).Each(func(_ int, s *goquery.Selection) { c.add(genreTile(s)) })
	doc.FindMatcher(searchItemSel).Each(func(_ int, s *goquery.Selection) { c.add(storyTile(s)) })
	return c.out
}

func (p *Parser) ViewMore(doc *goquery.Document) []providers.MangaTile {
	var c tileCollector
	doc.FindMatcher(genresItemSel).Each(func(_ int, s *goquery.Selection) { c.add(genreTile(s)) })
	return c.out
}

// IsLastPage reads the pager. Pages without a readable pager are treated as
// the last one.
func (p *Parser) IsLastPage(doc *goquery.Document) bool {
	pager := doc.Find(".panel-page-number .group-page").First()
	if pager.Length() == 0 {
		return true
	}

	current, ok := pageNumber(pager.Find(".page-select").First().Text())
	if !ok {
		return true
	}
	last, ok := pageNumber(pager.Find(".page-last").First().Text())
	if !ok {
		return true
	}

	return current >= last
}

func pageNumber(s string) (int, bool) {
	m := reDigits.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	return n, err == nil
}

func (p *Parser) HomeSections(doc *goquery.Document, sections []providers.HomeSection, emit func(providers.HomeSection)) {
	for _, sec := range sections {
		var items []providers.MangaTile
		switch sec.ID {
		case sectionTopWeek:
			items = topWeek(doc)
		case sectionLatestUpdates:
			items = homeLatest(doc)
		case sectionNewManga:
			items = homeNewest(doc)
		}

		if len(items) == 0 {
			continue
		}
		sec.Items = items
		emit(sec)
	}
}

func topWeek(doc *goquery.Document) []providers.MangaTile {
	var c tileCollector
	doc.Find("#owl-slider .item").Each(func(_ int, item *goquery.Selection) {
		a := item.Find(".slide-caption h3 a").First()
		c.add(providers.MangaTile{
			ID:       lastSegment(a.AttrOr("href", "")),
			Title:    clean(a.Text()),
			Image:    imageSrc(item.Find("img").First()),
			Subtitle: clean(item.Find(".slide-caption > a").First().Text()),
		})
	})
	return c.out
}

func homeLatest(doc *goquery.Document) []providers.MangaTile {
	var c tileCollector
	doc.Find(".content-homepage-item").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a.item-img").First()
		c.add(providers.MangaTile{
			ID:       lastSegment(link.AttrOr("href", "")),
			Title:    clean(item.Find(".item-title a").First().Text()),
			Image:    imageSrc(link.Find("img").First()),
			Subtitle: clean(item.Find(".item-chapter a").First().Text()),
		})
	})
	return c.out
}

func homeNewest(doc *goquery.Document) []providers.MangaTile {
	var c tileCollector
	doc.Find(".panel-newest-content a").Each(func(_ int, a *goquery.Selection) {
		img := a.Find("img").First()
		title := clean(img.AttrOr("alt", ""))
		if title == "" {
			title = clean(a.AttrOr("title", ""))
		}
		c.add(providers.MangaTile{
			ID:    lastSegment(a.AttrOr("href", "")),
			Title: title,
			Image: imageSrc(img),
		})
	})
	return c.out
}

func (p *Parser) Tags(doc *goquery.Document) []providers.TagSection {
	var tags []providers.Tag
	doc.Find(".advanced-search-tool-genres-list span[data-i]").Each(func(_ int, s *goquery.Selection) {
		id := strings.TrimSpace(s.AttrOr("data-i", ""))
		label := clean(s.Text())
		if label == "" {
			label = strings.TrimSuffix(clean(s.AttrOr("title", "")), " Manga")
		}
		if id == "" || label == "" {
			return
		}
		tags = append(tags, providers.Tag{ID: id, Label: label})
	})

	if len(tags) == 0 {
		return nil
	}
	return []providers.TagSection{{ID: "genres", Label: "Genres", Tags: tags}}
}

// UpdatedManga partitions one page of the newest-first listing. Rows whose
// date cannot be read are skipped. A page without rows, or the listing's
// last page, ends the scan.
func (p *Parser) UpdatedManga(doc *goquery.Document, since time.Time, known map[string]struct{}) providers.UpdateBatch {
	batch := providers.UpdateBatch{Continue: true}
	seen := map[string]bool{}
	rows := 0

	doc.FindMatcher(genresItemSel).Each(func(_ int, item *goquery.Selection) {
		rows++
		t, ok := p.parseTime(item.Find(".genres-item-time").First().Text())
		if !ok {
			return
		}
		if t.Before(since) {
			batch.Continue = false
			return
		}

		id := genreTile(item).ID
		if _, ok := known[id]; !ok || seen[id] {
			return
		}
		seen[id] = true
		batch.IDs = append(batch.IDs, id)
	})

	if rows == 0 || p.IsLastPage(doc) {
		batch.Continue = false
	}
	return batch
}
