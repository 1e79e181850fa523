package manganelo

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/brogergvhs/nelo/internal/providers"
	"github.com/brogergvhs/nelo/internal/scheduler"
)

const (
	formContentType = "application/x-www-form-urlencoded"

	// Without this cookie the reader only ships the first few images and
	// loads the rest from script.
	lazyLoadOffCookie = "content_lazyload=off"
)

// GlobalHeaders are the headers every request to baseURL must carry. They
// belong in the scheduler configuration.
func GlobalHeaders(baseURL string) http.Header {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return http.Header{
		"Referer":      {trimSlash(baseURL)},
		"Content-Type": {formContentType},
	}
}

func trimSlash(s string) string {
	return strings.TrimRight(s, "/")
}

// resolveURL makes href absolute against the page it was found on.
func resolveURL(pageURL, href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(u).String()
}

func get(u string) scheduler.Request {
	return scheduler.Request{Method: http.MethodGet, URL: u}
}

func (s *Source) mangaRequest(mangaID string) scheduler.Request {
	return get(s.baseURL + "/manga/" + url.PathEscape(mangaID))
}

func (s *Source) chapterRequest(mangaID, chapterID string) scheduler.Request {
	req := get(s.baseURL + "/chapter/" + url.PathEscape(mangaID) + "/" + url.PathEscape(chapterID))
	req.Header = http.Header{
		"Content-Type": {formContentType},
		"Cookie":       {lazyLoadOffCookie},
	}
	return req
}

func (s *Source) homeRequest() scheduler.Request {
	return get(s.baseURL)
}

func (s *Source) tagsRequest() scheduler.Request {
	return get(s.baseURL + "/advanced_search")
}

// listingRequest builds the URL of one page of the site-wide listing.
// latest_updates is the default ordering of genre-all, which is also the
// newest-first feed the update scan relies on.
func (s *Source) listingRequest(l providers.Listing, page int) scheduler.Request {
	u := s.baseURL + "/genre-all/" + strconv.Itoa(page)
	if l == providers.ListingNewManga {
		u += "?type=newest"
	}
	return get(u)
}

func (s *Source) searchRequest(query string, page int) scheduler.Request {
	q := "page=" + strconv.Itoa(page)
	if query != "" {
		q = query + "&" + q
	}
	return get(s.baseURL + "/advanced_search?" + q)
}
