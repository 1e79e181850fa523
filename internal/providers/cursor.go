package providers

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Listing names a paginated listing kind. A cursor is only valid for the
// listing that minted it.
type Listing string

const (
	ListingSearch        Listing = "search"
	ListingLatestUpdates Listing = "latest_updates"
	ListingNewManga      Listing = "new_manga"
)

var knownListings = map[Listing]bool{
	ListingSearch:        true,
	ListingLatestUpdates: true,
	ListingNewManga:      true,
}

// Cursor is an opaque resumption token. Hosts pass it back unchanged to
// get the next page of the same listing. Listings that depend on caller
// input, like search, also bind a scope derived from that input.
type Cursor struct {
	listing Listing
	scope   string
	page    int
}

func NewCursor(l Listing, page int) *Cursor {
	return &Cursor{listing: l, page: page}
}

// NewScopedCursor binds the cursor to scope, usually from ScopeOf.
func NewScopedCursor(l Listing, scope string, page int) *Cursor {
	return &Cursor{listing: l, scope: scope, page: page}
}

// ScopeOf condenses listing input such as an encoded query into a short
// token for NewScopedCursor.
func ScopeOf(input string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(input))
	return fmt.Sprintf("%08x", h.Sum32())
}

func (c *Cursor) Listing() Listing { return c.listing }

func (c *Cursor) Scope() string { return c.scope }

func (c *Cursor) Page() int { return c.page }

func (c *Cursor) String() string {
	if c == nil {
		return ""
	}
	if c.scope != "" {
		return fmt.Sprintf("%s:%d:%s", c.listing, c.page, c.scope)
	}
	return fmt.Sprintf("%s:%d", c.listing, c.page)
}

// PageFor returns the page a fetch of listing l should request. A nil
// cursor starts at page 1.
func (c *Cursor) PageFor(l Listing) (int, error) {
	return c.PageIn(l, "")
}

// PageIn is PageFor for a listing fetched under scope. A cursor minted
// for another scope, or for none, is rejected.
func (c *Cursor) PageIn(l Listing, scope string) (int, error) {
	if c == nil {
		return 1, nil
	}
	if c.listing != l {
		return 0, fmt.Errorf("%w: got %s, want %s", ErrCursorMismatch, c.listing, l)
	}
	if c.scope != scope {
		return 0, fmt.Errorf("%w: %s cursor was issued for other parameters", ErrCursorMismatch, l)
	}
	if c.page < 1 {
		return 0, fmt.Errorf("%w: page %d", ErrInvalidCursor, c.page)
	}

	return c.page, nil
}

// ParseCursor reads the form produced by Cursor.String. An empty string
// yields a nil cursor.
func ParseCursor(s string) (*Cursor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCursor, s)
	}
	kind, num := parts[0], parts[1]

	var scope string
	if len(parts) == 3 {
		if scope = parts[2]; scope == "" {
			return nil, fmt.Errorf("%w: empty scope in %q", ErrInvalidCursor, s)
		}
	}
	if !knownListings[Listing(kind)] {
		return nil, fmt.Errorf("%w: unknown listing %q", ErrInvalidCursor, kind)
	}

	page, err := strconv.Atoi(num)
	if err != nil || page < 1 {
		return nil, fmt.Errorf("%w: page %q", ErrInvalidCursor, num)
	}

	return NewScopedCursor(Listing(kind), scope, page), nil
}
