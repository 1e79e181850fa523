package manganelo

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/nelo/internal/providers"
	"github.com/brogergvhs/nelo/internal/scheduler"
)

// paginate fetches the single page of listing the cursor points at. The
// site only reveals whether more pages exist on the page itself, so the
// next cursor is always page+1 or nothing. A non-empty scope ties the
// cursors to the input that produced the listing.
func paginate[T any](
	ctx context.Context,
	s *Source,
	listing providers.Listing,
	scope string,
	cursor *providers.Cursor,
	build func(page int) scheduler.Request,
	extract func(*goquery.Document) []T,
) (providers.PagedResult[T], error) {
	page, err := cursor.PageIn(listing, scope)
	if err != nil {
		return providers.PagedResult[T]{}, err
	}

	doc, err := s.fetch(ctx, build(page))
	if err != nil {
		return providers.PagedResult[T]{}, err
	}

	res := providers.PagedResult[T]{Items: extract(doc)}
	if !s.x.IsLastPage(doc) {
		res.Next = providers.NewScopedCursor(listing, scope, page+1)
	}

	s.log.Debugf("%s page %d: %d items, more=%t\n", listing, page, len(res.Items), res.Next != nil)
	return res, nil
}
