package manganelo

import (
	"context"
	"time"

	"github.com/brogergvhs/nelo/internal/providers"
)

// FilterUpdatedManga reports which of ids were updated at or after since.
//
// It walks the newest-first site listing one page at a time and stops at
// the first page holding a row older than since. onUpdate is called once
// per page that produced new ids; an id is never reported twice in a scan.
// A failed fetch aborts the scan, leaving earlier reports in place.
func (s *Source) FilterUpdatedManga(ctx context.Context, since time.Time, ids []string, onUpdate func(providers.MangaUpdates)) error {
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	reported := make(map[string]struct{})

	for page := 1; ; page++ {
		if page > s.maxUpdatePages {
			s.log.Warnf("update scan stopped after %d pages without reaching %s\n",
				s.maxUpdatePages, since.Format(time.RFC3339))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		doc, err := s.fetch(ctx, s.listingRequest(providers.ListingLatestUpdates, page))
		if err != nil {
			return err
		}

		batch := s.x.UpdatedManga(doc, since, known)

		var fresh []string
		for _, id := range batch.IDs {
			if _, ok := known[id]; !ok {
				continue
			}
			if _, dup := reported[id]; dup {
				continue
			}
			reported[id] = struct{}{}
			fresh = append(fresh, id)
		}

		s.log.Debugf("update scan page %d: %d updated, continue=%t\n", page, len(fresh), batch.Continue)

		if len(fresh) > 0 {
			onUpdate(providers.MangaUpdates{IDs: fresh})
		}
		if !batch.Continue {
			return nil
		}
	}
}
