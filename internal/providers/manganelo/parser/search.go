package parser

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/brogergvhs/nelo/internal/providers"
)

// SearchQuery encodes req as the query string of /advanced_search,
// without the page parameter.
func (p *Parser) SearchQuery(req providers.SearchRequest) string {
	q := url.Values{}
	q.Set("s", "all")

	if len(req.IncludedTags) > 0 {
		q.Set("g_i", tagList(req.IncludedTags))
	}
	if len(req.ExcludedTags) > 0 {
		q.Set("g_e", tagList(req.ExcludedTags))
	}
	if st := strings.ToLower(strings.TrimSpace(req.Status)); st != "" {
		q.Set("sts", st)
	}
	if ob := strings.TrimSpace(req.OrderBy); ob != "" {
		q.Set("orby", ob)
	}
	if kw := keyword(req.Title); kw != "" {
		q.Set("keyw", kw)
	}

	return q.Encode()
}

// tagList renders ids the way the site expects: _1_2_3_.
func tagList(ids []string) string {
	return "_" + strings.Join(ids, "_") + "_"
}

// keyword lowercases s and joins its alphanumeric runs with underscores.
func keyword(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, "_")
}
