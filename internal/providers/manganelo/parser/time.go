package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var timeLayouts = []string{
	"Jan 02,2006 15:04",
	"Jan 02,2006 - 03:04 PM",
	"Jan 02,2006 03:04 PM",
	"Jan 02,2006",
	"Jan 2,2006",
	"Jan 02,06",
	"Jan 2,06",
}

var reRelative = regexp.MustCompile(`(?i)\b(\d+|an?)\s*(sec(?:ond)?|min(?:ute)?|hour|day|week|month|year)s?\s+ago`)

var relativeUnits = map[string]time.Duration{
	"sec":    time.Second,
	"second": time.Second,
	"min":    time.Minute,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"year":   365 * 24 * time.Hour,
}

// parseTime understands the date formats used across the site plus
// relative stamps like "5 mins ago", "30 seconds ago" or "an hour ago".
func (p *Parser) parseTime(raw string) (time.Time, bool) {
	s := clean(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := reRelative.FindStringSubmatch(s); m != nil {
		n := 1
		if q := strings.ToLower(m[1]); q != "a" && q != "an" {
			var err error
			if n, err = strconv.Atoi(q); err != nil {
				return time.Time{}, false
			}
		}
		return p.now().Add(-time.Duration(n) * relativeUnits[strings.ToLower(m[2])]), true
	}

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t, true
		}
	}

	if t, err := dateparse.ParseIn(s, p.loc); err == nil {
		return t, true
	}

	return time.Time{}, false
}
