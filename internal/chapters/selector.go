package chapters

import (
	"strconv"
	"strings"
)

// Select picks chapters from l, which is in reading order. chapter matches
// a label, an id or a 1-based position; rng is "first-last" by position;
// list is comma separated positions. The first non-empty selector wins and
// no selector keeps everything.
func (l List) Select(chapter, rng, list string) List {
	switch {
	case chapter != "":
		return l.pick(chapter)
	case rng != "":
		return l.span(rng)
	case list != "":
		return l.positions(list)
	}
	return l
}

// pick prefers labels and ids over positions, so "12" is chapter 12 when
// the manga has one.
func (l List) pick(key string) List {
	key = strings.TrimSpace(key)

	out := List{}
	for _, ch := range l {
		if ch.Label() == key || ch.ID == key {
			out = append(out, ch)
		}
	}
	if len(out) > 0 {
		return out
	}

	if ch, ok := l.at(key); ok {
		return List{ch}
	}
	return List{}
}

func (l List) span(rng string) List {
	from, to, ok := strings.Cut(rng, "-")
	if !ok {
		return List{}
	}

	start, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return List{}
	}
	end, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil || start < 1 || start > end || end > len(l) {
		return List{}
	}
	return l[start-1 : end]
}

func (l List) positions(list string) List {
	out := List{}
	for _, p := range strings.Split(list, ",") {
		if ch, ok := l.at(p); ok {
			out = append(out, ch)
		}
	}
	return out
}

func (l List) at(pos string) (Chapter, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(pos))
	if err != nil || n < 1 || n > len(l) {
		return Chapter{}, false
	}
	return l[n-1], true
}
