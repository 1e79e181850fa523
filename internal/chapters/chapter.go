package chapters

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/brogergvhs/nelo/internal/providers"
)

var reUnderscore = regexp.MustCompile(`_+`)

type Chapter struct {
	providers.Chapter
}

// List holds chapters in reading order.
type List []Chapter

// FromSource converts a source chapter list (newest first) into reading
// order, so position 1 is the first chapter.
func FromSource(list []providers.Chapter) List {
	out := make(List, len(list))
	for i, c := range list {
		out[len(list)-1-i] = Chapter{Chapter: c}
	}
	return out
}

// Label is the chapter number as users type it ("12", "28.5"). Chapters
// without a number fall back to their id.
func (c Chapter) Label() string {
	if c.Number <= 0 {
		return c.ID
	}
	return strconv.FormatFloat(c.Number, 'f', -1, 64)
}

// Sanitize lowercases s into a file-name-safe token.
func Sanitize(s string) string {
	s = strings.ToLower(s)

	repl := strings.NewReplacer(
		"•", "_",
		"-", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		".", "_",
		":", "_",
		" ", "_",
		"(", "",
		")", "",
	)
	s = repl.Replace(s)

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}

	s = reUnderscore.ReplaceAllString(string(clean), "_")
	return strings.Trim(s, "_")
}

func (c Chapter) baseName() string {
	lbl := "ch_" + Sanitize(c.Label())
	title := Sanitize(c.Name)

	if title != "" && !strings.HasSuffix(lbl, title) {
		return lbl + "_" + title
	}
	return lbl
}

func (c Chapter) FolderName() string {
	return c.baseName() + "_tmp"
}

func (c Chapter) OutputCBZ() string {
	return c.baseName() + ".cbz"
}

func (c Chapter) OutputCBZPath(out string) string {
	return filepath.Join(out, c.OutputCBZ())
}
