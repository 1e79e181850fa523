package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brogergvhs/nelo/internal/providers"
	"github.com/brogergvhs/nelo/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSince(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	got, err := parseSince("72h", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-72*time.Hour), got)

	got, err = parseSince("3d", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -3), got)

	got, err = parseSince("2024-03-01", now)
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 1, got.Day())

	_, err = parseSince("whenever", now)
	assert.Error(t, err)
	_, err = parseSince("", now)
	assert.Error(t, err)
}

func TestReadIDs(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(file, []byte("# library\nmanga-c\n\n  manga-d  \n"), 0o644))

	ids, err := readIDs([]string{"manga-a, manga-b", ""}, file)
	require.NoError(t, err)
	assert.Equal(t, []string{"manga-a", "manga-b", "manga-c", "manga-d"}, ids)

	_, err = readIDs(nil, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	assert.Contains(t, describe(fmt.Errorf("manga x: %w", providers.ErrNotFound)), "not found")
	assert.Contains(t, describe(providers.ErrCursorMismatch), "bad --cursor")
	assert.Equal(t, "not found: https://nelo.test/manga/x",
		describe(&scheduler.FetchError{URL: "https://nelo.test/manga/x", Status: 404}))
	assert.Equal(t, "boom", describe(errors.New("boom")))
}

func TestAskYesNo(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, askYesNo(strings.NewReader("Y\n"), &out, "Sure?"))
	assert.Equal(t, "Sure? [y/N]: ", out.String())
	assert.False(t, askYesNo(strings.NewReader("\n"), &out, "Sure?"))
}

func TestPrintTiles(t *testing.T) {
	var out bytes.Buffer
	printTiles(&out, []providers.MangaTile{{ID: "manga-a", Title: "Solo Rider", Subtitle: "Chapter 9"}},
		providers.NewCursor(providers.ListingSearch, 2))

	assert.Contains(t, out.String(), "Solo Rider")
	assert.Contains(t, out.String(), "--cursor search:2")

	out.Reset()
	printTiles(&out, nil, nil)
	assert.Equal(t, "No results found.\n", out.String())
}
