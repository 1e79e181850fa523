package util

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCBZ(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"page_002.jpg", "page_001.jpg"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(name), 0o644))
		files = append(files, p)
	}

	out := filepath.Join(dir, "ch_1.cbz")
	require.NoError(t, CreateCBZ(files, out, &ComicInfo{Series: "Solo Rider", Number: "1"}))

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"page_001.jpg", "page_002.jpg", "ComicInfo.xml"}, names)

	rc, err := zr.File[2].Open()
	require.NoError(t, err)
	raw, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)

	assert.Contains(t, string(raw), "<Series>Solo Rider</Series>")
	assert.Contains(t, string(raw), "<PageCount>2</PageCount>")
	assert.Contains(t, string(raw), "<Manga>YesAndRightToLeft</Manga>")

	// input order is left alone
	assert.Equal(t, "page_002.jpg", filepath.Base(files[0]))
}

func TestCreateCBZMissingFile(t *testing.T) {
	dir := t.TempDir()
	err := CreateCBZ([]string{filepath.Join(dir, "nope.jpg")}, filepath.Join(dir, "x.cbz"), nil)
	assert.Error(t, err)
}

func TestCleanupUnfinishedTempFolders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "ch_1_tmp"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "keep"), 0o755))

	var log bytes.Buffer
	CleanupUnfinishedTempFolders(dir, &log)

	assert.NoDirExists(t, filepath.Join(dir, "ch_1_tmp"))
	assert.DirExists(t, filepath.Join(dir, "keep"))
	assert.Contains(t, log.String(), "Removed")
}

func TestRemoveIfEmpty(t *testing.T) {
	parent := t.TempDir()
	empty := filepath.Join(parent, "out")
	require.NoError(t, os.Mkdir(empty, 0o755))

	RemoveIfEmpty(empty, io.Discard)
	assert.NoDirExists(t, empty)

	require.NoError(t, os.WriteFile(filepath.Join(parent, "a.cbz"), nil, 0o644))
	RemoveIfEmpty(parent, io.Discard)
	assert.DirExists(t, parent)
}

func TestHuman(t *testing.T) {
	assert.Equal(t, "512 B", Human(512))
	assert.Equal(t, "1.50 KB", Human(1536))
	assert.Equal(t, "2.00 GB", Human(2<<30))
}

func TestHumanCount(t *testing.T) {
	assert.Equal(t, "950", HumanCount(950))
	assert.Equal(t, "12.3K", HumanCount(12_345))
	assert.Equal(t, "1.2M", HumanCount(1_200_000))
}
