package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindWorkbooks(t *testing.T) {
	base := t.TempDir()
	reports := filepath.Join(base, "reports")
	require.NoError(t, os.MkdirAll(filepath.Join(reports, "nested.xlsx"), 0755))
	for _, name := range []string{"(B) 15-01-2026.xlsx", "(A) 15-01-2026.xlsx", ".bhavcopy-1.xlsx", "notes.txt", "upper.XLSX"} {
		require.NoError(t, os.WriteFile(filepath.Join(reports, name), []byte("x"), 0644))
	}

	found, err := NewDiscovery(base).FindWorkbooks("reports")
	require.NoError(t, err)

	var names []string
	for _, f := range found {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"(A) 15-01-2026.xlsx", "(B) 15-01-2026.xlsx", "upper.XLSX"}, names)
	assert.Equal(t, int64(1), found[0].Size)
	assert.Equal(t, filepath.Join(reports, "(A) 15-01-2026.xlsx"), found[0].Path)
}

func TestFindMissingDirectory(t *testing.T) {
	found, err := NewDiscovery(t.TempDir()).FindWorkbooks("nope")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGetLatestFile(t *testing.T) {
	now := time.Now()
	files := []FileInfo{
		{Name: "old", ModTime: now.Add(-time.Hour)},
		{Name: "new", ModTime: now},
		{Name: "mid", ModTime: now.Add(-time.Minute)},
	}

	latest, ok := GetLatestFile(files)
	require.True(t, ok)
	assert.Equal(t, "new", latest.Name)

	_, ok = GetLatestFile(nil)
	assert.False(t, ok)
}
