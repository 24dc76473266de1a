package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/shared/testutil"
)

func TestGetPaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")

	tests := []struct {
		name string
		cfg  PathsConfig
		want Paths
	}{
		{
			name: "defaults under base",
			cfg:  PathsConfig{BaseDir: base},
			want: Paths{
				BaseDir:      base,
				DownloadsDir: filepath.Join(base, "downloads"),
				ReportsDir:   filepath.Join(base, "reports"),
				LogsDir:      filepath.Join(base, "logs"),
				RegistryFile: filepath.Join(base, "Clients.txt"),
			},
		},
		{
			name: "absolute entries kept",
			cfg:  PathsConfig{BaseDir: base, ReportsDir: abs, RegistryFile: "conf/clients.txt"},
			want: Paths{
				BaseDir:      base,
				DownloadsDir: filepath.Join(base, "downloads"),
				ReportsDir:   abs,
				LogsDir:      filepath.Join(base, "logs"),
				RegistryFile: filepath.Join(base, "conf", "clients.txt"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetPaths(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestGetPathsEmptyBaseIsAbsolute(t *testing.T) {
	got, err := GetPaths(PathsConfig{})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got.BaseDir))
	assert.True(t, filepath.IsAbs(got.RegistryFile))
}

func TestEnsureDirectories(t *testing.T) {
	paths, err := GetPaths(PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())
	assert.DirExists(t, paths.DownloadsDir)
	assert.DirExists(t, paths.ReportsDir)
	assert.DirExists(t, paths.LogsDir)
	assert.False(t, FileExists(paths.RegistryFile))
}

func TestPathHelpers(t *testing.T) {
	paths, err := GetPaths(PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(paths.ReportsDir, "(A) 15-01-2026.xlsx"), paths.GetReportPath("(A) 15-01-2026.xlsx"))
	assert.Equal(t, filepath.Join(paths.LogsDir, "bhavcopy.log"), paths.GetLogPath("bhavcopy.log"))

	logger, logs := testutil.NewTestLogger(t)
	paths.LogPathResolution(logger)
	testutil.AssertLogAttr(t, logs, "reports_dir", paths.ReportsDir)
}
