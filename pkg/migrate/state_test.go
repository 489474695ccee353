package migrate_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openInula/inula-sub000/pkg/migrate"
)

func TestState_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "state.json")
	want := migrate.BuildState{
		LastBuild: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Version:   "v1.2.0",
		Files:     12,
	}

	require.NoError(t, migrate.SaveState(path, want))

	got, err := migrate.LoadState(path)
	require.NoError(t, err)
	assert.True(t, want.LastBuild.Equal(got.LastBuild))
	assert.Equal(t, want.Version, got.Version)
	assert.Equal(t, want.Files, got.Files)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestState_MissingFileIsZero(t *testing.T) {
	t.Parallel()

	state, err := migrate.LoadState(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.True(t, state.LastBuild.IsZero())
}

func TestState_Corrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := migrate.LoadState(path)
	require.Error(t, err)
}

func TestState_YAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.yaml")
	want := migrate.BuildState{LastBuild: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), Files: 3}

	require.NoError(t, migrate.SaveState(path, want))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "last_build:")

	got, err := migrate.LoadState(path)
	require.NoError(t, err)
	assert.True(t, want.LastBuild.Equal(got.LastBuild))
	assert.Equal(t, 3, got.Files)
}
