package studio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrefsMissingFileUsesDefaults(t *testing.T) {
	p, err := LoadPrefs(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ring", p.Placement)
	assert.Equal(t, "white", p.Style)
}

func TestSaveAndLoadPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studio.yaml")
	require.NoError(t, SavePrefs(path, Prefs{Email: " ana@example.com ", Placement: "Necklace", Style: "marble", OutputDir: "/tmp/out"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "placement: necklace")

	p, err := LoadPrefs(path)
	require.NoError(t, err)
	assert.Equal(t, Prefs{Email: "ana@example.com", Placement: "necklace", Style: "marble", OutputDir: "/tmp/out"}, p)
}

func TestLoadPrefsResetsUnknownTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("placement: tiara\nstyle: neon\n"), 0o600))
	p, err := LoadPrefs(path)
	require.NoError(t, err)
	assert.Equal(t, "ring", p.Placement)
	assert.Equal(t, "white", p.Style)
}

func TestLoadPrefsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("placement: [unclosed"), 0o600))
	p, err := LoadPrefs(path)
	assert.Error(t, err)
	assert.Equal(t, "ring", p.Placement)
}
