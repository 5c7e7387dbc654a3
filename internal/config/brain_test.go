package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBrain(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid brain loads", func(t *testing.T) {
		path := filepath.Join(dir, "brain.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"intent":"seek balance","style":"sparse"}`), 0644))

		b, err := LoadBrain(path)
		require.NoError(t, err)
		assert.Equal(t, "seek balance", b.Intent)
		assert.Equal(t, "sparse", b.Style)
	})

	t.Run("missing intent is a ValidationError", func(t *testing.T) {
		path := filepath.Join(dir, "brain_empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"style":"x"}`), 0644))

		_, err := LoadBrain(path)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("blank intent is rejected", func(t *testing.T) {
		path := filepath.Join(dir, "brain_blank.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"intent":"   "}`), 0644))

		_, err := LoadBrain(path)
		assert.Error(t, err)
	})

	t.Run("absent file errors", func(t *testing.T) {
		_, err := LoadBrain(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)
	})
}

func TestBrainSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brain_out.json")
	b := &Brain{Intent: "walk the spiral", Style: "lyrical"}
	require.NoError(t, b.Save(path))

	got, err := LoadBrain(path)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestDiscoverBrains(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"brain.json", "brain_z.json", "brain_a.json", "other.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(`{"intent":"x"}`), 0644))
	}

	paths, names, err := DiscoverBrains(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"brain", "brain_a", "brain_z"}, names, "sorted, non-brain files skipped")
	assert.Equal(t, filepath.Join(dir, "brain_a.json"), paths["brain_a"])
}

func TestDiscoverBrainsEmptyDir(t *testing.T) {
	_, names, err := DiscoverBrains(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, names)
}
