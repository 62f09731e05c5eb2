package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOrCreateDefaults(t *testing.T) {
	dir := t.TempDir()

	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Empty(t, c.Model)
	assert.Equal(t, filepath.Join(dir, "cohort.db"), c.DB)

	// the file was written
	_, err = os.Stat(filepath.Join(dir, configFileName))
	assert.NoError(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	want := &Config{
		Model: "/models/forest.json",
		DB:    "/data/cohort.db",
	}
	require.NoError(t, Save(dir, want))

	got, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveInvalidArgs(t *testing.T) {
	assert.Error(t, Save("", &Config{}))
	assert.Error(t, Save(t.TempDir(), nil))
}

func TestReadOrCreateEmptyDir(t *testing.T) {
	_, err := ReadOrCreate("")
	assert.Error(t, err)
}

func TestReadOrCreateBadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("model: [broken"), 0600))

	_, err := ReadOrCreate(dir)
	assert.Error(t, err)
}
