package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at fresh temp dirs.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(work))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home, work
}

func TestLoadDefaults(t *testing.T) {
	home, _ := isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "utf-8", c.DefaultEncoding)
	assert.Equal(t, "midpoint", c.RangeMethod)
	assert.Equal(t, 20, c.RangeSampleSize)
	assert.Equal(t, 50, c.MaxDisplayRows)
	assert.Equal(t, ",", c.ThousandsSep)
	assert.Equal(t, filepath.Join(home, ".civtab", "recipes"), c.RecipesDir)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("range_method", "MAX"))
	require.NoError(t, c.Set("csv_bom", "true"))
	require.NoError(t, c.Set("max_display_rows", "10"))
	require.NoError(t, Save(c, ""))

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "max", again.RangeMethod)
	assert.True(t, again.CSVBOM)
	assert.Equal(t, 10, again.MaxDisplayRows)
}

func TestEnvAndDotEnvOverride(t *testing.T) {
	_, work := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(work, ".env"), []byte("CIVTAB_RANGE_METHOD=min\nCIVTAB_STRICT_COLUMNS=true\n"), 0o644))
	t.Setenv("CIVTAB_MAX_DISPLAY_ROWS", "7")
	t.Cleanup(func() {
		_ = os.Unsetenv("CIVTAB_RANGE_METHOD")
		_ = os.Unsetenv("CIVTAB_STRICT_COLUMNS")
	})

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "min", c.RangeMethod)
	assert.True(t, c.StrictColumns)
	assert.Equal(t, 7, c.MaxDisplayRows)
}

func TestExplicitConfigFile(t *testing.T) {
	_, work := isolate(t)
	p := filepath.Join(work, "civtab.yaml")
	require.NoError(t, os.WriteFile(p, []byte("default_encoding: latin-1\nlog_level: debug\n"), 0o644))
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "latin-1", c.DefaultEncoding)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestSetValidates(t *testing.T) {
	c := &Global{}
	assert.ErrorIs(t, c.Set("api_key", "x"), ErrUnknownKey)
	assert.Error(t, c.Set("range_method", "mean"))
	assert.Error(t, c.Set("range_sample_size", "0"))
	assert.Error(t, c.Set("strict_columns", "maybe"))
	assert.Error(t, c.Set("thousands_separator", ",,"))
	require.NoError(t, c.Set("thousands_separator", "."))
	assert.Equal(t, ".", c.ThousandsSep)

	keys := make([]string, 0)
	for _, kv := range c.Values() {
		keys = append(keys, kv[0])
	}
	assert.Contains(t, keys, "recipes_dir")
	assert.Len(t, keys, 12)
}
