package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		settings, err := Load("CONFIG_TEST_DEFAULTS_")

		require.NoError(t, err)
		assert.Equal(t, DefaultSettings(), settings)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_ENV_JSON_LIMIT", "1024")
		t.Setenv("CONFIG_TEST_ENV_FORM_LIMIT", "512")
		t.Setenv("CONFIG_TEST_ENV_DISALLOW_UNKNOWN_FIELDS", "true")
		t.Setenv("CONFIG_TEST_ENV_DISALLOW_UNKNOWN_KEYS", "true")
		t.Setenv("CONFIG_TEST_ENV_QUERY_DELIMITER", ":")

		settings, err := Load("CONFIG_TEST_ENV_")

		require.NoError(t, err)
		assert.Equal(t, &Settings{
			JSONLimit:             1024,
			FormLimit:             512,
			DisallowUnknownFields: true,
			DisallowUnknownKeys:   true,
			QueryDelimiter:        ":",
		}, settings)
	})

	t.Run("invalid limit", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_LIMIT_JSON_LIMIT", "0")

		_, err := Load("CONFIG_TEST_LIMIT_")

		assert.ErrorContains(t, err, "invalid settings")
	})

	t.Run("invalid delimiter", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_DELIM_QUERY_DELIMITER", "&")

		_, err := Load("CONFIG_TEST_DELIM_")

		assert.Error(t, err)
	})

	t.Run("dotenv file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("CONFIG_TEST_DOTENV_FORM_LIMIT=2048\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("CONFIG_TEST_DOTENV_FORM_LIMIT") })

		settings, err := Load("CONFIG_TEST_DOTENV_", path)

		require.NoError(t, err)
		assert.Equal(t, int64(2048), settings.FormLimit)
	})

	t.Run("missing dotenv file", func(t *testing.T) {
		_, err := Load("CONFIG_TEST_MISSING_", filepath.Join(t.TempDir(), "missing.env"))

		assert.Error(t, err)
	})
}

func TestSettings_Options(t *testing.T) {
	settings := &Settings{
		JSONLimit:             100,
		FormLimit:             50,
		DisallowUnknownFields: true,
		DisallowUnknownKeys:   true,
		QueryDelimiter:        ":",
	}

	jsonOpts := settings.JSONOptions()
	assert.Equal(t, int64(100), jsonOpts.Limit)
	assert.True(t, jsonOpts.DisallowUnknownFields)

	formOpts := settings.FormOptions()
	assert.Equal(t, int64(50), formOpts.Limit)
	assert.Equal(t, ':', formOpts.Delimiter)
	assert.True(t, formOpts.DisallowUnknownKeys)

	queryOpts := settings.QueryOptions()
	assert.Equal(t, ':', queryOpts.Delimiter)
	assert.True(t, queryOpts.DisallowUnknownKeys)
}
