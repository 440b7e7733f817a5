package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envOf(m map[string]string) Lookup {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := load(dir, "", noEnv)
	require.NoError(t, err)

	assert.False(t, cfg.Bail)
	assert.Nil(t, cfg.Color)
	assert.Equal(t, dir, cfg.Cwd)
	assert.Equal(t, DefaultExtensions, cfg.Extensions)
	assert.Equal(t, DefaultPatterns, cfg.Patterns)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.Record)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, FileName, `
bail: true
color: false
cwd: suites
extensions: [yaml]
ignore: ["**/tmp"]
record: runs.db
log_level: debug
patterns: ["**/*.yaml"]
`)

	cfg, err := load(dir, "", noEnv)
	require.NoError(t, err)

	assert.True(t, cfg.Bail)
	require.NotNil(t, cfg.Color)
	assert.False(t, *cfg.Color)
	assert.Equal(t, filepath.Join(dir, "suites"), cfg.Cwd)
	assert.Equal(t, []string{"yaml"}, cfg.Extensions)
	assert.Equal(t, []string{"**/tmp"}, cfg.Ignore)
	assert.Equal(t, "runs.db", cfg.Record)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"**/*.yaml"}, cfg.Patterns)
}

func TestLoad_FileUnknownField(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, FileName, "bial: true\n")

	_, err := load(dir, "", noEnv)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, FileName, "")

	cfg, err := load(dir, "", noEnv)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := load(t.TempDir(), "/nonexistent/entail.yaml", noEnv)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, FileName, "bail: false\nlog_level: info\n")

	_, err := load(dir, "", envOf(map[string]string{
		EnvBail:       "true",
		EnvColor:      "always",
		EnvExtensions: ".cue, yaml,,",
		EnvRecord:     "x.db",
		EnvLogLevel:   "error",
	}))
	require.Error(t, err, "always is not a boolean")

	cfg, err := load(dir, "", envOf(map[string]string{
		EnvBail:       "true",
		EnvColor:      "1",
		EnvExtensions: ".cue, yaml,,",
		EnvRecord:     "x.db",
		EnvLogLevel:   "error",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.Bail)
	require.NotNil(t, cfg.Color)
	assert.True(t, *cfg.Color)
	assert.Equal(t, []string{"cue", "yaml"}, cfg.Extensions)
	assert.Equal(t, "x.db", cfg.Record)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".env", "ENTAIL_BAIL=true\nLOG_LEVEL=info\n")

	cfg, err := load(dir, "", envOf(map[string]string{EnvLogLevel: "debug"}))
	require.NoError(t, err)

	assert.True(t, cfg.Bail)
	assert.Equal(t, "debug", cfg.LogLevel, "process environment wins over .env")
}

func TestLoad_InvalidBail(t *testing.T) {
	_, err := load(t.TempDir(), "", envOf(map[string]string{EnvBail: "maybe"}))
	assert.ErrorContains(t, err, "invalid ENTAIL_BAIL")
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("auto")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = ParseColor("false")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.False(t, *c)

	_, err = ParseColor("sometimes")
	assert.Error(t, err)
}

func TestDottedExtensions(t *testing.T) {
	cfg := &Config{Extensions: []string{"yaml", ".cue"}}
	assert.Equal(t, []string{".yaml", ".cue"}, cfg.DottedExtensions())
}

func TestString(t *testing.T) {
	cfg := Default()
	cfg.Cwd = "/w"
	out := cfg.String()
	assert.Contains(t, out, "Cwd:         /w")
	assert.Contains(t, out, "Color:       auto")
	assert.Contains(t, out, "Record:      (not set)")
}
