package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFind_WalksUpToNearestConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "modules", "ntp", "manifests")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("style = true\n"), 0o644))

	path, ok, err := Find(nested)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(root, FileName), path)
}

func TestDecodeFile_ReadsAllKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	content := `
style = true
future_parser = true
puppetlint_args = ["--no-140chars-check"]
rubocop_args = ["--only", "Lint"]
jobs = 4
format = "sarif"
color = "off"

[discovery]
include_hidden = true
follow_symlinks = true
exclude = ["**/vendor/**"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := Default()
	require.NoError(t, decodeFile(path, &cfg))

	assert.True(t, cfg.Style)
	assert.True(t, cfg.FutureParser)
	assert.Equal(t, []string{"--no-140chars-check"}, cfg.PuppetLintArgs)
	assert.Equal(t, []string{"--only", "Lint"}, cfg.RubocopArgs)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, FormatSARIF, cfg.Format)
	assert.Equal(t, ColorOff, cfg.Color)
	assert.True(t, cfg.Discovery.IncludeHidden)
	assert.True(t, cfg.Discovery.FollowSymlinks)
	assert.Equal(t, []string{"**/vendor/**"}, cfg.Discovery.Exclude)
	require.NoError(t, cfg.Validate())
}

func TestDecodeFile_RejectsUnknownKeysAndBadTOML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("stlye = true\n"), 0o644))
	cfg := Default()
	err := decodeFile(unknown, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys: stlye")

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("style = \n"), 0o644))
	err = decodeFile(broken, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse TOML")
}

func TestApplyEnv_OverridesFileValues(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.RubocopArgs = []string{"--from-file"}

	err := applyEnv(&cfg, env(map[string]string{
		"PUPPETCHECK_STYLE":           "true",
		"PUPPETCHECK_FUTURE_PARSER":   "1",
		"PUPPETCHECK_PUPPETLINT_ARGS": "--no-autoloader_layout-check, --fail-on-warnings",
		"PUPPETCHECK_RUBOCOP_ARGS":    "",
		"PUPPETCHECK_JOBS":            "3",
		"PUPPETCHECK_FORMAT":          "sarif",
		"PUPPETCHECK_COLOR":           "on",
		"PUPPETCHECK_EXCLUDE":         "spec/**,vendor/**",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.Style)
	assert.True(t, cfg.FutureParser)
	assert.Equal(t, []string{"--no-autoloader_layout-check", "--fail-on-warnings"}, cfg.PuppetLintArgs)
	assert.Nil(t, cfg.RubocopArgs)
	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, FormatSARIF, cfg.Format)
	assert.Equal(t, ColorOn, cfg.Color)
	assert.Equal(t, []string{"spec/**", "vendor/**"}, cfg.Discovery.Exclude)
}

func TestApplyEnv_RejectsMalformedValues(t *testing.T) {
	t.Parallel()

	for key, val := range map[string]string{
		"PUPPETCHECK_STYLE": "maybe",
		"PUPPETCHECK_JOBS":  "many",
	} {
		cfg := Default()
		err := applyEnv(&cfg, env(map[string]string{key: val}))
		require.Error(t, err, key)
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default is valid", mutate: func(*Config) {}},
		{name: "bad format", mutate: func(c *Config) { c.Format = "xml" }, wantErr: `unknown format "xml"`},
		{name: "bad color", mutate: func(c *Config) { c.Color = "always" }, wantErr: `unknown color mode "always"`},
		{name: "negative jobs", mutate: func(c *Config) { c.Jobs = -1 }, wantErr: "jobs must be >= 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("jobs = 2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PUPPETCHECK_FORMAT=sarif\n"), 0o644))
	t.Setenv("PUPPETCHECK_FORMAT", "")
	require.NoError(t, os.Unsetenv("PUPPETCHECK_FORMAT"))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Jobs)
	assert.Equal(t, FormatSARIF, cfg.Format)
	assert.Equal(t, filepath.Join(dir, FileName), cfg.Path)
}

func TestLoad_LeavesValidationToCaller(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PUPPETCHECK_FORMAT", "xml")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "xml", cfg.Format)
	assert.Error(t, cfg.Validate())
}
