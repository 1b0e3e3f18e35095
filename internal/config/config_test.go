package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", WithSearchDirs(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, DefaultNpmVersion, cfg.AdditionalProperties.NpmVersion)
	assert.False(t, cfg.AdditionalProperties.Snapshot)
	assert.False(t, cfg.AdditionalProperties.WithInterfaces)
	assert.Empty(t, cfg.AdditionalProperties.NgVersion)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.ConfigPath)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "cfg.yaml", `
input: ./petstore.yaml
out: ./gen
includeTags: [pet, store]
excludeTags: user
includePaths: ["/pet/**"]
dryRun: true
additionalProperties:
  npmName: "@acme/petstore"
  npmVersion: 2.1.0
  snapshot: true
  withInterfaces: true
  ngVersion: 8.1.0
`)
	cfg, err := Load(p, WithSearchDirs(dir))
	require.NoError(t, err)

	assert.Equal(t, "./petstore.yaml", cfg.Input)
	assert.Equal(t, "./gen", cfg.Out)
	assert.Equal(t, []string{"pet", "store"}, cfg.IncludeTags)
	assert.Equal(t, []string{"user"}, cfg.ExcludeTags)
	assert.Equal(t, []string{"/pet/**"}, cfg.IncludePaths)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "@acme/petstore", cfg.AdditionalProperties.NpmName)
	assert.Equal(t, "2.1.0", cfg.AdditionalProperties.NpmVersion)
	assert.True(t, cfg.AdditionalProperties.Snapshot)
	assert.True(t, cfg.AdditionalProperties.WithInterfaces)
	assert.Equal(t, "8.1.0", cfg.AdditionalProperties.NgVersion)
	assert.Equal(t, p, cfg.ConfigPath)
}

func TestLoad_SearchesDefaultNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "swagger2ng.yaml", "input: found.yaml\n")
	cfg, err := Load("", WithSearchDirs(dir))
	require.NoError(t, err)
	assert.Equal(t, "found.yaml", cfg.Input)
}

func TestLoad_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "cfg.yaml", "input: a.yaml\nlang: go\n")
	_, err := Load(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "lang")
}

func TestLoad_UnknownNestedKey(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "cfg.yaml", "additionalProperties:\n  supportsES6: true\n")
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supportses6")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "cfg.yaml", "input: file.yaml\n")
	t.Setenv("SWAGGER2NG_INPUT", "env.yaml")
	t.Setenv("SWAGGER2NG_ADDITIONALPROPERTIES_NGVERSION", "7.0.0")
	t.Setenv("SWAGGER2NG_FORCE", "true")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "env.yaml", cfg.Input)
	assert.Equal(t, "7.0.0", cfg.AdditionalProperties.NgVersion)
	assert.True(t, cfg.Force)
}

func TestLoad_EnvFile(t *testing.T) {
	const key = "SWAGGER2NG_ADDITIONALPROPERTIES_NPMNAME"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	envPath := writeFile(t, dir, "test.env", key+"=from-dotenv\n")

	cfg, err := Load("", WithSearchDirs(dir), WithEnvFile(envPath))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.AdditionalProperties.NpmName)
}

func TestLoad_MissingExplicitEnvFile(t *testing.T) {
	_, err := Load("", WithSearchDirs(t.TempDir()), WithEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.IncludeTags = []string{"a", "b"}
	cfg.ExcludeTags = []string{"b"}
	cfg.IncludePaths = []string{"/pets/[a"}
	cfg.LogLevel = "loud"
	cfg.AdditionalProperties.NgVersion = "x.y"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"input", "includeTags", "includePaths", "logLevel", "additionalProperties.ngVersion"}, fields)
}

func TestValidate_OK(t *testing.T) {
	cfg := Default()
	cfg.Input = "spec.yaml"
	cfg.IncludePaths = []string{"/pets/**"}
	cfg.AdditionalProperties.NgVersion = "8"
	assert.NoError(t, cfg.Validate())
}

func TestNormalize(t *testing.T) {
	cfg := &Config{
		Input:       "  spec.yaml ",
		IncludeTags: []string{" a", "a", "", "b "},
		LogLevel:    " DEBUG ",
	}
	cfg.Normalize()
	assert.Equal(t, "spec.yaml", cfg.Input)
	assert.Equal(t, []string{"a", "b"}, cfg.IncludeTags)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DefaultNpmVersion, cfg.AdditionalProperties.NpmVersion)
}

func TestEffectiveNpmVersion(t *testing.T) {
	now := time.Date(2024, 3, 9, 17, 5, 42, 0, time.FixedZone("CET", 3600))

	cfg := Default()
	assert.Equal(t, "1.0.0", cfg.EffectiveNpmVersion(now))

	cfg.AdditionalProperties.NpmVersion = "2.3.4"
	cfg.AdditionalProperties.Snapshot = true
	assert.Equal(t, "2.3.4-SNAPSHOT.202403091605", cfg.EffectiveNpmVersion(now))
}

func TestSetProperties(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.SetProperties([]string{
		"npmName=@acme/api",
		"npm-version=3.0.0",
		"WITH_INTERFACES=yes",
		"snapshot=false",
		"ngVersion=4.3.0",
		"npmRepository=https://npm.example.com",
	}))
	ap := cfg.AdditionalProperties
	assert.Equal(t, "@acme/api", ap.NpmName)
	assert.Equal(t, "3.0.0", ap.NpmVersion)
	assert.True(t, ap.WithInterfaces)
	assert.False(t, ap.Snapshot)
	assert.Equal(t, "4.3.0", ap.NgVersion)
	assert.Equal(t, "https://npm.example.com", ap.NpmRepository)
}

func TestSetProperties_Errors(t *testing.T) {
	cfg := Default()
	for _, pair := range []string{"noequals", "=x", "supportsES6=true", "snapshot=maybe"} {
		err := cfg.SetProperties([]string{pair})
		require.Error(t, err, pair)
		assert.True(t, errors.Is(err, ErrInvalidConfig), pair)
	}
}
