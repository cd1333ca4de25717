package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abiiranathan/this-fallback/analyzer/fallback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.EnableLogging)
	assert.Equal(t, "ember-this-fallback-plugin.log", cfg.LogFile)
}

func TestParse(t *testing.T) {
	src := `
this_fallback {
  enable_logging = false
  log_file       = "${plugin.name}.log"
  log_level      = "debug"

  runtime {
    is_invocable        = "@my-org/fallback/is-invocable"
    deprecations_helper = "my-app/helpers/deprecations"
  }
}
`
	cfg, err := Parse([]byte(src), "fallback.hcl")
	require.NoError(t, err)

	assert.False(t, cfg.EnableLogging)
	assert.Equal(t, "ember-this-fallback.log", cfg.LogFile)
	assert.Equal(t, "debug", cfg.LogLevel)

	def := fallback.DefaultRuntimeHelpers()
	assert.Equal(t, "@my-org/fallback/is-invocable", cfg.Helpers.IsInvocable.Module)
	assert.Equal(t, def.IsInvocable.NameHint, cfg.Helpers.IsInvocable.NameHint)
	assert.Equal(t, "my-app/helpers/deprecations", cfg.Helpers.DeprecationsHelper.Module)
	assert.Equal(t, def.InvokeInvocable, cfg.Helpers.InvokeInvocable)
	assert.Equal(t, def.TryLookupHelper, cfg.Helpers.TryLookupHelper)

	opts := cfg.PluginOptions()
	assert.False(t, opts.EnableLogging)
	assert.Equal(t, cfg.Helpers, opts.Helpers)
}

func TestParseWithoutBlock(t *testing.T) {
	cfg, err := Parse([]byte(""), "empty.hcl")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseCacheKey(t *testing.T) {
	cfg, err := Parse([]byte(`this_fallback { log_file = "${plugin.cache_key}-cache.log" }`), "f.hcl")
	require.NoError(t, err)
	assert.Equal(t, fallback.CacheKey+"-cache.log", cfg.LogFile)
	assert.True(t, cfg.EnableLogging, "unset fields keep defaults")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `this_fallback {`, "parse bad.hcl"},
		{"unknown attribute", `this_fallback { verbose = true }`, "decode bad.hcl"},
		{"unknown variable", `this_fallback { log_file = "${nope}" }`, "decode bad.hcl"},
		{"log level", `this_fallback { log_level = "loud" }`, "validate bad.hcl"},
		{"module specifier", `this_fallback {
  runtime {
    try_lookup_helper = "not a module"
  }
}`, "validate bad.hcl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`this_fallback { log_level = "warn" }`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestModuleSpecifierValidation(t *testing.T) {
	v, err := newValidator()
	require.NoError(t, err)

	valid := []string{"ember-this-fallback/is-invocable", "@scope/pkg/helper", "pkg"}
	for _, s := range valid {
		assert.NoError(t, v.Var(s, "module_specifier"), s)
	}
	invalid := []string{"not a module", "/absolute", "@scope"}
	for _, s := range invalid {
		assert.Error(t, v.Var(s, "module_specifier"), s)
	}
}
