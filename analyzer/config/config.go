// Package config loads the pass options from an HCL file.
//
// Example:
//
//	this_fallback {
//	  enable_logging = true
//	  log_file       = "${plugin.name}-plugin.log"
//	  log_level      = "info"
//
//	  runtime {
//	    is_invocable = "ember-this-fallback/is-invocable"
//	  }
//	}
//
// Expressions can reference plugin.name and plugin.cache_key.
package config

import (
	"os"
	"regexp"

	"github.com/abiiranathan/this-fallback/analyzer/fallback"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// Config is the resolved configuration.
type Config struct {
	EnableLogging bool
	LogFile       string
	LogLevel      string
	Helpers       fallback.RuntimeHelpers
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		EnableLogging: true,
		LogFile:       fallback.Name + "-plugin.log",
		LogLevel:      "info",
		Helpers:       fallback.DefaultRuntimeHelpers(),
	}
}

// PluginOptions returns the options for fallback.Build.
func (c Config) PluginOptions() fallback.Options {
	return fallback.Options{EnableLogging: c.EnableLogging, Helpers: c.Helpers}
}

type fileSchema struct {
	ThisFallback *optionsBlock `hcl:"this_fallback,block"`
}

type optionsBlock struct {
	EnableLogging *bool         `hcl:"enable_logging,optional"`
	LogFile       string        `hcl:"log_file,optional"`
	LogLevel      string        `hcl:"log_level,optional" validate:"omitempty,oneof=debug info warn error"`
	Runtime       *runtimeBlock `hcl:"runtime,block"`
}

type runtimeBlock struct {
	IsInvocable        string `hcl:"is_invocable,optional" validate:"omitempty,module_specifier"`
	InvokeInvocable    string `hcl:"invoke_invocable,optional" validate:"omitempty,module_specifier"`
	TryLookupHelper    string `hcl:"try_lookup_helper,optional" validate:"omitempty,module_specifier"`
	DeprecationsHelper string `hcl:"deprecations_helper,optional" validate:"omitempty,module_specifier"`
}

// moduleSpecifierRE accepts bare and scoped package paths such as
// "ember-this-fallback/is-invocable" or "@scope/pkg/helper".
var moduleSpecifierRE = regexp.MustCompile(`^(@[a-z0-9][\w.-]*/)?[a-z0-9][\w.-]*(/[\w.-]+)*$`)

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("module_specifier", func(fl validator.FieldLevel) bool {
		return moduleSpecifierRE.MatchString(fl.Field().String())
	})
	if err != nil {
		return nil, errors.Wrap(err, "register module_specifier validation")
	}
	return v, nil
}

// evalContext exposes the plugin identity to expressions.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"plugin": cty.ObjectVal(map[string]cty.Value{
				"name":      cty.StringVal(fallback.Name),
				"cache_key": cty.StringVal(fallback.CacheKey),
			}),
		},
	}
}

// Load reads the file at path. An empty path yields Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	return Parse(src, path)
}

// Parse decodes HCL source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (Config, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, errors.Wrapf(diags, "parse %s", filename)
	}

	var schema fileSchema
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &schema); diags.HasErrors() {
		return Config{}, errors.Wrapf(diags, "decode %s", filename)
	}

	cfg := Default()
	block := schema.ThisFallback
	if block == nil {
		return cfg, nil
	}
	validate, err := newValidator()
	if err != nil {
		return Config{}, err
	}
	// Struct descends into the runtime block when it is present.
	if err := validate.Struct(block); err != nil {
		return Config{}, errors.Wrapf(err, "validate %s", filename)
	}

	if block.EnableLogging != nil {
		cfg.EnableLogging = *block.EnableLogging
	}
	if block.LogFile != "" {
		cfg.LogFile = block.LogFile
	}
	if block.LogLevel != "" {
		cfg.LogLevel = block.LogLevel
	}
	if rt := block.Runtime; rt != nil {
		setModule(&cfg.Helpers.IsInvocable, rt.IsInvocable)
		setModule(&cfg.Helpers.InvokeInvocable, rt.InvokeInvocable)
		setModule(&cfg.Helpers.TryLookupHelper, rt.TryLookupHelper)
		setModule(&cfg.Helpers.DeprecationsHelper, rt.DeprecationsHelper)
	}
	return cfg, nil
}

func setModule(h *fallback.RuntimeHelper, module string) {
	if module != "" {
		h.Module = module
	}
}
