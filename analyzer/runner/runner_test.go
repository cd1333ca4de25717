package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abiiranathan/this-fallback/analyzer/fallback"
	"github.com/abiiranathan/this-fallback/analyzer/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, path string, tmpl *syntax.Template) {
	t.Helper()
	data, err := syntax.MarshalTemplate(tmpl)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func ambiguous(head string) *syntax.Template {
	return syntax.NewTemplate(syntax.NewMustache(syntax.NewPath(head), nil, nil))
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, filepath.Join(root, "app/templates/b.hbs.json"), ambiguous("b"))
	writeTemplate(t, filepath.Join(root, "app/templates/a.hbs.json"), ambiguous("a"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app/templates/notes.txt"), []byte("x"), 0o644))

	single := filepath.Join(root, "app/templates/a.hbs.json")
	files, err := Collect([]string{root, single})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "app/templates/a.hbs.json"),
		filepath.Join(root, "app/templates/b.hbs.json"),
	}, files)

	_, err = Collect([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	var files []string
	for _, name := range []string{"c", "a", "b", "e", "d"} {
		path := filepath.Join(root, name+".hbs.json")
		writeTemplate(t, path, ambiguous(name+"-value"))
		files = append(files, path)
	}
	broken := filepath.Join(root, "broken.hbs.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"type":"Nope"}`), 0o644))
	files = append(files, broken)

	results := New(fallback.Options{}, nil, root).Run(files)
	require.Len(t, results, 6)

	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i-1].File, results[i].File, "results are sorted by file")
	}

	byFile := map[string]Result{}
	for _, res := range results {
		byFile[res.File] = res
	}

	bad := byFile[broken]
	assert.Contains(t, bad.Error, "decode template")
	assert.Empty(t, bad.Template)

	res := byFile[filepath.Join(root, "a.hbs.json")]
	require.Empty(t, res.Error)
	assert.Equal(t, "a.hbs", res.Module)
	assert.Contains(t, res.Printed, `{{#if (isInvocable "a-value")}}{{invokeInvocable "a-value"}}{{else}}{{this.a-value}}{{/if}}`)
	assert.Len(t, res.Deprecations, 1)
	assert.Contains(t, res.Deprecations[0].Message, "`a.hbs` template")

	var locals []string
	for _, imp := range res.Imports {
		locals = append(locals, imp.Local)
	}
	assert.Equal(t, []string{"isInvocable", "invokeInvocable", "deprecationsHelper"}, locals)

	decoded, err := syntax.UnmarshalTemplate(res.Template)
	require.NoError(t, err)
	assert.Equal(t, res.Printed, syntax.Print(decoded))
}

func TestRunEmpty(t *testing.T) {
	assert.Nil(t, New(fallback.Options{}, nil, "").Run(nil))
}

func TestProcessFileCache(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "index.hbs.json")
	writeTemplate(t, path, ambiguous("property"))

	r := New(fallback.Options{}, nil, root)
	first := r.ProcessFile(path)
	require.Empty(t, first.Error)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, r.cache.len())

	second := r.ProcessFile(path)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Printed, second.Printed)

	writeTemplate(t, path, ambiguous("other"))
	third := r.ProcessFile(path)
	assert.False(t, third.Cached, "changed content misses the cache")
	assert.Equal(t, 2, r.cache.len())

	missing := r.ProcessFile(filepath.Join(root, "missing.json"))
	assert.NotEmpty(t, missing.Error)
}

func TestCacheKey(t *testing.T) {
	opts := fallback.Options{Helpers: fallback.DefaultRuntimeHelpers()}
	base := cacheKey(opts, "a.json", []byte("x"))

	assert.Equal(t, base, cacheKey(opts, "a.json", []byte("x")))
	assert.NotEqual(t, base, cacheKey(opts, "b.json", []byte("x")))
	assert.NotEqual(t, base, cacheKey(opts, "a.json", []byte("y")))

	custom := opts
	custom.Helpers.IsInvocable.Module = "my-app/is-invocable"
	assert.NotEqual(t, base, cacheKey(custom, "a.json", []byte("x")))

	logging := opts
	logging.EnableLogging = true
	assert.NotEqual(t, base, cacheKey(logging, "a.json", []byte("x")))
}

func TestModuleName(t *testing.T) {
	r := New(fallback.Options{}, nil, "/project")
	assert.Equal(t, "app/templates/index.hbs", r.moduleName("/project/app/templates/index.hbs.json"))
	assert.Equal(t, "/elsewhere/x.hbs", r.moduleName("/elsewhere/x.hbs.json"))
	assert.Equal(t, "x.hbs", New(fallback.Options{}, nil, "").moduleName("x.hbs"))
}
