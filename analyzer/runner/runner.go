// Package runner applies the this-fallback pass to host AST files.
//
// Each file holds one template encoded in the host AST JSON format. Files are
// processed by a pool of workers, each template with its own plugin, binder
// and recorder; only the result cache and the logger are shared.
package runner

import (
	"cmp"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/abiiranathan/this-fallback/analyzer/fallback"
	"github.com/abiiranathan/this-fallback/analyzer/imports"
	"github.com/abiiranathan/this-fallback/analyzer/logger"
	"github.com/abiiranathan/this-fallback/analyzer/syntax"
	"github.com/pkg/errors"
)

// Result is the outcome for one file.
type Result struct {
	// File is the input path.
	File string `json:"file"`
	// Module is the template module name used in messages.
	Module string `json:"module"`
	// Template is the rewritten tree in host AST JSON.
	Template json.RawMessage `json:"template,omitempty"`
	// Printed is the rewritten template source.
	Printed string `json:"printed,omitempty"`
	// Imports lists the runtime helper bindings the template needs.
	Imports []imports.Import `json:"imports,omitempty"`
	// Deprecations lists the records appended to the template.
	Deprecations []fallback.Deprecation `json:"deprecations,omitempty"`
	// Error is set when the template could not be transformed. No tree is
	// reported in that case.
	Error string `json:"error,omitempty"`
	// Cached reports whether the result came from the cache.
	Cached bool `json:"cached,omitempty"`
}

// Runner transforms batches of files.
//
// Thread-safety: Run may be called from several goroutines; results are
// cached in a concurrent-safe map.
type Runner struct {
	opts  fallback.Options
	log   logger.Logger
	root  string
	cache *resultCache
}

// New returns a Runner. root is the directory module names are made
// relative to; log may be nil.
func New(opts fallback.Options, log logger.Logger, root string) *Runner {
	if log == nil {
		log = logger.Noop()
	}
	return &Runner{opts: opts, log: log, root: root, cache: newResultCache()}
}

// Collect expands paths into the sorted list of .json files they name.
// Directories are walked recursively.
func Collect(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrap(err, "stat input")
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".json") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walk %s", p)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// Run transforms files concurrently and returns one result per file, sorted
// by file path.
//
// Concurrency strategy:
//   - One worker per CPU, each handed a contiguous chunk of files
//   - Results aggregated from a channel after all workers finish
func (r *Runner) Run(files []string) []Result {
	if len(files) == 0 {
		return nil
	}

	numWorkers := max(runtime.NumCPU(), 1)
	chunkSize := (len(files) + numWorkers - 1) / numWorkers
	resultChan := make(chan []Result, numWorkers)
	var wg sync.WaitGroup

	for w := range numWorkers {
		start := w * chunkSize
		if start >= len(files) {
			break
		}
		end := min(start+chunkSize, len(files))
		chunk := files[start:end]

		wg.Go(func() {
			r.worker(chunk, resultChan)
		})
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var all []Result
	for results := range resultChan {
		all = append(all, results...)
	}
	slices.SortFunc(all, func(a, b Result) int { return cmp.Compare(a.File, b.File) })
	return all
}

func (r *Runner) worker(chunk []string, resultChan chan<- []Result) {
	results := make([]Result, 0, len(chunk))
	for _, file := range chunk {
		results = append(results, r.ProcessFile(file))
	}
	resultChan <- results
}

// ProcessFile transforms one file, consulting the cache first.
func (r *Runner) ProcessFile(file string) Result {
	content, err := os.ReadFile(file)
	if err != nil {
		return Result{File: file, Error: err.Error()}
	}

	key := cacheKey(r.opts, file, content)
	if cached, ok := r.cache.get(key); ok {
		cached.Cached = true
		return cached
	}

	res := r.transform(file, content)
	if res.Error == "" {
		r.cache.set(key, res)
	}
	return res
}

func (r *Runner) transform(file string, content []byte) Result {
	res := Result{File: file, Module: r.moduleName(file)}

	tmpl, err := syntax.UnmarshalTemplate(content)
	if err != nil {
		res.Error = errors.Wrap(err, "decode template").Error()
		return res
	}
	if tmpl.Loc.Module != "" {
		res.Module = tmpl.Loc.Module
	}

	binder := imports.NewBinder()
	plugin, err := fallback.Build(r.opts, fallback.Env{
		ModuleName: res.Module,
		Binder:     binder,
		Logger:     r.log,
	})
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if err := plugin.Transform(tmpl); err != nil {
		res.Error = err.Error()
		return res
	}

	encoded, err := syntax.MarshalTemplate(tmpl)
	if err != nil {
		res.Error = errors.Wrap(err, "encode template").Error()
		return res
	}
	res.Template = encoded
	res.Printed = syntax.Print(tmpl)
	res.Imports = binder.Imports()
	if p, ok := plugin.(*fallback.Plugin); ok {
		res.Deprecations = p.Deprecations()
	}
	return res
}

// moduleName derives "app/templates/index.hbs" from
// "<root>/app/templates/index.hbs.json".
func (r *Runner) moduleName(file string) string {
	name := file
	if r.root != "" {
		if rel, err := filepath.Rel(r.root, file); err == nil && !strings.HasPrefix(rel, "..") {
			name = rel
		}
	}
	return filepath.ToSlash(strings.TrimSuffix(name, ".json"))
}
