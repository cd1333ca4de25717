// Package imports provides the default import binder of the CLI.
//
// The host compiler normally injects imports into the JavaScript module that
// wraps a template. Outside of a host, Binder plays that role: it hands out
// local names for runtime helper exports and records the import statements
// the compiled module would need.
package imports

import (
	"fmt"
	"strconv"

	"github.com/abiiranathan/this-fallback/analyzer/fallback"
)

// Import is one resolved binding: `import Local from "Module"` for the
// default export, `import { Export as Local } from "Module"` otherwise.
type Import struct {
	Module string `json:"module"`
	Export string `json:"export"`
	Local  string `json:"local"`
}

// String renders the import as a JavaScript import declaration.
func (i Import) String() string {
	if i.Export == "default" {
		return fmt.Sprintf("import %s from %q;", i.Local, i.Module)
	}
	if i.Export == i.Local {
		return fmt.Sprintf("import { %s } from %q;", i.Export, i.Module)
	}
	return fmt.Sprintf("import { %s as %s } from %q;", i.Export, i.Local, i.Module)
}

// Binder binds each (module, export) pair once and reuses the local name
// wherever it is not shadowed by a template local.
//
// Thread-safety: not safe for concurrent use. The CLI uses one Binder per
// template, matching the per-template plugin.
type Binder struct {
	imports []Import
	taken   map[string]bool
}

var _ fallback.Binder = (*Binder)(nil)

// NewBinder returns an empty Binder.
func NewBinder() *Binder {
	return &Binder{taken: make(map[string]bool)}
}

// BindImport implements fallback.Binder.
//
// Returns: the local name to reference the export at target. An existing
// binding is reused unless target.Has reports its name as a template local,
// in which case a fresh alias nameHint0, nameHint1, ... is allocated.
func (b *Binder) BindImport(moduleSpecifier, exportedName string, target fallback.BindingTarget, nameHint string) string {
	shadowed := func(name string) bool {
		return target.Has != nil && target.Has(name)
	}

	for _, imp := range b.imports {
		if imp.Module == moduleSpecifier && imp.Export == exportedName && !shadowed(imp.Local) {
			return imp.Local
		}
	}

	if nameHint == "" {
		nameHint = exportedName
	}
	local := nameHint
	for i := 0; b.taken[local] || shadowed(local); i++ {
		local = nameHint + strconv.Itoa(i)
	}
	b.taken[local] = true
	b.imports = append(b.imports, Import{Module: moduleSpecifier, Export: exportedName, Local: local})
	return local
}

// Imports returns the bindings in the order they were created.
func (b *Binder) Imports() []Import {
	return b.imports
}
