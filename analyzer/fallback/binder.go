package fallback

import "github.com/abiiranathan/this-fallback/analyzer/syntax"

// BindingTarget is the point of the tree where a runtime helper reference
// will be used.
type BindingTarget struct {
	// Node is the node that is being rewritten.
	Node syntax.Node
	// Has reports whether a name is bound in template scope at Node. A binder
	// must not hand out a name for which Has returns true.
	Has func(name string) bool
}

// Binder makes a module export referenceable from generated template code
// and returns the name to use for it.
//
// Implementations must be deterministic per (moduleSpecifier, exportedName,
// target) so repeated requests share one binding.
type Binder interface {
	BindImport(moduleSpecifier, exportedName string, target BindingTarget, nameHint string) string
}

// BinderFunc adapts a function to Binder.
type BinderFunc func(moduleSpecifier, exportedName string, target BindingTarget, nameHint string) string

// BindImport implements Binder.
func (f BinderFunc) BindImport(moduleSpecifier, exportedName string, target BindingTarget, nameHint string) string {
	return f(moduleSpecifier, exportedName, target, nameHint)
}

// RuntimeHelper locates one runtime helper module.
type RuntimeHelper struct {
	Module   string
	Export   string
	NameHint string
}

// RuntimeHelpers are the helpers generated code calls at render time.
type RuntimeHelpers struct {
	// IsInvocable checks whether a name resolves to a helper or component.
	IsInvocable RuntimeHelper
	// InvokeInvocable invokes a name as a helper or component.
	InvokeInvocable RuntimeHelper
	// TryLookupHelper looks a name up as a helper and returns nothing if absent.
	TryLookupHelper RuntimeHelper
	// DeprecationsHelper replays the recorded deprecations.
	DeprecationsHelper RuntimeHelper
}

// DefaultRuntimeHelpers returns the helpers shipped with the runtime addon.
func DefaultRuntimeHelpers() RuntimeHelpers {
	return RuntimeHelpers{
		IsInvocable:        RuntimeHelper{Module: "ember-this-fallback/is-invocable", Export: "default", NameHint: "isInvocable"},
		InvokeInvocable:    RuntimeHelper{Module: "ember-this-fallback/invoke-invocable", Export: "default", NameHint: "invokeInvocable"},
		TryLookupHelper:    RuntimeHelper{Module: "ember-this-fallback/try-lookup-helper", Export: "default", NameHint: "tryLookupHelper"},
		DeprecationsHelper: RuntimeHelper{Module: "ember-this-fallback/deprecations-helper", Export: "default", NameHint: "deprecationsHelper"},
	}
}

// withDefaults fills the zero fields of h from DefaultRuntimeHelpers.
func (h RuntimeHelpers) withDefaults() RuntimeHelpers {
	d := DefaultRuntimeHelpers()
	fill := func(dst *RuntimeHelper, def RuntimeHelper) {
		if dst.Module == "" {
			dst.Module = def.Module
		}
		if dst.Export == "" {
			dst.Export = def.Export
		}
		if dst.NameHint == "" {
			dst.NameHint = def.NameHint
		}
	}
	fill(&h.IsInvocable, d.IsInvocable)
	fill(&h.InvokeInvocable, d.InvokeInvocable)
	fill(&h.TryLookupHelper, d.TryLookupHelper)
	fill(&h.DeprecationsHelper, d.DeprecationsHelper)
	return h
}
