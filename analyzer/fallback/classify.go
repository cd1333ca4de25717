package fallback

import "github.com/abiiranathan/this-fallback/analyzer/syntax"

// NeedsFallback reports whether expr is a path whose head is a bare variable
// not bound in scope. The path is returned for convenience when it is.
//
// Literals, sub-expressions, this-paths and @arg paths never need a fallback.
func NeedsFallback(expr syntax.Expression, scope *ScopeStack) (*syntax.PathExpression, bool) {
	path, ok := expr.(*syntax.PathExpression)
	if !ok || !HeadNotInScope(path.Head, scope) {
		return nil, false
	}
	return path, true
}

// CallNeedsFallback reports whether m is a bare reference such as {{name}}
// or {{name.tail}}: no positional arguments, no named arguments and an
// ambiguous path as callee.
//
// A call carrying arguments is never ambiguous; its callee is left to the
// host's own resolution.
func CallNeedsFallback(m *syntax.MustacheStatement, scope *ScopeStack) (*syntax.PathExpression, bool) {
	if len(m.Params) > 0 || m.Hash.Len() > 0 {
		return nil, false
	}
	return NeedsFallback(m.Path, scope)
}
