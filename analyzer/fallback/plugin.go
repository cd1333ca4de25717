// Package fallback implements the this-fallback template pass.
//
// The pass walks one template and rewrites every bare identifier that is
// neither a local nor a built-in, so that the template no longer depends on
// implicit property lookup on the component:
//
//   - {{name.tail}} and call arguments become {{this.name.tail}}
//   - {{name}} in statement position becomes a runtime branch choosing
//     between invoking name and reading this.name
//   - {{name}} in an attribute value uses a try-lookup bound around the element
//
// Every rewrite records a deprecation, replayed at render time by a helper
// appended to the template.
package fallback

import (
	"strconv"
	"strings"

	"github.com/abiiranathan/this-fallback/analyzer/logger"
	"github.com/abiiranathan/this-fallback/analyzer/syntax"
	"github.com/pkg/errors"
)

// Name is the plugin name registered with the host.
const Name = "ember-this-fallback"

// CacheKey identifies the plugin output in host build caches. The output
// depends only on the input tree, so the key is constant.
const CacheKey = Name

var missingBinderMessage = []string{
	"The this-fallback-plugin relies on an import binder to reference its runtime helpers, but none was provided.",
	"To resolve this issue, please ensure the host environment supplies a Binder.",
}

// Options configure a plugin build.
type Options struct {
	// EnableLogging turns on warnings and debug output. When it is off a
	// missing binder is an error instead of a logged no-op.
	EnableLogging bool
	// Helpers overrides the runtime helper modules. Zero fields use
	// DefaultRuntimeHelpers.
	Helpers RuntimeHelpers
}

// Env is what the host provides for one compilation unit.
type Env struct {
	// ModuleName names the template in deprecation messages and logs.
	ModuleName string
	// Binder resolves runtime helper references. It may be nil on hosts
	// that cannot inject imports.
	Binder Binder
	// Logger receives warnings when logging is enabled. Nil discards them.
	Logger logger.Logger
}

// ASTPlugin is a template pass the host runs over one template.
type ASTPlugin interface {
	Name() string
	Transform(t *syntax.Template) error
}

// Build returns the pass for one compilation unit.
//
// Without a binder the pass cannot reference its runtime helpers. With
// logging enabled this is logged and a NoopPlugin is returned so the host
// build continues unchanged; otherwise an error wrapping ErrDefect is
// returned.
func Build(opts Options, env Env) (ASTPlugin, error) {
	log := logger.Noop()
	if opts.EnableLogging && env.Logger != nil {
		log = env.Logger.With(env.ModuleName)
	}

	if env.Binder != nil {
		return &Plugin{
			binder:   env.Binder,
			helpers:  opts.Helpers.withDefaults(),
			logger:   log,
			scope:    NewScopeStack(),
			recorder: NewRecorder(env.ModuleName),
			warned:   make(map[string]bool),
			reserved: make(map[string]bool),
		}, nil
	}

	if opts.EnableLogging {
		log.Error(missingBinderMessage...)
		return NoopPlugin{}, nil
	}
	return nil, errors.Wrap(ErrDefect, strings.Join(missingBinderMessage, " "))
}

// NoopPlugin leaves templates untouched.
type NoopPlugin struct{}

// Name implements ASTPlugin.
func (NoopPlugin) Name() string { return Name }

// Transform implements ASTPlugin.
func (NoopPlugin) Transform(*syntax.Template) error { return nil }

// Plugin is the this-fallback pass for one compilation unit.
//
// Thread-safety: a Plugin owns its scope stack and recorder and must not be
// shared between goroutines. Build one per template.
type Plugin struct {
	binder   Binder
	helpers  RuntimeHelpers
	logger   logger.Logger
	scope    *ScopeStack
	recorder *Recorder

	// warned holds the heads already reported for statement fallbacks.
	warned       map[string]bool
	// reserved holds the lookup block params of the elements being walked.
	reserved     map[string]bool
	deprecations []Deprecation
}

// Name implements ASTPlugin.
func (p *Plugin) Name() string { return Name }

// Deprecations returns the records flushed into transformed templates.
func (p *Plugin) Deprecations() []Deprecation { return p.deprecations }

// Transform rewrites t in place.
//
// An error wrapping ErrDefect means the walk found the tree in a state it
// cannot have produced itself; t must then be discarded.
func (p *Plugin) Transform(t *syntax.Template) (err error) {
	defer func() {
		if err != nil {
			p.scope = NewScopeStack()
			clear(p.reserved)
		}
	}()
	defer recoverDefect(&err)

	p.logger.Debug("before: '%s'", syntax.Squish(syntax.Print(t)))
	p.statements(t.Body)
	p.logger.Debug("after_: '%s'", syntax.Squish(syntax.Print(t)))

	if size := p.scope.Size(); size != 1 {
		raise("unbalanced ScopeStack push and pop, ScopeStack size is %d", size)
	}

	flushed, err := p.recorder.Flush(t, func() string {
		return p.bind(p.helpers.DeprecationsHelper, t)
	})
	if err != nil {
		return err
	}
	p.deprecations = append(p.deprecations, flushed...)
	return nil
}

// statements visits body, storing each replacement back into its slot.
func (p *Plugin) statements(body []syntax.Statement) {
	for i, stmt := range body {
		body[i] = p.statement(stmt)
	}
}

func (p *Plugin) statement(stmt syntax.Statement) syntax.Statement {
	switch n := stmt.(type) {
	case *syntax.MustacheStatement:
		return p.mustache(n)
	case *syntax.BlockStatement:
		return p.blockStatement(n)
	case *syntax.ElementNode:
		return p.element(n)
	}
	return stmt
}

func (p *Plugin) block(b *syntax.Block) {
	if b == nil {
		return
	}
	p.scope.Push(b.BlockParams)
	p.statements(b.Body)
	p.scope.Pop()
}

func (p *Plugin) blockStatement(n *syntax.BlockStatement) syntax.Statement {
	p.call(n)
	p.block(n.Program)
	p.block(n.Inverse)
	return n
}

// mustache handles a mustache in statement position.
func (p *Plugin) mustache(m *syntax.MustacheStatement) syntax.Statement {
	path, ok := CallNeedsFallback(m, p.scope)
	if !ok {
		p.call(m)
		return m
	}

	head := path.HeadName()
	p.recorder.Record(head)
	if len(path.Tail) > 0 {
		m.Path = ExpressionFallback(path)
		return m
	}
	if !p.warned[head] {
		p.warned[head] = true
		p.logger.Warn(logger.Entry{Lines: statementFallbackWarning(head), Loc: locOf(m)})
	}
	return p.ambiguousStatementFallback(m, path)
}

// lookupParamName is the block param the attribute lookups are bound to.
const lookupParamName = "maybeHelpers"

// element rewrites the ambiguous attribute values first, then walks the rest
// of the element under the enclosing scope. The lookup block param is never
// in scope for the element's own references; the wrapper is returned
// unwalked.
func (p *Plugin) element(el *syntax.ElementNode) syntax.Statement {
	blockParam := p.lookupParam()
	heads, lookups := p.attributes(el, blockParam)

	var wrapped *syntax.BlockStatement
	if len(heads) > 0 {
		wrapped = p.wrapWithTryLookup(el, heads, blockParam)
		p.reserved[blockParam] = true
		defer delete(p.reserved, blockParam)
	}

	for _, attr := range el.Attributes {
		switch v := attr.Value.(type) {
		case *syntax.MustacheStatement:
			if !lookups[v] {
				p.attrMustache(v)
			}
		case *syntax.ConcatStatement:
			for _, part := range v.Parts {
				if m, ok := part.(*syntax.MustacheStatement); ok && !lookups[m] {
					p.attrMustache(m)
				}
			}
		}
	}
	for _, mod := range el.Modifiers {
		p.call(mod)
	}

	p.scope.Push(el.BlockParams)
	p.statements(el.Children)
	p.scope.Pop()

	if wrapped != nil {
		return wrapped
	}
	return el
}

// lookupParam picks the lookup block param for the next element. Params of
// enclosing wrapped elements are skipped as well so nested lookups keep
// distinct names.
func (p *Plugin) lookupParam() string {
	name := UnusedNameLike(lookupParamName, p.scope)
	for i := 0; p.reserved[name] || p.scope.Has(name); i++ {
		name = lookupParamName + strconv.Itoa(i)
	}
	return name
}

// attributes rewrites the ambiguous attribute values of el. It returns the
// distinct heads needing a runtime lookup, in first-seen order, and the set of
// synthesized lookup mustaches, which must not be walked.
func (p *Plugin) attributes(el *syntax.ElementNode, blockParam string) ([]string, map[*syntax.MustacheStatement]bool) {
	var heads []string
	var firstAttr string
	var firstLoc *syntax.SourceSpan
	seen := make(map[string]bool)
	lookups := make(map[*syntax.MustacheStatement]bool)

	rewrite := func(attr string, m *syntax.MustacheStatement) *syntax.MustacheStatement {
		path, ok := CallNeedsFallback(m, p.scope)
		if !ok {
			return m
		}
		head := path.HeadName()
		p.recorder.Record(head)
		if len(path.Tail) > 0 {
			m.Path = ExpressionFallback(path)
			return m
		}
		if !seen[head] {
			seen[head] = true
			heads = append(heads, head)
			if firstLoc == nil {
				firstAttr, firstLoc = attr, locOf(m)
			}
		}
		out := helperOrExpressionFallback(blockParam, m, path)
		lookups[out] = true
		return out
	}

	for _, attr := range el.Attributes {
		switch v := attr.Value.(type) {
		case *syntax.MustacheStatement:
			if attr.IsArgument() {
				// Arguments are passed, never invoked.
				if path, ok := CallNeedsFallback(v, p.scope); ok {
					p.recorder.Record(path.HeadName())
					v.Path = ExpressionFallback(path)
				}
				continue
			}
			attr.Value = rewrite(attr.Name, v)
		case *syntax.ConcatStatement:
			for i, part := range v.Parts {
				if m, ok := part.(*syntax.MustacheStatement); ok {
					v.Parts[i] = rewrite(attr.Name, m)
				}
			}
		}
	}

	if len(heads) > 0 {
		// Only the first head is logged to bound log volume.
		p.logger.Warn(logger.Entry{Lines: attrFallbackWarning(firstAttr, heads[0]), Loc: firstLoc})
	}
	return heads, lookups
}

// attrMustache walks a mustache left in an attribute value. Ambiguous
// references there have all been rewritten by attributes.
func (p *Plugin) attrMustache(m *syntax.MustacheStatement) {
	if _, ok := CallNeedsFallback(m, p.scope); ok {
		raise("unexpected ambiguous mustache %s in attribute value at %s", syntax.Print(m), m.Loc)
	}
	p.call(m)
}

// call rewrites the arguments of any invocation. The callee itself is only
// walked, never rewritten.
func (p *Plugin) call(n syntax.CallNode) {
	p.expression(n.Callee())
	if args := n.Arguments(); len(args) > 0 {
		out := make([]syntax.Expression, len(args))
		for i, arg := range args {
			out[i] = p.argument(arg)
		}
		n.SetArguments(out)
	}
	if hash := n.NamedArguments(); hash != nil {
		for _, pair := range hash.Pairs {
			pair.Value = p.argument(pair.Value)
		}
	}
}

func (p *Plugin) argument(expr syntax.Expression) syntax.Expression {
	if path, ok := NeedsFallback(expr, p.scope); ok {
		p.recorder.Record(path.HeadName())
		return ExpressionFallback(path)
	}
	p.expression(expr)
	return expr
}

func (p *Plugin) expression(expr syntax.Expression) {
	if sexpr, ok := expr.(*syntax.SubExpression); ok {
		p.call(sexpr)
	}
}

func locOf(n syntax.Node) *syntax.SourceSpan {
	loc := n.Location()
	if loc.IsZero() {
		return nil
	}
	return &loc
}
