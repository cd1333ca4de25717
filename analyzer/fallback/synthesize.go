package fallback

import "github.com/abiiranathan/this-fallback/analyzer/syntax"

// ExpressionFallback prefixes an ambiguous path with this, keeping the tail:
//
//	{{global-helper property}}  ->  {{global-helper this.property}}
//	{{property.value}}          ->  {{this.property.value}}
func ExpressionFallback(path *syntax.PathExpression) *syntax.PathExpression {
	out := syntax.NewThisPath(path.HeadName(), path.Tail...)
	out.Loc = path.Loc
	return out
}

// ambiguousStatementFallback replaces {{name}} in statement position with a
// runtime branch:
//
//	{{#if (isInvocable "name")}}
//	  {{invokeInvocable "name"}}
//	{{else}}
//	  {{this.name}}
//	{{/if}}
func (p *Plugin) ambiguousStatementFallback(m *syntax.MustacheStatement, path *syntax.PathExpression) *syntax.BlockStatement {
	name := path.HeadName()
	isInvocable := p.bind(p.helpers.IsInvocable, m)
	invoke := p.bind(p.helpers.InvokeInvocable, m)

	then := syntax.NewMustache(syntax.NewPath(invoke), []syntax.Expression{syntax.NewString(name)}, nil)
	then.Trusting = m.Trusting
	otherwise := syntax.NewMustache(ExpressionFallback(path), nil, nil)
	otherwise.Trusting = m.Trusting

	block := syntax.NewBlockStatement(
		syntax.NewPath("if"),
		[]syntax.Expression{
			syntax.NewSexpr(syntax.NewPath(isInvocable), []syntax.Expression{syntax.NewString(name)}, nil),
		},
		nil,
		syntax.NewBlock([]syntax.Statement{then}),
		syntax.NewBlock([]syntax.Statement{otherwise}),
	)
	block.Loc = m.Loc
	return block
}

// helperOrExpressionFallback rewrites an attribute-position {{name}} to use
// the lookup bound by wrapWithTryLookup:
//
//	{{(if maybeHelpers.name (maybeHelpers.name) this.name)}}
func helperOrExpressionFallback(blockParam string, m *syntax.MustacheStatement, path *syntax.PathExpression) *syntax.MustacheStatement {
	lookup := blockParam + "." + path.HeadName()
	out := syntax.NewMustache(
		syntax.NewSexpr(syntax.NewPath("if"), []syntax.Expression{
			syntax.NewPath(lookup),
			syntax.NewSexpr(syntax.NewPath(lookup), nil, nil),
			ExpressionFallback(path),
		}, nil),
		nil,
		nil,
	)
	out.Trusting = m.Trusting
	out.Loc = m.Loc
	return out
}

// wrapWithTryLookup wraps el in a block binding one lookup per head:
//
//	{{#let (hash a=(tryLookupHelper "a") b=(tryLookupHelper "b")) as |maybeHelpers|}}
//	  <El ...>
//	{{/let}}
func (p *Plugin) wrapWithTryLookup(el *syntax.ElementNode, heads []string, blockParam string) *syntax.BlockStatement {
	tryLookup := p.bind(p.helpers.TryLookupHelper, el)
	pairs := make([]*syntax.HashPair, len(heads))
	for i, head := range heads {
		pairs[i] = syntax.NewPair(head,
			syntax.NewSexpr(syntax.NewPath(tryLookup), []syntax.Expression{syntax.NewString(head)}, nil))
	}
	block := syntax.NewBlockStatement(
		syntax.NewPath("let"),
		[]syntax.Expression{syntax.NewSexpr(syntax.NewPath("hash"), nil, syntax.NewHash(pairs...))},
		nil,
		syntax.NewBlock([]syntax.Statement{el}, blockParam),
		nil,
	)
	block.Loc = el.Loc
	return block
}

// bind asks the binder for a reference to h usable at node.
func (p *Plugin) bind(h RuntimeHelper, node syntax.Node) string {
	return p.binder.BindImport(h.Module, h.Export, BindingTarget{Node: node, Has: p.scope.Has}, h.NameHint)
}
