// Package syntax models the Handlebars/Glimmer template tree consumed and
// produced by the this-fallback pass.
//
// The node set mirrors the host compiler's AST so trees can be exchanged as
// JSON with the host parser and printer:
//  1. Statements: MustacheStatement, BlockStatement, ElementNode, TextNode,
//     CommentStatement, MustacheCommentStatement
//  2. Expressions: PathExpression, SubExpression and the literals
//  3. Containers: Template, Block, AttrNode, ConcatStatement, Hash, HashPair
//
// Trees are plain values owned by whoever holds the root. Nothing in this
// package keeps parent pointers; rewriting code replaces nodes by assigning
// into the parent's field or slice slot.
package syntax

import "fmt"

// Position is a 1-based line and 0-based column inside a template source.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// SourceSpan locates a node in its template source.
type SourceSpan struct {
	// Module is the host module name of the template (e.g. "app/templates/index.hbs").
	Module string `json:"module,omitempty"`
	// Start is the position of the first character of the node.
	Start Position `json:"start"`
	// End is the position just after the last character of the node.
	End Position `json:"end"`
}

// IsZero reports whether the span carries no location information.
func (s SourceSpan) IsZero() bool {
	return s == SourceSpan{}
}

// String renders the span as "module:line:column".
func (s SourceSpan) String() string {
	module := s.Module
	if module == "" {
		module = "(unknown)"
	}
	return fmt.Sprintf("%s:%d:%d", module, s.Start.Line, s.Start.Column)
}

// Node is implemented by every element of the template tree.
type Node interface {
	// NodeType returns the host AST type tag, e.g. "MustacheStatement".
	NodeType() string
	// Location returns the source span of the node.
	Location() SourceSpan
}

// Statement is a node allowed in a Template, Block or ElementNode body.
type Statement interface {
	Node
	statementNode()
}

// Expression is a node allowed as a callee, positional argument or hash value.
type Expression interface {
	Node
	expressionNode()
}

// AttrValue is a node allowed as the value of an AttrNode.
type AttrValue interface {
	Node
	attrValueNode()
}

// ConcatPart is a node allowed inside a ConcatStatement.
type ConcatPart interface {
	Node
	concatPartNode()
}

// PathHead is the first segment of a PathExpression.
type PathHead interface {
	Node
	headNode()
}

// CallNode is implemented by the invocation forms: mustaches, blocks,
// element modifiers and sub-expressions.
type CallNode interface {
	Node
	// Callee returns the invoked expression.
	Callee() Expression
	// Arguments returns the positional arguments.
	Arguments() []Expression
	// SetArguments replaces the positional arguments.
	SetArguments([]Expression)
	// NamedArguments returns the hash; it may be nil for hand-built nodes.
	NamedArguments() *Hash
}

// Base carries the source span shared by every node.
type Base struct {
	Loc SourceSpan
}

// Location implements Node.
func (b Base) Location() SourceSpan { return b.Loc }

// ── Containers ───────────────────────────────────────────────────────────

// Template is the root of one compiled template.
type Template struct {
	Base
	Body        []Statement
	BlockParams []string
}

// Block is the body of a BlockStatement (its program or inverse).
type Block struct {
	Base
	Body        []Statement
	BlockParams []string
	// Chained marks an inverse produced by `{{else if ...}}`.
	Chained bool
}

// ElementNode is an HTML element or angle-bracket component invocation.
type ElementNode struct {
	Base
	Tag         string
	SelfClosing bool
	Attributes  []*AttrNode
	BlockParams []string
	Modifiers   []*ElementModifierStatement
	Comments    []*MustacheCommentStatement
	Children    []Statement
}

// AttrNode is one `name=value` attribute or `@arg=value` argument.
type AttrNode struct {
	Base
	Name  string
	Value AttrValue
}

// IsArgument reports whether the attribute passes a named component argument.
func (a *AttrNode) IsArgument() bool {
	return len(a.Name) > 0 && a.Name[0] == '@'
}

// ConcatStatement is a quoted attribute value mixing text and mustaches.
type ConcatStatement struct {
	Base
	Parts []ConcatPart
}

// Hash is the named-argument list of a call.
type Hash struct {
	Base
	Pairs []*HashPair
}

// Len returns the number of pairs; a nil hash is empty.
func (h *Hash) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Pairs)
}

// HashPair is one `key=value` named argument.
type HashPair struct {
	Base
	Key   string
	Value Expression
}

// ── Statements ───────────────────────────────────────────────────────────

// TextNode is literal template text.
type TextNode struct {
	Base
	Chars string
}

// MustacheStatement is a `{{...}}` (or `{{{...}}}` when Trusting) output.
type MustacheStatement struct {
	Base
	Path     Expression
	Params   []Expression
	Hash     *Hash
	Trusting bool
}

// BlockStatement is a `{{#path ...}}...{{/path}}` block invocation.
type BlockStatement struct {
	Base
	Path    Expression
	Params  []Expression
	Hash    *Hash
	Program *Block
	Inverse *Block
}

// ElementModifierStatement is a `{{modifier ...}}` inside an element's open tag.
type ElementModifierStatement struct {
	Base
	Path   Expression
	Params []Expression
	Hash   *Hash
}

// CommentStatement is an HTML `<!-- -->` comment.
type CommentStatement struct {
	Base
	Value string
}

// MustacheCommentStatement is a `{{!-- --}}` comment.
type MustacheCommentStatement struct {
	Base
	Value string
}

// ── Expressions ──────────────────────────────────────────────────────────

// SubExpression is a parenthesized `(path ...)` invocation.
type SubExpression struct {
	Base
	Path   Expression
	Params []Expression
	Hash   *Hash
}

// PathExpression is a head followed by zero or more field segments.
type PathExpression struct {
	Base
	Head PathHead
	Tail []string
}

// VarHead is a bare name such as `property` in `{{property.value}}`.
type VarHead struct {
	Base
	Name string
}

// ThisHead is the `this` keyword.
type ThisHead struct {
	Base
}

// AtHead is a named-argument reference such as `@arg`.
type AtHead struct {
	Base
	Name string
}

// StringLiteral is a quoted string.
type StringLiteral struct {
	Base
	Value string
}

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Base
	Value bool
}

// NumberLiteral is a numeric literal.
type NumberLiteral struct {
	Base
	Value float64
}

// UndefinedLiteral is `undefined`.
type UndefinedLiteral struct {
	Base
}

// NullLiteral is `null`.
type NullLiteral struct {
	Base
}

// ── NodeType ─────────────────────────────────────────────────────────────

func (*Template) NodeType() string                 { return "Template" }
func (*Block) NodeType() string                    { return "Block" }
func (*ElementNode) NodeType() string              { return "ElementNode" }
func (*AttrNode) NodeType() string                 { return "AttrNode" }
func (*ConcatStatement) NodeType() string          { return "ConcatStatement" }
func (*Hash) NodeType() string                     { return "Hash" }
func (*HashPair) NodeType() string                 { return "HashPair" }
func (*TextNode) NodeType() string                 { return "TextNode" }
func (*MustacheStatement) NodeType() string        { return "MustacheStatement" }
func (*BlockStatement) NodeType() string           { return "BlockStatement" }
func (*ElementModifierStatement) NodeType() string { return "ElementModifierStatement" }
func (*CommentStatement) NodeType() string         { return "CommentStatement" }
func (*MustacheCommentStatement) NodeType() string { return "MustacheCommentStatement" }
func (*SubExpression) NodeType() string            { return "SubExpression" }
func (*PathExpression) NodeType() string           { return "PathExpression" }
func (*VarHead) NodeType() string                  { return "VarHead" }
func (*ThisHead) NodeType() string                 { return "ThisHead" }
func (*AtHead) NodeType() string                   { return "AtHead" }
func (*StringLiteral) NodeType() string            { return "StringLiteral" }
func (*BooleanLiteral) NodeType() string           { return "BooleanLiteral" }
func (*NumberLiteral) NodeType() string            { return "NumberLiteral" }
func (*UndefinedLiteral) NodeType() string         { return "UndefinedLiteral" }
func (*NullLiteral) NodeType() string              { return "NullLiteral" }

// ── Marker methods ───────────────────────────────────────────────────────

func (*ElementNode) statementNode()              {}
func (*TextNode) statementNode()                 {}
func (*MustacheStatement) statementNode()        {}
func (*BlockStatement) statementNode()           {}
func (*CommentStatement) statementNode()         {}
func (*MustacheCommentStatement) statementNode() {}

func (*SubExpression) expressionNode()    {}
func (*PathExpression) expressionNode()   {}
func (*StringLiteral) expressionNode()    {}
func (*BooleanLiteral) expressionNode()   {}
func (*NumberLiteral) expressionNode()    {}
func (*UndefinedLiteral) expressionNode() {}
func (*NullLiteral) expressionNode()      {}

func (*TextNode) attrValueNode()          {}
func (*MustacheStatement) attrValueNode() {}
func (*ConcatStatement) attrValueNode()   {}

func (*TextNode) concatPartNode()          {}
func (*MustacheStatement) concatPartNode() {}

func (*VarHead) headNode()  {}
func (*ThisHead) headNode() {}
func (*AtHead) headNode()   {}

// ── CallNode ─────────────────────────────────────────────────────────────

func (n *MustacheStatement) Callee() Expression          { return n.Path }
func (n *MustacheStatement) Arguments() []Expression     { return n.Params }
func (n *MustacheStatement) SetArguments(a []Expression) { n.Params = a }
func (n *MustacheStatement) NamedArguments() *Hash       { return n.Hash }

func (n *BlockStatement) Callee() Expression          { return n.Path }
func (n *BlockStatement) Arguments() []Expression     { return n.Params }
func (n *BlockStatement) SetArguments(a []Expression) { n.Params = a }
func (n *BlockStatement) NamedArguments() *Hash       { return n.Hash }

func (n *ElementModifierStatement) Callee() Expression          { return n.Path }
func (n *ElementModifierStatement) Arguments() []Expression     { return n.Params }
func (n *ElementModifierStatement) SetArguments(a []Expression) { n.Params = a }
func (n *ElementModifierStatement) NamedArguments() *Hash       { return n.Hash }

func (n *SubExpression) Callee() Expression          { return n.Path }
func (n *SubExpression) Arguments() []Expression     { return n.Params }
func (n *SubExpression) SetArguments(a []Expression) { n.Params = a }
func (n *SubExpression) NamedArguments() *Hash       { return n.Hash }

// ── PathExpression helpers ───────────────────────────────────────────────

// Original returns the path as written, e.g. "this.user.name" or "@arg".
func (p *PathExpression) Original() string {
	var head string
	switch h := p.Head.(type) {
	case *VarHead:
		head = h.Name
	case *ThisHead:
		head = "this"
	case *AtHead:
		head = "@" + h.Name
	}
	for _, part := range p.Tail {
		head += "." + part
	}
	return head
}

// HeadName returns the VarHead or AtHead name and "" for `this`.
func (p *PathExpression) HeadName() string {
	switch h := p.Head.(type) {
	case *VarHead:
		return h.Name
	case *AtHead:
		return h.Name
	}
	return ""
}
