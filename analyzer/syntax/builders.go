package syntax

import "strings"

// NewPath builds a PathExpression from its written form.
//
// Accepted forms:
//   - "name" / "name.tail" : VarHead
//   - "this" / "this.tail" : ThisHead
//   - "@arg" / "@arg.tail" : AtHead
func NewPath(original string) *PathExpression {
	parts := strings.Split(original, ".")
	var head PathHead
	switch first := parts[0]; {
	case first == "this":
		head = &ThisHead{}
	case strings.HasPrefix(first, "@"):
		head = &AtHead{Name: first[1:]}
	default:
		head = &VarHead{Name: first}
	}
	var tail []string
	if len(parts) > 1 {
		tail = parts[1:]
	}
	return &PathExpression{Head: head, Tail: tail}
}

// NewThisPath builds `this.head.tail...`.
func NewThisPath(head string, tail ...string) *PathExpression {
	return &PathExpression{
		Head: &ThisHead{},
		Tail: append([]string{head}, tail...),
	}
}

// NewMustache builds `{{path params... hash}}`.
func NewMustache(path Expression, params []Expression, hash *Hash) *MustacheStatement {
	return &MustacheStatement{Path: path, Params: params, Hash: orEmpty(hash)}
}

// NewSexpr builds `(path params... hash)`.
func NewSexpr(path Expression, params []Expression, hash *Hash) *SubExpression {
	return &SubExpression{Path: path, Params: params, Hash: orEmpty(hash)}
}

// NewBlockStatement builds `{{#path params... hash}}program{{else}}inverse{{/path}}`.
func NewBlockStatement(path Expression, params []Expression, hash *Hash, program, inverse *Block) *BlockStatement {
	if program == nil {
		program = NewBlock(nil)
	}
	return &BlockStatement{
		Path:    path,
		Params:  params,
		Hash:    orEmpty(hash),
		Program: program,
		Inverse: inverse,
	}
}

// NewBlock builds a block body binding the given block params.
func NewBlock(body []Statement, blockParams ...string) *Block {
	return &Block{Body: body, BlockParams: blockParams}
}

// NewModifier builds an element modifier `{{path params... hash}}`.
func NewModifier(path Expression, params []Expression, hash *Hash) *ElementModifierStatement {
	return &ElementModifierStatement{Path: path, Params: params, Hash: orEmpty(hash)}
}

// NewElement builds an element; it is self-closing when it has no children.
func NewElement(tag string, attrs []*AttrNode, children []Statement, blockParams ...string) *ElementNode {
	return &ElementNode{
		Tag:         tag,
		SelfClosing: len(children) == 0,
		Attributes:  attrs,
		BlockParams: blockParams,
		Children:    children,
	}
}

// NewAttr builds `name=value`.
func NewAttr(name string, value AttrValue) *AttrNode {
	return &AttrNode{Name: name, Value: value}
}

// NewText builds a text node.
func NewText(chars string) *TextNode {
	return &TextNode{Chars: chars}
}

// NewConcat builds a quoted attribute value.
func NewConcat(parts ...ConcatPart) *ConcatStatement {
	return &ConcatStatement{Parts: parts}
}

// NewHash builds a hash from pairs.
func NewHash(pairs ...*HashPair) *Hash {
	return &Hash{Pairs: pairs}
}

// NewPair builds `key=value`.
func NewPair(key string, value Expression) *HashPair {
	return &HashPair{Key: key, Value: value}
}

func NewString(v string) *StringLiteral     { return &StringLiteral{Value: v} }
func NewBoolean(v bool) *BooleanLiteral     { return &BooleanLiteral{Value: v} }
func NewNumber(v float64) *NumberLiteral    { return &NumberLiteral{Value: v} }
func NewUndefined() *UndefinedLiteral       { return &UndefinedLiteral{} }
func NewNull() *NullLiteral                 { return &NullLiteral{} }
func NewComment(v string) *CommentStatement { return &CommentStatement{Value: v} }

// NewMustacheComment builds `{{!--v--}}`.
func NewMustacheComment(v string) *MustacheCommentStatement {
	return &MustacheCommentStatement{Value: v}
}

// NewTemplate builds a template root.
func NewTemplate(body ...Statement) *Template {
	return &Template{Body: body}
}

func orEmpty(h *Hash) *Hash {
	if h == nil {
		return &Hash{}
	}
	return h
}
