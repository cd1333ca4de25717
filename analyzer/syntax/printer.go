package syntax

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// voidElements never take a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "command": true,
	"embed": true, "hr": true, "img": true, "input": true, "keygen": true,
	"link": true, "meta": true, "param": true, "source": true, "track": true,
	"wbr": true,
}

// Print renders a node back to Handlebars source.
//
// The output is canonical rather than faithful: whitespace control markers
// and original quoting are not preserved, which is what snapshot tests and
// debug logs need.
func Print(node Node) string {
	var sb strings.Builder
	p := printer{sb: &sb}
	p.node(node)
	return sb.String()
}

type printer struct {
	sb *strings.Builder
}

func (p printer) write(s string) {
	p.sb.WriteString(s)
}

func (p printer) node(node Node) {
	switch n := node.(type) {
	case *Template:
		p.statements(n.Body)
	case *Block:
		p.statements(n.Body)
	case *ElementNode:
		p.element(n)
	case *AttrNode:
		p.attr(n)
	case *TextNode:
		p.write(n.Chars)
	case *MustacheStatement:
		p.mustache(n)
	case *BlockStatement:
		p.block(n)
	case *ElementModifierStatement:
		p.write("{{")
		p.call(n.Path, n.Params, n.Hash)
		p.write("}}")
	case *CommentStatement:
		p.write("<!--" + n.Value + "-->")
	case *MustacheCommentStatement:
		p.write("{{!--" + n.Value + "--}}")
	case *ConcatStatement:
		p.write(`"`)
		for _, part := range n.Parts {
			p.node(part)
		}
		p.write(`"`)
	case *Hash:
		p.hash(n)
	case *HashPair:
		p.write(n.Key + "=")
		p.node(n.Value)
	case *SubExpression:
		p.write("(")
		p.call(n.Path, n.Params, n.Hash)
		p.write(")")
	case *PathExpression:
		p.write(n.Original())
	case *VarHead:
		p.write(n.Name)
	case *ThisHead:
		p.write("this")
	case *AtHead:
		p.write("@" + n.Name)
	case *StringLiteral:
		p.write(quote(n.Value))
	case *BooleanLiteral:
		p.write(strconv.FormatBool(n.Value))
	case *NumberLiteral:
		p.write(strconv.FormatFloat(n.Value, 'f', -1, 64))
	case *UndefinedLiteral:
		p.write("undefined")
	case *NullLiteral:
		p.write("null")
	}
}

func (p printer) statements(body []Statement) {
	for _, s := range body {
		p.node(s)
	}
}

func (p printer) mustache(n *MustacheStatement) {
	open, closing := "{{", "}}"
	if n.Trusting {
		open, closing = "{{{", "}}}"
	}
	p.write(open)
	p.call(n.Path, n.Params, n.Hash)
	p.write(closing)
}

func (p printer) call(path Expression, params []Expression, hash *Hash) {
	p.node(path)
	for _, param := range params {
		p.write(" ")
		p.node(param)
	}
	if hash.Len() > 0 {
		p.write(" ")
		p.hash(hash)
	}
}

func (p printer) hash(h *Hash) {
	for i, pair := range h.Pairs {
		if i > 0 {
			p.write(" ")
		}
		p.node(pair)
	}
}

func (p printer) blockParams(params []string) {
	if len(params) > 0 {
		p.write(" as |" + strings.Join(params, " ") + "|")
	}
}

func (p printer) block(n *BlockStatement) {
	p.write("{{#")
	p.blockOpen(n)
	p.write("}}")
	p.blockBody(n)
	p.write("{{/")
	p.node(n.Path)
	p.write("}}")
}

func (p printer) blockOpen(n *BlockStatement) {
	p.call(n.Path, n.Params, n.Hash)
	if n.Program != nil {
		p.blockParams(n.Program.BlockParams)
	}
}

// blockBody prints the program and the inverse, folding chained
// `{{else if}}` inverses into the parent block.
func (p printer) blockBody(n *BlockStatement) {
	if n.Program != nil {
		p.statements(n.Program.Body)
	}
	if n.Inverse == nil {
		return
	}
	if n.Inverse.Chained && len(n.Inverse.Body) == 1 {
		if chained, ok := n.Inverse.Body[0].(*BlockStatement); ok {
			p.write("{{else ")
			p.blockOpen(chained)
			p.write("}}")
			p.blockBody(chained)
			return
		}
	}
	p.write("{{else}}")
	p.statements(n.Inverse.Body)
}

func (p printer) element(n *ElementNode) {
	p.write("<" + n.Tag)
	for _, attr := range n.Attributes {
		p.write(" ")
		p.attr(attr)
	}
	for _, mod := range n.Modifiers {
		p.write(" ")
		p.node(mod)
	}
	for _, comment := range n.Comments {
		p.write(" ")
		p.node(comment)
	}
	p.blockParams(n.BlockParams)
	if n.SelfClosing {
		p.write(" />")
		return
	}
	p.write(">")
	if voidElements[n.Tag] {
		return
	}
	p.statements(n.Children)
	p.write("</" + n.Tag + ">")
}

func (p printer) attr(n *AttrNode) {
	p.write(n.Name)
	switch v := n.Value.(type) {
	case *TextNode:
		if v.Chars != "" {
			p.write(`="` + strings.ReplaceAll(v.Chars, `"`, "&quot;") + `"`)
		}
	case nil:
	default:
		p.write("=")
		p.node(v)
	}
}

// quote renders a string literal the way the host printer does, as a
// JSON string without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Squish trims s and collapses every run of whitespace into one space.
// Zero-width spaces are dropped. Used to keep debug log lines short.
func Squish(s string) string {
	s = strings.ReplaceAll(s, "\u200b", "")
	return strings.Join(strings.Fields(s), " ")
}
