package syntax

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalTemplate encodes a template in the host AST JSON format, where
// every node is an object tagged with a "type" field.
func MarshalTemplate(t *Template) ([]byte, error) {
	return json.Marshal(encode(t))
}

// UnmarshalTemplate decodes a host AST JSON document whose root is a Template.
//
// Unknown node types and nodes in positions they cannot occupy (e.g. a
// TextNode used as a call argument) are reported as errors rather than
// skipped, so a malformed tree never reaches the pass.
func UnmarshalTemplate(data []byte) (*Template, error) {
	d := &decoder{}
	node := d.node(data)
	if d.err != nil {
		return nil, d.err
	}
	t, ok := node.(*Template)
	if !ok {
		return nil, fmt.Errorf("expected a Template root, got %s", typeOf(node))
	}
	return t, nil
}

// ── Encoding ─────────────────────────────────────────────────────────────

type object map[string]any

func encode(node Node) any {
	if isNil(node) {
		return nil
	}
	obj := object{"type": node.NodeType()}
	if loc := node.Location(); !loc.IsZero() {
		obj["loc"] = loc
	}
	switch n := node.(type) {
	case *Template:
		obj["body"] = encodeStatements(n.Body)
		obj["blockParams"] = nonNil(n.BlockParams)
	case *Block:
		obj["body"] = encodeStatements(n.Body)
		obj["blockParams"] = nonNil(n.BlockParams)
		obj["chained"] = n.Chained
	case *ElementNode:
		attrs := make([]any, len(n.Attributes))
		for i, a := range n.Attributes {
			attrs[i] = encode(a)
		}
		mods := make([]any, len(n.Modifiers))
		for i, m := range n.Modifiers {
			mods[i] = encode(m)
		}
		comments := make([]any, len(n.Comments))
		for i, c := range n.Comments {
			comments[i] = encode(c)
		}
		obj["tag"] = n.Tag
		obj["selfClosing"] = n.SelfClosing
		obj["attributes"] = attrs
		obj["blockParams"] = nonNil(n.BlockParams)
		obj["modifiers"] = mods
		obj["comments"] = comments
		obj["children"] = encodeStatements(n.Children)
	case *AttrNode:
		obj["name"] = n.Name
		obj["value"] = encode(n.Value)
	case *ConcatStatement:
		parts := make([]any, len(n.Parts))
		for i, p := range n.Parts {
			parts[i] = encode(p)
		}
		obj["parts"] = parts
	case *Hash:
		pairs := make([]any, len(n.Pairs))
		for i, p := range n.Pairs {
			pairs[i] = encode(p)
		}
		obj["pairs"] = pairs
	case *HashPair:
		obj["key"] = n.Key
		obj["value"] = encode(n.Value)
	case *TextNode:
		obj["chars"] = n.Chars
	case *MustacheStatement:
		encodeCall(obj, n.Path, n.Params, n.Hash)
		obj["trusting"] = n.Trusting
		obj["escaped"] = !n.Trusting
	case *BlockStatement:
		encodeCall(obj, n.Path, n.Params, n.Hash)
		obj["program"] = encode(n.Program)
		obj["inverse"] = encode(n.Inverse)
	case *ElementModifierStatement:
		encodeCall(obj, n.Path, n.Params, n.Hash)
	case *SubExpression:
		encodeCall(obj, n.Path, n.Params, n.Hash)
	case *CommentStatement:
		obj["value"] = n.Value
	case *MustacheCommentStatement:
		obj["value"] = n.Value
	case *PathExpression:
		obj["original"] = n.Original()
		obj["head"] = encode(n.Head)
		obj["tail"] = nonNil(n.Tail)
	case *VarHead:
		obj["name"] = n.Name
	case *AtHead:
		obj["name"] = "@" + n.Name
	case *StringLiteral:
		obj["value"] = n.Value
		obj["original"] = n.Value
	case *BooleanLiteral:
		obj["value"] = n.Value
	case *NumberLiteral:
		obj["value"] = n.Value
	case *UndefinedLiteral, *NullLiteral:
		obj["value"] = nil
	}
	return obj
}

func encodeCall(obj object, path Expression, params []Expression, hash *Hash) {
	ps := make([]any, len(params))
	for i, p := range params {
		ps[i] = encode(p)
	}
	obj["path"] = encode(path)
	obj["params"] = ps
	obj["hash"] = encode(orEmpty(hash))
}

func encodeStatements(body []Statement) []any {
	out := make([]any, len(body))
	for i, s := range body {
		out[i] = encode(s)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// isNil catches typed nil pointers stored in a Node interface.
func isNil(node Node) bool {
	if node == nil {
		return true
	}
	switch n := node.(type) {
	case *Block:
		return n == nil
	case *Hash:
		return n == nil
	}
	return false
}

// ── Decoding ─────────────────────────────────────────────────────────────

// decoder keeps the first error so the per-type code can stay linear.
type decoder struct {
	err error
}

type rawLoc struct {
	Module string   `json:"module"`
	Source string   `json:"source"`
	Start  Position `json:"start"`
	End    Position `json:"end"`
}

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf(format, args...)
	}
}

func (d *decoder) object(data []byte) map[string]json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		d.fail("decode node: %w", err)
		return nil
	}
	return obj
}

func (d *decoder) value(obj map[string]json.RawMessage, key string, dst any) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		d.fail("decode %q: %w", key, err)
	}
}

func (d *decoder) node(data []byte) Node {
	if d.err != nil || isNull(data) {
		return nil
	}
	obj := d.object(data)
	if obj == nil {
		return nil
	}
	var typ string
	d.value(obj, "type", &typ)
	var rl rawLoc
	d.value(obj, "loc", &rl)
	if rl.Module == "" {
		rl.Module = rl.Source
	}
	base := Base{Loc: SourceSpan{Module: rl.Module, Start: rl.Start, End: rl.End}}

	switch typ {
	case "Template":
		t := &Template{Base: base, Body: d.statements(obj["body"])}
		d.value(obj, "blockParams", &t.BlockParams)
		return t
	case "Block":
		return d.block(data)
	case "ElementNode":
		n := &ElementNode{Base: base}
		d.value(obj, "tag", &n.Tag)
		d.value(obj, "selfClosing", &n.SelfClosing)
		d.value(obj, "blockParams", &n.BlockParams)
		for _, raw := range d.list(obj["attributes"]) {
			if attr, ok := d.node(raw).(*AttrNode); ok {
				n.Attributes = append(n.Attributes, attr)
			} else {
				d.fail("element <%s>: attribute is not an AttrNode", n.Tag)
			}
		}
		for _, raw := range d.list(obj["modifiers"]) {
			if mod, ok := d.node(raw).(*ElementModifierStatement); ok {
				n.Modifiers = append(n.Modifiers, mod)
			} else {
				d.fail("element <%s>: modifier is not an ElementModifierStatement", n.Tag)
			}
		}
		for _, raw := range d.list(obj["comments"]) {
			if c, ok := d.node(raw).(*MustacheCommentStatement); ok {
				n.Comments = append(n.Comments, c)
			} else {
				d.fail("element <%s>: comment is not a MustacheCommentStatement", n.Tag)
			}
		}
		n.Children = d.statements(obj["children"])
		return n
	case "AttrNode":
		n := &AttrNode{Base: base}
		d.value(obj, "name", &n.Name)
		switch v := d.node(obj["value"]).(type) {
		case AttrValue:
			n.Value = v
		default:
			d.fail("attribute %q: invalid value %s", n.Name, typeOf(v))
		}
		return n
	case "ConcatStatement":
		n := &ConcatStatement{Base: base}
		for _, raw := range d.list(obj["parts"]) {
			if part, ok := d.node(raw).(ConcatPart); ok {
				n.Parts = append(n.Parts, part)
			} else {
				d.fail("concat: part is not a TextNode or MustacheStatement")
			}
		}
		return n
	case "Hash":
		return d.hash(data)
	case "HashPair":
		n := &HashPair{Base: base}
		d.value(obj, "key", &n.Key)
		n.Value = d.expression(obj["value"])
		return n
	case "TextNode":
		n := &TextNode{Base: base}
		d.value(obj, "chars", &n.Chars)
		return n
	case "MustacheStatement":
		n := &MustacheStatement{Base: base}
		n.Path, n.Params, n.Hash = d.call(obj)
		d.value(obj, "trusting", &n.Trusting)
		if _, ok := obj["trusting"]; !ok {
			escaped := true
			d.value(obj, "escaped", &escaped)
			n.Trusting = !escaped
		}
		return n
	case "BlockStatement":
		n := &BlockStatement{Base: base}
		n.Path, n.Params, n.Hash = d.call(obj)
		n.Program = d.block(obj["program"])
		n.Inverse = d.block(obj["inverse"])
		if n.Program == nil {
			n.Program = &Block{}
		}
		return n
	case "ElementModifierStatement":
		n := &ElementModifierStatement{Base: base}
		n.Path, n.Params, n.Hash = d.call(obj)
		return n
	case "SubExpression":
		n := &SubExpression{Base: base}
		n.Path, n.Params, n.Hash = d.call(obj)
		return n
	case "CommentStatement":
		n := &CommentStatement{Base: base}
		d.value(obj, "value", &n.Value)
		return n
	case "MustacheCommentStatement":
		n := &MustacheCommentStatement{Base: base}
		d.value(obj, "value", &n.Value)
		return n
	case "PathExpression":
		return d.path(obj, base)
	case "VarHead":
		n := &VarHead{Base: base}
		d.value(obj, "name", &n.Name)
		return n
	case "ThisHead":
		return &ThisHead{Base: base}
	case "AtHead":
		n := &AtHead{Base: base}
		d.value(obj, "name", &n.Name)
		if len(n.Name) > 0 && n.Name[0] == '@' {
			n.Name = n.Name[1:]
		}
		return n
	case "StringLiteral":
		n := &StringLiteral{Base: base}
		d.value(obj, "value", &n.Value)
		return n
	case "BooleanLiteral":
		n := &BooleanLiteral{Base: base}
		d.value(obj, "value", &n.Value)
		return n
	case "NumberLiteral":
		n := &NumberLiteral{Base: base}
		d.value(obj, "value", &n.Value)
		return n
	case "UndefinedLiteral":
		return &UndefinedLiteral{Base: base}
	case "NullLiteral":
		return &NullLiteral{Base: base}
	}
	d.fail("unknown node type %q", typ)
	return nil
}

func (d *decoder) path(obj map[string]json.RawMessage, base Base) *PathExpression {
	if raw, ok := obj["head"]; ok && !isNull(raw) {
		n := &PathExpression{Base: base}
		head, ok := d.node(raw).(PathHead)
		if !ok {
			d.fail("path: head is not a VarHead, ThisHead or AtHead")
			return n
		}
		n.Head = head
		d.value(obj, "tail", &n.Tail)
		return n
	}
	// Older hosts only send the written form.
	var original string
	d.value(obj, "original", &original)
	if original == "" {
		d.fail("path: neither head nor original present")
		return &PathExpression{Base: base}
	}
	n := NewPath(original)
	n.Base = base
	return n
}

func (d *decoder) block(data []byte) *Block {
	if d.err != nil || isNull(data) {
		return nil
	}
	obj := d.object(data)
	if obj == nil {
		return nil
	}
	var typ string
	d.value(obj, "type", &typ)
	if typ != "Block" && typ != "Template" {
		d.fail("expected Block, got %q", typ)
		return nil
	}
	var rl rawLoc
	d.value(obj, "loc", &rl)
	b := &Block{Base: Base{Loc: SourceSpan{Module: rl.Module, Start: rl.Start, End: rl.End}}}
	b.Body = d.statements(obj["body"])
	d.value(obj, "blockParams", &b.BlockParams)
	d.value(obj, "chained", &b.Chained)
	return b
}

func (d *decoder) hash(data []byte) *Hash {
	h := &Hash{}
	if d.err != nil || isNull(data) {
		return h
	}
	obj := d.object(data)
	for _, raw := range d.list(obj["pairs"]) {
		if pair, ok := d.node(raw).(*HashPair); ok {
			h.Pairs = append(h.Pairs, pair)
		} else {
			d.fail("hash: pair is not a HashPair")
		}
	}
	return h
}

func (d *decoder) call(obj map[string]json.RawMessage) (Expression, []Expression, *Hash) {
	path := d.expression(obj["path"])
	var params []Expression
	for _, raw := range d.list(obj["params"]) {
		params = append(params, d.expression(raw))
	}
	return path, params, d.hash(obj["hash"])
}

func (d *decoder) expression(data []byte) Expression {
	node := d.node(data)
	if node == nil {
		d.fail("missing expression")
		return nil
	}
	expr, ok := node.(Expression)
	if !ok {
		d.fail("%s is not an expression", node.NodeType())
	}
	return expr
}

func (d *decoder) statements(data []byte) []Statement {
	var out []Statement
	for _, raw := range d.list(data) {
		node := d.node(raw)
		stmt, ok := node.(Statement)
		if !ok {
			d.fail("%s is not a statement", typeOf(node))
			continue
		}
		out = append(out, stmt)
	}
	return out
}

func (d *decoder) list(data []byte) []json.RawMessage {
	if d.err != nil || isNull(data) {
		return nil
	}
	var out []json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		d.fail("decode list: %w", err)
	}
	return out
}

func isNull(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func typeOf(node Node) string {
	if node == nil {
		return "nothing"
	}
	return node.NodeType()
}
