package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalRoundTrip(t *testing.T) {
	tmpl := NewTemplate(
		NewText("Hello "),
		mustache("user.name"),
		&MustacheStatement{Path: NewPath("html"), Hash: &Hash{}, Trusting: true},
		NewBlockStatement(NewPath("each"), []Expression{NewPath("@items")}, nil,
			NewBlock([]Statement{
				NewElement("li", []*AttrNode{
					NewAttr("class", NewConcat(NewText("item "), mustache("item.kind"))),
					NewAttr("data-n", NewText("1")),
				}, []Statement{mustache("item")}),
			}, "item", "index"),
			NewBlock([]Statement{NewMustacheComment(" empty ")}),
		),
		NewMustache(NewPath("helper"),
			[]Expression{NewString("s"), NewNumber(2), NewBoolean(false), NewNull(), NewUndefined(), NewPath("this")},
			NewHash(NewPair("k", NewSexpr(NewPath("concat"), []Expression{NewString("a")}, nil)))),
		NewComment(" c "),
	)
	tmpl.Loc = SourceSpan{Module: "app/templates/index.hbs", Start: Position{Line: 1}, End: Position{Line: 4, Column: 2}}

	data, err := MarshalTemplate(tmpl)
	require.NoError(t, err)

	got, err := UnmarshalTemplate(data)
	require.NoError(t, err)

	if diff := cmp.Diff(tmpl, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Print(tmpl), Print(got))
}

func TestUnmarshalHostShapes(t *testing.T) {
	// Older hosts send paths as `original` only, locations with `source`,
	// and `escaped` instead of `trusting`.
	data := []byte(`{
		"type": "Template",
		"loc": {"source": "app/templates/legacy.hbs", "start": {"line": 1, "column": 0}, "end": {"line": 1, "column": 30}},
		"body": [
			{"type": "MustacheStatement", "path": {"type": "PathExpression", "original": "property.tail"}, "params": [], "hash": {"type": "Hash", "pairs": []}, "escaped": false},
			{"type": "MustacheStatement", "path": {"type": "PathExpression", "original": "@arg"}, "params": [], "hash": null},
			{"type": "MustacheStatement", "path": {"type": "PathExpression", "head": {"type": "AtHead", "name": "@named"}, "tail": ["x"]}}
		],
		"blockParams": []
	}`)

	tmpl, err := UnmarshalTemplate(data)
	require.NoError(t, err)
	require.Len(t, tmpl.Body, 3)

	assert.Equal(t, "app/templates/legacy.hbs", tmpl.Loc.Module)

	first := tmpl.Body[0].(*MustacheStatement)
	assert.True(t, first.Trusting)
	assert.Equal(t, &VarHead{Name: "property"}, first.Path.(*PathExpression).Head)
	assert.Equal(t, []string{"tail"}, first.Path.(*PathExpression).Tail)

	second := tmpl.Body[1].(*MustacheStatement)
	assert.False(t, second.Trusting)
	assert.Equal(t, 0, second.Hash.Len())

	assert.Equal(t, "{{{property.tail}}}{{@arg}}{{@named.x}}", Print(tmpl))
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "not json",
			data: `{`,
			want: "decode node",
		},
		{
			name: "unknown node type",
			data: `{"type": "Template", "body": [{"type": "Frobnicate"}]}`,
			want: `unknown node type "Frobnicate"`,
		},
		{
			name: "root is not a template",
			data: `{"type": "TextNode", "chars": "x"}`,
			want: "expected a Template root, got TextNode",
		},
		{
			name: "text as call argument",
			data: `{"type": "Template", "body": [{"type": "MustacheStatement",
				"path": {"type": "PathExpression", "original": "h"},
				"params": [{"type": "TextNode", "chars": "x"}]}]}`,
			want: "TextNode is not an expression",
		},
		{
			name: "expression as statement",
			data: `{"type": "Template", "body": [{"type": "StringLiteral", "value": "x"}]}`,
			want: "StringLiteral is not a statement",
		},
		{
			name: "path without head or original",
			data: `{"type": "Template", "body": [{"type": "MustacheStatement", "path": {"type": "PathExpression"}}]}`,
			want: "neither head nor original",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalTemplate([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
