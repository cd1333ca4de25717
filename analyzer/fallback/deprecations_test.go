package fallback

import (
	"encoding/json"
	"testing"

	"github.com/abiiranathan/this-fallback/analyzer/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderFlush(t *testing.T) {
	r := NewRecorder("app/templates/index.hbs")
	r.Record("property")
	r.Record("property")
	r.Record("other")
	require.Equal(t, 3, r.Len(), "records are not deduplicated")

	tmpl := syntax.NewTemplate(syntax.NewText("x"))
	bound := 0
	flushed, err := r.Flush(tmpl, func() string {
		bound++
		return "deprecationsHelper"
	})
	require.NoError(t, err)
	assert.Len(t, flushed, 3)
	assert.Equal(t, 1, bound)
	assert.Equal(t, 0, r.Len())

	require.Len(t, tmpl.Body, 2)
	helper, ok := tmpl.Body[1].(*syntax.MustacheStatement)
	require.True(t, ok)
	assert.Equal(t, "deprecationsHelper", helper.Path.(*syntax.PathExpression).Original())
	require.Len(t, helper.Params, 1)

	payload := helper.Params[0].(*syntax.StringLiteral).Value
	var records []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(payload), &records))
	require.Len(t, records, 3)

	want := `["The ` + "`property`" + ` property path was used in the ` + "`app/templates/index.hbs`" +
		` template without using ` + "`this`" + `. This fallback behavior has been deprecated, ` +
		`all properties must be looked up on ` + "`this`" + ` when used in the template: {{this.property}}",` +
		`false,` +
		`{"id":"this-property-fallback","until":"n/a","for":"ember-this-fallback",` +
		`"url":"https://deprecations.emberjs.com/v3.x#toc_this-property-fallback","since":{"available":"0.2.0"}}]`
	assert.JSONEq(t, want, string(records[0]))
}

func TestRecorderFlushEmpty(t *testing.T) {
	r := NewRecorder("m")
	tmpl := syntax.NewTemplate(syntax.NewText("x"))
	flushed, err := r.Flush(tmpl, func() string {
		t.Fatal("helper must not be bound when nothing is flushed")
		return ""
	})
	require.NoError(t, err)
	assert.Empty(t, flushed)
	assert.Len(t, tmpl.Body, 1)
}

func TestDeprecationMarshalJSON(t *testing.T) {
	d := NewRecorder("m").deprecationFor("x")
	data, err := json.Marshal(d)
	require.NoError(t, err)

	var triple []any
	require.NoError(t, json.Unmarshal(data, &triple))
	require.Len(t, triple, 3)
	assert.Equal(t, d.Message, triple[0])
	assert.Equal(t, false, triple[1])
	assert.Equal(t, DeprecationID, triple[2].(map[string]any)["id"])
}
