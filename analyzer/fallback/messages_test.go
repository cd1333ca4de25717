package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := map[string]string{
		"property":         "Property",
		"my-widget":        "MyWidget",
		"my_widget":        "MyWidget",
		"myWidget":         "MyWidget",
		"nested/my-widget": "Nested::MyWidget",
		"a/b/c-d":          "A::B::CD",
		"HTMLParser":       "HTMLParser",
		"innerHTML":        "InnerHTML",
		"x-HTML-widget":    "XHTMLWidget",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, classify(in))
		})
	}
}

func TestStatementFallbackWarning(t *testing.T) {
	assert.Equal(t, []string{
		"Found ambiguous mustache statement: `{{my-thing}}`.",
		"Falling back to runtime dynamic resolution. You can avoid this fallback by:",
		"- explicitly invoking a known helper with parens: `{{(my-thing)}}`",
		"- explicitly invoking a known component with angle-brackets: `<MyThing />`",
		"- prefacing a known property on `this` with `this`: `{{this.my-thing}}`",
		"See https://github.com/tildeio/ember-this-fallback#embroider-compatibility for more details.",
	}, statementFallbackWarning("my-thing"))
}

func TestAttrFallbackWarning(t *testing.T) {
	assert.Equal(t, []string{
		"Found ambiguous mustache statement as attribute node value: `id={{property}}`.",
		"Falling back to runtime dynamic resolution. You can avoid this fallback by:",
		"- explicitly invoking a known helper with parens: `id={{(property)}}`",
		"- prefacing a known property on `this` with `this`: `id={{this.property}}`",
		"See https://github.com/tildeio/ember-this-fallback#embroider-compatibility for more details.",
	}, attrFallbackWarning("id", "property"))
}
