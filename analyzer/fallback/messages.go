package fallback

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const fallbackDetails = "See https://github.com/tildeio/ember-this-fallback#embroider-compatibility for more details."

// statementFallbackWarning explains the runtime branch emitted for {{head}}.
func statementFallbackWarning(head string) []string {
	same := func(s string) string { return s }
	return []string{
		"Found ambiguous mustache statement: `{{" + head + "}}`.",
		"Falling back to runtime dynamic resolution. You can avoid this fallback by:",
		"- " + explicitHelperSuggestion(head, same),
		"- explicitly invoking a known component with angle-brackets: `<" + classify(head) + " />`",
		"- " + thisPropertySuggestion(head, same),
		fallbackDetails,
	}
}

// attrFallbackWarning explains the lookup emitted for attr={{head}}.
func attrFallbackWarning(attr, head string) []string {
	wrap := func(s string) string { return attr + "=" + s }
	return []string{
		"Found ambiguous mustache statement as attribute node value: `" + wrap("{{"+head+"}}") + "`.",
		"Falling back to runtime dynamic resolution. You can avoid this fallback by:",
		"- " + explicitHelperSuggestion(head, wrap),
		"- " + thisPropertySuggestion(head, wrap),
		fallbackDetails,
	}
}

func explicitHelperSuggestion(head string, wrap func(string) string) string {
	return "explicitly invoking a known helper with parens: `" + wrap("{{("+head+")}}") + "`"
}

func thisPropertySuggestion(head string, wrap func(string) string) string {
	return "prefacing a known property on `this` with `this`: `" + wrap("{{this."+head+"}}") + "`"
}

// classify turns a template name into its angle-bracket invocation:
// "nested/my-widget" becomes "Nested::MyWidget".
func classify(name string) string {
	title := cases.Title(language.Und, cases.NoLower)
	segments := strings.Split(name, "/")
	for i, segment := range segments {
		var sb strings.Builder
		for _, word := range words(segment) {
			sb.WriteString(title.String(word))
		}
		segments[i] = sb.String()
	}
	return strings.Join(segments, "::")
}

// words splits s at separators and at lower-to-upper case changes.
func words(s string) []string {
	var out []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			out = append(out, string(current))
			current = current[:0]
		}
	}
	var prev rune
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
		prev = r
	}
	flush()
	return out
}
