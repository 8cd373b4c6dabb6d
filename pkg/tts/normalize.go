package tts

import (
	"regexp"
	"strings"
)

// directivePattern matches inline emotion/pause directives such as
// "(excited)" or "(long pause)". Directives are short lowercase
// parentheticals; anything longer is treated as real prose.
var directivePattern = regexp.MustCompile(`\(\s*[a-z]+(?: [a-z]+)?\s*\)`)

// StripDirectives removes inline emotion/pause directives from text.
// Visible chat text is always stripped; synthesis payloads are stripped
// only for providers that do not understand directives.
func StripDirectives(text string) string {
	stripped := directivePattern.ReplaceAllString(text, "")
	stripped = strings.Join(strings.Fields(stripped), " ")
	return strings.TrimSpace(stripped)
}

// normalizeFor prepares the synthesis payload for a provider.
func normalizeFor(text string, supportsDirectives bool) string {
	if supportsDirectives {
		return text
	}
	return StripDirectives(text)
}
