package subtitle

import "strings"

// substitutions is applied to narration before it reaches the renderer.
// Every entry maps to a non-empty replacement, so no character is ever
// dropped. Escaping of what remains happens in EscapeOption.
var substitutions = []struct {
	from, to string
}{
	{"'", "’"},  // apostrophe -> right single quote
	{"\"", "”"}, // double quote -> right double quote
	{"`", "‘"},  // backtick -> left single quote
	{"—", "-"},  // em dash
	{"–", "-"},  // en dash
	{"…", "..."},
	{"\t", " "},
	{"\r", " "},
}

var sanitizer = func() *strings.Replacer {
	pairs := make([]string, 0, len(substitutions)*2)
	for _, s := range substitutions {
		pairs = append(pairs, s.from, s.to)
	}
	return strings.NewReplacer(pairs...)
}()

// Sanitize replaces characters that render poorly or collide with filter
// quoting.
func Sanitize(text string) string {
	return sanitizer.Replace(text)
}

var optionEscaper = strings.NewReplacer(
	`\`, `\\`,
	`:`, `\:`,
	`'`, `\'`,
)

// EscapeOption escapes a filter option value for libavfilter's option
// parser. ffmpeg-go only applies the filtergraph level (`\ ' [ ] , ;`),
// so values that may contain ':' or '\' must pass through here first.
func EscapeOption(v string) string {
	return optionEscaper.Replace(v)
}
