package generation

import (
	"regexp"
	"strings"
)

var (
	// One pattern per tag: RE2 has no backreferences, and a shared
	// alternation would pair <system> with </reference_material>.
	leakedBlockPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<reference_material>.*?</reference_material>`),
		regexp.MustCompile(`(?is)<instructions>.*?</instructions>`),
		regexp.MustCompile(`(?is)<system>.*?</system>`),
	}
	leakedTagPattern  = regexp.MustCompile(`(?i)</?(reference_material|instructions|system|guidelines|task|user_question|customer_message)>`)
	rolePrefixPattern = regexp.MustCompile(`(?i)^\s*(assistant|aura|agent|support agent)\s*:\s*`)
)

// Sanitize strips prompt scaffolding the model echoed back. An empty result
// means the reply carried no usable text.
func Sanitize(raw string) string {
	text := raw
	for _, p := range leakedBlockPatterns {
		text = p.ReplaceAllString(text, "")
	}
	text = leakedTagPattern.ReplaceAllString(text, "")
	text = rolePrefixPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
