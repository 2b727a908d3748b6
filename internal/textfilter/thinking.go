// Package textfilter strips model "thinking" markup from generated
// text before it reaches the caller. The filter is a pure function over
// (text, carry state) so that one stream's open tag can never bleed
// into another conversation's output.
package textfilter

import "strings"

const (
	openTag  = "<think>"
	closeTag = "</think>"
)

// StripThinking removes <think>...</think> spans from text. inside
// reports whether the previous fragment ended inside an unclosed span;
// the returned bool carries that state to the next fragment. Callers
// must start every turn or stream with inside=false.
func StripThinking(text string, inside bool) (string, bool) {
	if text == "" {
		return "", inside
	}

	var out strings.Builder
	for len(text) > 0 {
		if inside {
			end := strings.Index(text, closeTag)
			if end < 0 {
				return out.String(), true
			}
			text = text[end+len(closeTag):]
			inside = false
			continue
		}

		start := strings.Index(text, openTag)
		if start < 0 {
			out.WriteString(text)
			break
		}
		out.WriteString(text[:start])
		text = text[start+len(openTag):]
		inside = true
	}
	return out.String(), inside
}

// StripThinkingAll filters a complete (non-streamed) reply and trims
// the leftover whitespace the removed span leaves behind.
func StripThinkingAll(text string) string {
	clean, _ := StripThinking(text, false)
	return strings.TrimSpace(clean)
}
