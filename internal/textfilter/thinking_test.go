package textfilter

import (
	"strings"
	"testing"
)

func TestStripThinking(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		inside     bool
		want       string
		wantInside bool
	}{
		{"plain text untouched", "hello world", false, "hello world", false},
		{"single span removed", "a<think>reasoning</think>b", false, "ab", false},
		{"span at start", "<think>hmm</think>answer", false, "answer", false},
		{"unclosed span carries", "visible<think>partial", false, "visible", true},
		{"continuation still inside", "more reasoning", true, "", true},
		{"continuation closes", "done</think>reply", true, "reply", false},
		{"two spans one fragment", "<think>a</think>x<think>b</think>y", false, "xy", false},
		{"empty input", "", true, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, inside := StripThinking(tt.input, tt.inside)
			if got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			if inside != tt.wantInside {
				t.Errorf("inside = %v, want %v", inside, tt.wantInside)
			}
		})
	}
}

func TestStripThinkingAcrossFragments(t *testing.T) {
	// Simulates a stream where the tag is split across fragment
	// boundaries at the span edges.
	fragments := []string{"Hi! ", "<think>let me", " reason about this", "</think>", "The answer is 4."}

	var out strings.Builder
	inside := false
	for _, f := range fragments {
		var clean string
		clean, inside = StripThinking(f, inside)
		out.WriteString(clean)
	}

	if got := out.String(); got != "Hi! The answer is 4." {
		t.Fatalf("got %q", got)
	}
	if inside {
		t.Fatal("expected stream to end outside a thinking span")
	}
}

func TestStripThinkingAll(t *testing.T) {
	got := StripThinkingAll("<think>internal monologue</think>\n\nFinal reply.")
	if got != "Final reply." {
		t.Fatalf("got %q", got)
	}
}
