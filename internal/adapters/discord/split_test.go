package discord

import (
	"strings"
	"testing"
)

func TestSplitMessageRespectsLimit(t *testing.T) {
	var builder strings.Builder
	builder.WriteString(strings.Repeat("a", 1500))
	builder.WriteString("\n\n")
	builder.WriteString(strings.Repeat("b", 1000))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("c", 300))

	parts := SplitMessage(builder.String(), messageLimit)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}

	for i, part := range parts {
		if length := len([]rune(part)); length > messageLimit {
			t.Fatalf("part %d exceeds limit: %d", i, length)
		}
	}

	if parts[0] != strings.Repeat("a", 1500) {
		t.Fatalf("unexpected content in first part")
	}

	if parts[1][0] != 'b' {
		t.Fatalf("unexpected prefix for second part: %q", parts[1][0])
	}

	if !strings.HasSuffix(parts[1], strings.Repeat("c", 300)) {
		t.Fatalf("second part should contain trailing block of 'c'")
	}
}

func TestSplitMessageShortText(t *testing.T) {
	text := "hello world"
	parts := SplitMessage(text, messageLimit)
	if len(parts) != 1 {
		t.Fatalf("expected single part, got %d", len(parts))
	}
	if parts[0] != text {
		t.Fatalf("unexpected text: %q", parts[0])
	}
}

func TestSplitMessageEmpty(t *testing.T) {
	parts := SplitMessage("   \n  ", messageLimit)
	if len(parts) != 0 {
		t.Fatalf("expected no parts for empty input, got %d", len(parts))
	}
}

func TestSplitForDiscordKeepsCodeFencesBalanced(t *testing.T) {
	var builder strings.Builder
	builder.WriteString("# Average Scores (last 200 messages)\n```\n")
	for i := 0; i < 120; i++ {
		builder.WriteString("| someone with a long name | 5.000 | 1.000 | 3           |\n")
	}
	builder.WriteString("```\n")

	parts := SplitForDiscord(builder.String())
	if len(parts) < 2 {
		t.Fatalf("expected report to be split, got %d parts", len(parts))
	}
	for i, part := range parts {
		if length := len([]rune(part)); length > messageLimit {
			t.Fatalf("part %d exceeds discord limit: %d", i, length)
		}
		if strings.Count(part, codeFence)%2 != 0 {
			t.Fatalf("part %d has unbalanced code fences:\n%s", i, part)
		}
	}
	if !strings.HasPrefix(parts[1], codeFence+"\n") {
		t.Fatalf("continuation should reopen the code block, got %q", parts[1][:10])
	}
}

func TestSplitForDiscordShortText(t *testing.T) {
	parts := SplitForDiscord("Failed to get new messages.")
	if len(parts) != 1 || parts[0] != "Failed to get new messages." {
		t.Fatalf("unexpected parts: %#v", parts)
	}
}
