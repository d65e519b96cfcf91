package transroute

import (
	"strings"
	"testing"
)

func TestRequestFullPrompt(t *testing.T) {
	req := Request{
		Prompt: "Summarize",
		Files: []FileText{
			{Name: "a.txt", Content: "alpha"},
			{Name: "b.md", Content: "beta"},
		},
	}

	expected := "Summarize\n\n--- Attached File Contents ---\n\n**a.txt:**\nalpha\n\n**b.md:**\nbeta\n"
	if got := req.FullPrompt(); got != expected {
		t.Errorf("FullPrompt() = %q, want %q", got, expected)
	}

	if got := (Request{Prompt: "plain"}).FullPrompt(); got != "plain" {
		t.Errorf("FullPrompt() without files = %q", got)
	}
}

func TestBuildTranslationPrompt(t *testing.T) {
	strict := BuildTranslationPrompt("Hello", "vi", "")
	if !strings.HasPrefix(strict, "Translate the following text to Vietnamese.") {
		t.Errorf("unexpected prompt start: %q", strict)
	}
	if !strings.Contains(strict, "MUST be in Vietnamese only") {
		t.Error("strict prompt should pin the target language")
	}
	if !strings.HasSuffix(strict, "\n\nText to translate:\nHello") {
		t.Errorf("prompt should end with the text section: %q", strict)
	}

	custom := BuildTranslationPrompt("Hello", "French", "  keep it formal ")
	if !strings.Contains(custom, "Additional instructions from user: keep it formal") {
		t.Errorf("custom instructions missing: %q", custom)
	}
	if strings.Contains(custom, "MUST be in") {
		t.Error("custom prompt should not use the strict template")
	}
}
