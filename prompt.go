package transroute

import (
	"fmt"
	"strings"
)

const (
	fileSectionHeader = "\n\n--- Attached File Contents ---\n"
	textSectionHeader = "\n\nText to translate:\n"
)

// FullPrompt returns the prompt with the attached file texts appended as a
// labelled section, in attachment order.
func (r Request) FullPrompt() string {
	if len(r.Files) == 0 {
		return r.Prompt
	}
	var b strings.Builder
	b.WriteString(r.Prompt)
	b.WriteString(fileSectionHeader)
	for _, f := range r.Files {
		fmt.Fprintf(&b, "\n**%s:**\n%s\n", f.Name, f.Content)
	}
	return b.String()
}

// BuildTranslationPrompt wraps text in translation instructions. Without custom
// instructions the answer is pinned strictly to the target language.
func BuildTranslationPrompt(text, targetLang, customPrompt string) string {
	lang := GetLanguageName(targetLang)
	custom := strings.TrimSpace(customPrompt)

	var base string
	if custom != "" {
		base = fmt.Sprintf("Translate the following text to %[1]s.\n"+
			"Only return the translation, no explanations or additional text.\n"+
			"If the text is already in %[1]s, still provide a natural rephrasing.\n\n"+
			"Additional instructions from user: %[2]s", lang, custom)
	} else {
		base = fmt.Sprintf("Translate the following text to %[1]s.\n\n"+
			"IMPORTANT: Your response MUST be in %[1]s only.\n"+
			"- Return ONLY the translation, no explanations or additional text\n"+
			"- If text is already in %[1]s, return it as-is or rephrase naturally IN %[1]s\n"+
			"- NEVER output in any language other than %[1]s\n", lang)
	}

	return base + textSectionHeader + text
}
