package translator

import (
	"strings"
	"unicode"

	"ppt-translator/internal/types"
)

// Chat-template markers some models echo back into the completion.
var chatMarkers = []string{"<s>", "</s>", "[INST]", "[/INST]", "Assistant:", "Human:"}

// Prefixes models like to put in front of the translation.
var translationPrefixes = []string{
	"translation:", "here's the translation:", "here is the translation:",
	"translated text:", "english:", "chinese:",
	"翻译:", "翻译：", "译文:", "译文：", "中文翻译:", "英文翻译:",
}

// Clean strips model chatter from a raw completion: chat-template markers,
// "Translation:" style prefixes, wrapping quotes, and redundant whitespace.
// For en→zh a completion without a single Han character is treated as noise
// and dropped, so the caller keeps the original text instead.
func Clean(text, model string, from, to types.Lang) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}

	if isLlamaFamily(model) {
		for _, m := range chatMarkers {
			text = strings.ReplaceAll(text, m, "")
		}
		text = strings.TrimSpace(text)
	}

	// Strip translation prefixes, possibly stacked
	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(text)
		for _, prefix := range translationPrefixes {
			if strings.HasPrefix(lower, prefix) {
				text = strings.TrimSpace(text[len(prefix):])
				changed = true
				break
			}
		}
	}

	// Unwrap a fully quoted answer
	for _, pair := range [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}, {"「", "」"}} {
		if strings.HasPrefix(text, pair[0]) && strings.HasSuffix(text, pair[1]) && len(text) > len(pair[0])+len(pair[1]) {
			text = strings.TrimSpace(text[len(pair[0]) : len(text)-len(pair[1])])
		}
	}

	// Collapse internal whitespace runs; runs never carry newlines
	text = strings.Join(strings.Fields(text), " ")

	if to == types.LangChinese && !containsHan(text) {
		// The model answered in the wrong language or with chatter only
		return ""
	}

	return text
}

// Translatable reports whether text carries content worth sending to the
// model: at least one letter of the source script. Pure numbers, punctuation
// and whitespace pass through untranslated.
func Translatable(text string, from types.Lang) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if from == types.LangChinese {
		return containsHan(text)
	}
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
