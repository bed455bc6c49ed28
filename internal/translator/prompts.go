package translator

import (
	"strings"

	"ppt-translator/internal/types"
)

// Prompt templates per model family. Llama-style models behave best with
// their instruct chat template spelled out; everything else gets the short
// single-line instruction.

const llamaZhToEn = `<s>[INST] You are a professional translator. Follow these rules strictly:
1. Translate the Chinese text to English
2. Return ONLY the translation
3. No explanations or notes
4. No prefixes like 'Translation:'
5. Keep original punctuation style

Text to translate:
%TEXT%
[/INST]`

const llamaEnToZh = `<s>[INST] You are a professional translator. Follow these rules strictly:
1. Translate the English text to Chinese
2. Return ONLY the translation
3. No explanations or notes
4. No prefixes like '翻译:'
5. Keep original punctuation style

Text to translate:
%TEXT%
[/INST]`

const plainZhToEn = "Translate this Chinese text to English. Only return the translation:%TEXT%"
const plainEnToZh = "Translate this English text to Chinese. Only return the translation:%TEXT%"

// BuildPrompt renders the translation prompt for the given model and
// direction. Unknown models get the plain template.
func BuildPrompt(model, text string, from, to types.Lang) string {
	var tmpl string
	if isLlamaFamily(model) {
		if from == types.LangChinese && to == types.LangEnglish {
			tmpl = llamaZhToEn
		} else {
			tmpl = llamaEnToZh
		}
	} else {
		if from == types.LangChinese && to == types.LangEnglish {
			tmpl = plainZhToEn
		} else {
			tmpl = plainEnToZh
		}
	}
	return strings.ReplaceAll(tmpl, "%TEXT%", text)
}

// systemPrompt is the instruction used by the chat-style OpenAI backend,
// where the chat template is the server's job.
func systemPrompt(from, to types.Lang) string {
	if from == types.LangChinese && to == types.LangEnglish {
		return "You are a professional translator. Translate the user's Chinese text to English. " +
			"Return ONLY the translation, with no explanations, notes, or prefixes. Keep the original punctuation style."
	}
	return "You are a professional translator. Translate the user's English text to Chinese. " +
		"Return ONLY the translation, with no explanations, notes, or prefixes. Keep the original punctuation style."
}

func isLlamaFamily(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "llama")
}
