package translator

import (
	"strings"
	"testing"

	"ppt-translator/internal/types"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		model    string
		from, to types.Lang
		expected string
	}{
		{
			name: "plain result untouched",
			text: "Hello World", model: "qwen:7b",
			from: types.LangChinese, to: types.LangEnglish,
			expected: "Hello World",
		},
		{
			name: "surrounding whitespace trimmed",
			text: "  Hello World \n", model: "qwen:7b",
			from: types.LangChinese, to: types.LangEnglish,
			expected: "Hello World",
		},
		{
			name: "llama chat markers stripped",
			text: "<s>[INST] Hello World [/INST]</s>", model: "llama3",
			from: types.LangChinese, to: types.LangEnglish,
			expected: "Hello World",
		},
		{
			name: "translation prefix stripped",
			text: "Translation: Hello World", model: "qwen:7b",
			from: types.LangChinese, to: types.LangEnglish,
			expected: "Hello World",
		},
		{
			name: "stacked prefixes stripped",
			text: "Translation: English: Hello World", model: "qwen:7b",
			from: types.LangChinese, to: types.LangEnglish,
			expected: "Hello World",
		},
		{
			name: "chinese prefix stripped",
			text: "译文：你好世界", model: "qwen:7b",
			from: types.LangEnglish, to: types.LangChinese,
			expected: "你好世界",
		},
		{
			name: "wrapping quotes removed",
			text: `"Hello World"`, model: "qwen:7b",
			from: types.LangChinese, to: types.LangEnglish,
			expected: "Hello World",
		},
		{
			name: "chinese quotes removed",
			text: "「你好世界」", model: "qwen:7b",
			from: types.LangEnglish, to: types.LangChinese,
			expected: "你好世界",
		},
		{
			name: "internal whitespace collapsed",
			text: "Hello   \n  World", model: "qwen:7b",
			from: types.LangChinese, to: types.LangEnglish,
			expected: "Hello World",
		},
		{
			name: "english answer for zh target dropped",
			text: "I cannot translate that.", model: "qwen:7b",
			from: types.LangEnglish, to: types.LangChinese,
			expected: "",
		},
		{
			name: "empty input stays empty",
			text: "", model: "qwen:7b",
			from: types.LangChinese, to: types.LangEnglish,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.text, tt.model, tt.from, tt.to)
			if got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestTranslatable(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		from     types.Lang
		expected bool
	}{
		{name: "chinese text from zh", text: "你好世界", from: types.LangChinese, expected: true},
		{name: "english text from zh skipped", text: "Hello", from: types.LangChinese, expected: false},
		{name: "english text from en", text: "Hello World", from: types.LangEnglish, expected: true},
		{name: "numbers only skipped", text: "2024", from: types.LangEnglish, expected: false},
		{name: "punctuation only skipped", text: "---", from: types.LangEnglish, expected: false},
		{name: "whitespace skipped", text: "   ", from: types.LangChinese, expected: false},
		{name: "empty skipped", text: "", from: types.LangEnglish, expected: false},
		{name: "mixed zh and digits from zh", text: "第1章", from: types.LangChinese, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Translatable(tt.text, tt.from); got != tt.expected {
				t.Errorf("Translatable(%q, %s) = %v, want %v", tt.text, tt.from, got, tt.expected)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("llama3", "你好", types.LangChinese, types.LangEnglish)
	if !strings.Contains(prompt, "[INST]") || !strings.Contains(prompt, "你好") {
		t.Errorf("llama prompt missing template parts: %q", prompt)
	}

	prompt = BuildPrompt("qwen:7b", "你好", types.LangChinese, types.LangEnglish)
	if strings.Contains(prompt, "[INST]") {
		t.Errorf("plain prompt must not carry chat markers: %q", prompt)
	}
	if !strings.Contains(prompt, "你好") {
		t.Errorf("plain prompt missing text: %q", prompt)
	}

	prompt = BuildPrompt("qwen:7b", "Hello", types.LangEnglish, types.LangChinese)
	if !strings.Contains(prompt, "to Chinese") {
		t.Errorf("en->zh prompt has wrong direction: %q", prompt)
	}
}

func TestIsLlamaFamily(t *testing.T) {
	for model, want := range map[string]bool{
		"llama3": true, "Llama2:13b": true, "qwen:7b": false, "mistral": false, "": false,
	} {
		if got := isLlamaFamily(model); got != want {
			t.Errorf("isLlamaFamily(%q) = %v, want %v", model, got, want)
		}
	}
}
