package types

import (
	"errors"
	"testing"
)

func TestParseLang(t *testing.T) {
	tests := []struct {
		input    string
		expected Lang
		wantErr  bool
	}{
		{input: "zh", expected: LangChinese},
		{input: "en", expected: LangEnglish},
		{input: "zh-CN", expected: LangChinese},
		{input: "zh-Hans", expected: LangChinese},
		{input: "en-US", expected: LangEnglish},
		{input: "ja", wantErr: true},
		{input: "fr", wantErr: true},
		{input: "", wantErr: true},
		{input: "not a tag !!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLang(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLang(%q) = %q, want error", tt.input, got)
				}
				var appErr *AppError
				if !errors.As(err, &appErr) || appErr.Code != ErrInvalidInput {
					t.Errorf("ParseLang(%q) error = %v, want INVALID_INPUT", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLang(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseLang(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidatePair(t *testing.T) {
	tests := []struct {
		name     string
		from, to Lang
		wantErr  bool
	}{
		{name: "zh to en", from: LangChinese, to: LangEnglish},
		{name: "en to zh", from: LangEnglish, to: LangChinese},
		{name: "same language", from: LangChinese, to: LangChinese, wantErr: true},
		{name: "unknown source", from: Lang("ja"), to: LangEnglish, wantErr: true},
		{name: "unknown target", from: LangChinese, to: Lang("fr"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePair(tt.from, tt.to)
			if tt.wantErr && err == nil {
				t.Errorf("ValidatePair(%s, %s) = nil, want error", tt.from, tt.to)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidatePair(%s, %s) returned error: %v", tt.from, tt.to, err)
			}
		})
	}
}

func TestAppError(t *testing.T) {
	cause := errors.New("underlying")
	err := NewAppError(ErrNetwork, "无法连接推理服务", cause)

	if err.Error() != "无法连接推理服务" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is must see the cause through Unwrap")
	}

	detailed := NewAppErrorWithDetails(ErrFileNotFound, "文件不存在", "/tmp/x.pptx", nil)
	if detailed.Error() != "文件不存在: /tmp/x.pptx" {
		t.Errorf("Error() = %q", detailed.Error())
	}
	if detailed.Unwrap() != nil {
		t.Error("Unwrap() of cause-less error must be nil")
	}
}
