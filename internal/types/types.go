// Package types defines core data types and enums for the PPT translator application.
package types

import (
	"fmt"

	"golang.org/x/text/language"
)

// Lang is a supported translation language.
type Lang string

const (
	LangChinese Lang = "zh"
	LangEnglish Lang = "en"
)

// ParseLang parses a BCP 47 language tag and maps it onto one of the
// supported languages. Anything that is not Chinese or English is rejected.
func ParseLang(s string) (Lang, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return "", NewAppErrorWithDetails(ErrInvalidInput, "不支持的语言", s, err)
	}
	base, _ := tag.Base()
	switch base.String() {
	case "zh":
		return LangChinese, nil
	case "en":
		return LangEnglish, nil
	}
	return "", NewAppErrorWithDetails(ErrInvalidInput, "不支持的语言", s, nil)
}

// ValidatePair checks that from/to form a supported translation direction.
// Only zh→en and en→zh are supported.
func ValidatePair(from, to Lang) error {
	if from == to {
		return NewAppErrorWithDetails(ErrInvalidInput, "源语言和目标语言相同",
			fmt.Sprintf("%s -> %s", from, to), nil)
	}
	ok := (from == LangChinese && to == LangEnglish) ||
		(from == LangEnglish && to == LangChinese)
	if !ok {
		return NewAppErrorWithDetails(ErrInvalidInput, "不支持的翻译方向",
			fmt.Sprintf("%s -> %s", from, to), nil)
	}
	return nil
}

// Backend 推理后端类型
type Backend string

const (
	// BackendOllama talks to an Ollama server's native /api/generate endpoint.
	BackendOllama Backend = "ollama"
	// BackendOpenAI talks to any OpenAI-compatible chat completions endpoint.
	BackendOpenAI Backend = "openai"
)

// Config 应用配置
type Config struct {
	Model          string `json:"model"`            // 模型名称
	Host           string `json:"host"`             // 推理服务地址
	Backend        string `json:"backend"`          // "ollama" 或 "openai"
	APIKey         string `json:"api_key"`          // OpenAI 兼容后端的 API 密钥
	FromLang       string `json:"from_lang"`        // 默认源语言
	ToLang         string `json:"to_lang"`          // 默认目标语言
	MinFontSize    int    `json:"min_font_size"`    // 字号下限（磅）
	TimeoutSeconds int    `json:"timeout_seconds"`  // 单次翻译请求超时
	RetryOnTimeout bool   `json:"retry_on_timeout"` // 超时后是否重试一次
}

// ProcessPhase 处理阶段枚举
type ProcessPhase string

const (
	PhaseIdle        ProcessPhase = "idle"
	PhaseLoading     ProcessPhase = "loading"
	PhaseTranslating ProcessPhase = "translating"
	PhaseSaving      ProcessPhase = "saving"
	PhaseComplete    ProcessPhase = "complete"
	PhaseError       ProcessPhase = "error"
)

// Status 处理状态
type Status struct {
	Phase    ProcessPhase `json:"phase"`
	Progress int          `json:"progress"` // 0-100
	Message  string       `json:"message"`
	Error    string       `json:"error,omitempty"`
}

// TranslateResult 翻译结果
type TranslateResult struct {
	InputPath      string `json:"input_path"`
	OutputPath     string `json:"output_path"`
	SlideCount     int    `json:"slide_count"`
	RunCount       int    `json:"run_count"` // 提取到的文本 run 总数
	TranslatedRuns int    `json:"translated_runs"`
	SkippedRuns    int    `json:"skipped_runs"` // 无可翻译内容的 run
	FailedRuns     int    `json:"failed_runs"`  // 翻译失败、保留原文的 run
}

// ErrorCode 错误代码枚举
type ErrorCode string

const (
	ErrNetwork      ErrorCode = "NETWORK_ERROR"
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrAPICall      ErrorCode = "API_CALL_ERROR"
	ErrTranslation  ErrorCode = "TRANSLATION_ERROR"
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}
