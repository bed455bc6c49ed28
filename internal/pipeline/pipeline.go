// Package pipeline drives a full presentation translation: open the deck,
// translate every text run slide by slide, rewrite the slide XML, save.
package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"ppt-translator/internal/logger"
	"ppt-translator/internal/pptx"
	"ppt-translator/internal/translator"
	"ppt-translator/internal/types"
)

// ProgressFunc receives per-slide progress. currentSlide is 1-based and
// equals totalSlides on the last report before saving.
type ProgressFunc func(currentSlide, totalSlides int, message string)

// Options configures one translation run.
type Options struct {
	InputPath  string
	OutputPath string // empty means "<input>_translated.pptx"
	From       types.Lang
	To         types.Lang
	Translate  translator.Client
	Sizer      *pptx.FontSizer // nil disables font shrinking
	Progress   ProgressFunc    // may be nil
}

// DefaultOutputPath derives the output path used when none is given.
func DefaultOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "_translated" + ext
}

// Run translates a presentation end to end. A run whose translation fails is
// kept in the source language and counted in FailedRuns; the rest of the deck
// still goes through. Cancelling ctx aborts between runs and returns the
// context error wrapped in an AppError.
func Run(ctx context.Context, opts Options) (*types.TranslateResult, error) {
	if err := types.ValidatePair(opts.From, opts.To); err != nil {
		return nil, err
	}
	if opts.Translate == nil {
		return nil, types.NewAppError(types.ErrConfig, "未配置翻译客户端", nil)
	}
	outPath := opts.OutputPath
	if outPath == "" {
		outPath = DefaultOutputPath(opts.InputPath)
	}

	doc, err := pptx.Open(opts.InputPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	result := &types.TranslateResult{
		InputPath:  opts.InputPath,
		OutputPath: outPath,
		SlideCount: doc.SlideCount(),
	}

	logger.Info("translation started",
		logger.String("input", opts.InputPath),
		logger.String("direction", string(opts.From)+"->"+string(opts.To)),
		logger.Int("slides", doc.SlideCount()))

	for i := 0; i < doc.SlideCount(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, types.NewAppError(types.ErrInternal, "翻译已取消", err)
		}

		if err := translateSlide(ctx, doc, i, opts, result); err != nil {
			return nil, err
		}

		if opts.Progress != nil {
			opts.Progress(i+1, doc.SlideCount(), doc.SlideName(i))
		}
	}

	if err := doc.Save(outPath); err != nil {
		return nil, err
	}

	logger.Info("translation finished",
		logger.String("output", outPath),
		logger.Int("translated", result.TranslatedRuns),
		logger.Int("skipped", result.SkippedRuns),
		logger.Int("failed", result.FailedRuns))
	return result, nil
}

// translateSlide translates every run of slide i and splices the slide's XML.
// Slides without translatable text are left byte-identical.
func translateSlide(ctx context.Context, doc *pptx.Document, i int, opts Options, result *types.TranslateResult) error {
	data, err := doc.SlideXML(i)
	if err != nil {
		return err
	}

	runs, err := pptx.ExtractRuns(data, i)
	if err != nil {
		return types.NewAppErrorWithDetails(types.ErrInvalidInput, "幻灯片解析失败", doc.SlideName(i), err)
	}
	result.RunCount += len(runs)

	repls := make(map[pptx.RunKey]string)
	for j := range runs {
		run := &runs[j]
		if err := ctx.Err(); err != nil {
			return types.NewAppError(types.ErrInternal, "翻译已取消", err)
		}
		if !translator.Translatable(run.Text, opts.From) {
			result.SkippedRuns++
			continue
		}

		translated, err := opts.Translate.Translate(ctx, run.Text, opts.From, opts.To)
		if err != nil {
			// Keep the original text, move on
			logger.Warn("run translation failed, keeping original",
				logger.Int("slide", i+1),
				logger.String("shape", run.ShapePath),
				logger.Int("run", run.RunIndex),
				logger.Err(err))
			result.FailedRuns++
			continue
		}
		if translated == run.Text {
			result.SkippedRuns++
			continue
		}
		repls[run.Key()] = translated
		result.TranslatedRuns++
	}

	if len(repls) == 0 {
		return nil
	}

	rewritten, err := pptx.RewriteSlide(data, repls, opts.Sizer)
	if err != nil {
		return types.NewAppErrorWithDetails(types.ErrInternal, "幻灯片改写失败", doc.SlideName(i), err)
	}
	doc.SetSlideXML(i, rewritten)
	return nil
}
