package pipeline

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppt-translator/internal/pptx"
	"ppt-translator/internal/translator"
	"ppt-translator/internal/types"
)

const testSlide = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:sp><p:nvSpPr/><p:spPr/><p:txBody><a:bodyPr/><a:p><a:r><a:rPr sz="2400"/><a:t>Hello World</a:t></a:r></a:p></p:txBody></p:sp><p:sp><p:nvSpPr/><p:spPr/><p:txBody><a:bodyPr/><a:p><a:r><a:t>2024</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`

func writeDeck(t *testing.T, slides map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?><Types xmlns="t"/>`))
	require.NoError(t, err)
	for name, content := range slides {
		w, err := zw.Create("ppt/slides/" + name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

// stubTranslator maps source text to translations and fails on anything
// listed in failOn.
func stubTranslator(repls map[string]string, failOn string) translator.Client {
	return translator.Func(func(ctx context.Context, text string, from, to types.Lang) (string, error) {
		if text == failOn {
			return "", types.NewAppError(types.ErrTranslation, "模型返回空译文", nil)
		}
		if out, ok := repls[text]; ok {
			return out, nil
		}
		return text, nil
	})
}

func TestRun_TranslatesDeck(t *testing.T) {
	input := writeDeck(t, map[string]string{"slide1.xml": testSlide})
	output := filepath.Join(t.TempDir(), "out.pptx")

	var progress []int
	result, err := Run(context.Background(), Options{
		InputPath:  input,
		OutputPath: output,
		From:       types.LangEnglish,
		To:         types.LangChinese,
		Translate:  stubTranslator(map[string]string{"Hello World": "你好世界"}, ""),
		Sizer:      pptx.NewFontSizer(10),
		Progress: func(cur, total int, _ string) {
			progress = append(progress, cur)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SlideCount)
	assert.Equal(t, 2, result.RunCount)
	assert.Equal(t, 1, result.TranslatedRuns)
	assert.Equal(t, 1, result.SkippedRuns, "numeric run is skipped")
	assert.Equal(t, 0, result.FailedRuns)
	assert.Equal(t, []int{1}, progress)

	doc, err := pptx.Open(output)
	require.NoError(t, err)
	defer doc.Close()
	data, err := doc.SlideXML(0)
	require.NoError(t, err)
	assert.Contains(t, string(data), "你好世界")
	assert.NotContains(t, string(data), "Hello World")
}

func TestRun_FailedRunKeepsOriginal(t *testing.T) {
	input := writeDeck(t, map[string]string{"slide1.xml": testSlide})
	output := filepath.Join(t.TempDir(), "out.pptx")

	result, err := Run(context.Background(), Options{
		InputPath:  input,
		OutputPath: output,
		From:       types.LangEnglish,
		To:         types.LangChinese,
		Translate:  stubTranslator(nil, "Hello World"),
	})
	require.NoError(t, err, "a failed run must not fail the whole deck")

	assert.Equal(t, 1, result.FailedRuns)
	assert.Equal(t, 0, result.TranslatedRuns)

	doc, err := pptx.Open(output)
	require.NoError(t, err)
	defer doc.Close()
	data, err := doc.SlideXML(0)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hello World", "failed run keeps the source text")
}

func TestRun_IdenticalTranslationSkipped(t *testing.T) {
	input := writeDeck(t, map[string]string{"slide1.xml": testSlide})

	result, err := Run(context.Background(), Options{
		InputPath:  input,
		OutputPath: filepath.Join(t.TempDir(), "out.pptx"),
		From:       types.LangEnglish,
		To:         types.LangChinese,
		Translate:  stubTranslator(nil, ""), // echoes input
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.TranslatedRuns)
	assert.Equal(t, 2, result.SkippedRuns)
}

func TestRun_DefaultOutputPath(t *testing.T) {
	input := writeDeck(t, map[string]string{"slide1.xml": testSlide})

	result, err := Run(context.Background(), Options{
		InputPath: input,
		From:      types.LangEnglish,
		To:        types.LangChinese,
		Translate: stubTranslator(map[string]string{"Hello World": "你好"}, ""),
	})
	require.NoError(t, err)

	want := filepath.Join(filepath.Dir(input), "deck_translated.pptx")
	assert.Equal(t, want, result.OutputPath)
	_, err = os.Stat(want)
	assert.NoError(t, err)
}

func TestRun_InvalidPair(t *testing.T) {
	_, err := Run(context.Background(), Options{
		InputPath: "whatever.pptx",
		From:      types.LangChinese,
		To:        types.LangChinese,
		Translate: stubTranslator(nil, ""),
	})
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrInvalidInput, appErr.Code)
}

func TestRun_MissingTranslator(t *testing.T) {
	_, err := Run(context.Background(), Options{
		InputPath: "whatever.pptx",
		From:      types.LangChinese,
		To:        types.LangEnglish,
	})
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrConfig, appErr.Code)
}

func TestRun_Cancelled(t *testing.T) {
	input := writeDeck(t, map[string]string{"slide1.xml": testSlide})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{
		InputPath: input,
		From:      types.LangEnglish,
		To:        types.LangChinese,
		Translate: stubTranslator(nil, ""),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_MissingFile(t *testing.T) {
	_, err := Run(context.Background(), Options{
		InputPath: filepath.Join(t.TempDir(), "nope.pptx"),
		From:      types.LangEnglish,
		To:        types.LangChinese,
		Translate: stubTranslator(nil, ""),
	})
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrFileNotFound, appErr.Code)
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "deck_translated.pptx", DefaultOutputPath("deck.pptx"))
	assert.Equal(t, filepath.Join("a", "b_translated.pptx"), DefaultOutputPath(filepath.Join("a", "b.pptx")))
}
