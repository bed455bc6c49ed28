package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"os"
	"time"

	"ppt-translator/internal/config"
	"ppt-translator/internal/logger"
	"ppt-translator/internal/pipeline"
	"ppt-translator/internal/pptx"
	"ppt-translator/internal/translator"
	"ppt-translator/internal/types"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed all:frontend/dist
var assets embed.FS

// Command line flags
var (
	inputFlag   = flag.String("input", "", "PPTX file to translate")
	outputFlag  = flag.String("output", "", "Output file path (default: <input>_translated.pptx)")
	fromFlag    = flag.String("from-lang", "zh", "Source language: zh or en")
	toFlag      = flag.String("to-lang", "en", "Target language: zh or en")
	modelFlag   = flag.String("model", "", "Model name (default: qwen:7b)")
	hostFlag    = flag.String("host", "", "Inference server address (default: http://localhost:2342)")
	backendFlag = flag.String("backend", "", "Inference backend: ollama or openai")
	minFontFlag = flag.Int("min-font-size", 0, "Minimum font size in points after shrinking (default: 10)")
	cliFlag     = flag.Bool("cli", false, "Run in CLI mode without GUI")
)

// printHelp displays the help information for command line usage.
func printHelp() {
	fmt.Println("PPT Translator - 在中英文之间翻译 PPTX 幻灯片，保留原有排版")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  ppt-translator [选项]")
	fmt.Println()
	fmt.Println("选项:")
	fmt.Println("  --input <PATH>       要翻译的 PPTX 文件")
	fmt.Println("  --output <PATH>      输出文件路径 (默认: <输入文件>_translated.pptx)")
	fmt.Println("  --from-lang <LANG>   源语言: zh 或 en (默认: zh)")
	fmt.Println("  --to-lang <LANG>     目标语言: zh 或 en (默认: en)")
	fmt.Println("  --model <NAME>       模型名称 (默认: qwen:7b)")
	fmt.Println("  --host <URL>         推理服务地址 (默认: http://localhost:2342)")
	fmt.Println("  --backend <NAME>     推理后端: ollama 或 openai (默认: ollama)")
	fmt.Println("  --min-font-size <N>  缩小字号的下限，单位磅 (默认: 10)")
	fmt.Println("  --cli                命令行模式运行 (不启动 GUI)")
	fmt.Println("  -h, --help           显示帮助信息")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  ppt-translator                                      # 启动 GUI 界面")
	fmt.Println("  ppt-translator --input slides.pptx --cli")
	fmt.Println("  ppt-translator --input slides.pptx --from-lang en --to-lang zh --cli")
	fmt.Println("  ppt-translator --input slides.pptx --model llama3 --host http://localhost:11434 --cli")
	fmt.Println()
	fmt.Println("说明:")
	fmt.Println("  如果不提供任何参数，程序将启动图形界面。")
	fmt.Println("  如果提供了 --input 但没有 --cli，程序将启动 GUI 并自动开始翻译。")
}

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if *cliFlag {
		if *inputFlag == "" {
			fmt.Fprintln(os.Stderr, "错误: 命令行模式需要 --input 参数")
			fmt.Println()
			printHelp()
			os.Exit(1)
		}
		runTranslationCLI()
		return
	}

	// GUI mode
	logger.Init(&logger.Config{
		LogFilePath: "ppt-translator.log",
		Level:       logger.LevelInfo,
	})
	defer logger.Close()

	app := NewApp()
	app.SetWailsRuntime(true)

	startupFunc := func(ctx context.Context) {
		app.startup(ctx)

		// Auto-start when an input file was given on the command line
		if *inputFlag != "" {
			go func() {
				req := TranslateRequest{
					InputPath:  *inputFlag,
					OutputPath: *outputFlag,
					FromLang:   *fromFlag,
					ToLang:     *toFlag,
					Model:      *modelFlag,
					Host:       *hostFlag,
				}
				if err := app.StartTranslation(req); err != nil {
					runtime.EventsEmit(ctx, "translate-error", err.Error())
					fmt.Fprintf(os.Stderr, "翻译失败: %v\n", err)
				}
			}()
		}
	}

	err := wails.Run(&options.App{
		Title:  "幻译",
		Width:  760,
		Height: 560,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        startupFunc,
		OnShutdown:       app.shutdown,
		OnBeforeClose: func(ctx context.Context) (prevent bool) {
			if app.IsProcessing() {
				result, err := runtime.MessageDialog(ctx, runtime.MessageDialogOptions{
					Type:          runtime.QuestionDialog,
					Title:         "确认退出",
					Message:       "翻译任务正在进行中，确定要退出吗？\n退出后当前任务将被取消。",
					Buttons:       []string{"取消", "退出"},
					DefaultButton: "取消",
					CancelButton:  "取消",
				})
				if err != nil {
					return false
				}
				if result == "取消" {
					return true
				}
				app.CancelProcess()
			}
			return false
		},
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		logger.Error("wails run failed", err)
	}
}

// runTranslationCLI runs a full translation in CLI mode without GUI.
func runTranslationCLI() {
	logger.Init(&logger.Config{
		LogFilePath:   "ppt-translator-cli.log",
		Level:         logger.LevelInfo,
		EnableConsole: false,
	})
	defer logger.Close()

	fmt.Println("=== PPTX 翻译 (CLI 模式) ===")
	fmt.Printf("输入文件: %s\n", *inputFlag)

	from, err := types.ParseLang(*fromFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
	to, err := types.ParseLang(*toFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
	if err := types.ValidatePair(from, to); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}

	configMgr, err := config.NewManager("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: 无法加载配置: %v\n", err)
		os.Exit(1)
	}
	if err := configMgr.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "警告: 加载配置失败，使用默认值: %v\n", err)
	}

	// Flags override configured values
	host := configMgr.GetHost()
	if *hostFlag != "" {
		host = *hostFlag
	}
	model := configMgr.GetModel()
	if *modelFlag != "" {
		model = *modelFlag
	}
	backend := configMgr.GetBackend()
	if *backendFlag != "" {
		backend = types.Backend(*backendFlag)
	}
	minFont := configMgr.GetMinFontSize()
	if *minFontFlag > 0 {
		minFont = *minFontFlag
	}

	fmt.Printf("推理服务: %s\n", host)
	fmt.Printf("模型: %s\n", model)
	fmt.Printf("翻译方向: %s -> %s\n", from, to)

	timeout := time.Duration(configMgr.GetTimeoutSeconds()) * time.Second
	client, err := newTranslatorClient(context.Background(), backend, host, model,
		configMgr.GetAPIKey(), timeout, configMgr.GetRetryOnTimeout())
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("正在测试连接...")
	if err := client.TestConnection(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "错误: 无法连接推理服务: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("正在翻译...")
	startTime := time.Now()

	result, err := pipeline.Run(context.Background(), pipeline.Options{
		InputPath:  *inputFlag,
		OutputPath: *outputFlag,
		From:       from,
		To:         to,
		Translate:  client,
		Sizer:      pptx.NewFontSizer(minFont),
		Progress: func(cur, total int, _ string) {
			fmt.Printf("  [%d/%d] 幻灯片翻译完成\n", cur, total)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n错误: 翻译失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("=== 翻译完成 ===")
	fmt.Printf("输出文件: %s\n", result.OutputPath)
	fmt.Printf("幻灯片数: %d\n", result.SlideCount)
	fmt.Printf("翻译片段: %d\n", result.TranslatedRuns)
	fmt.Printf("跳过片段: %d\n", result.SkippedRuns)
	fmt.Printf("失败片段: %d\n", result.FailedRuns)
	fmt.Printf("总耗时:   %v\n", time.Since(startTime).Round(time.Second))

	if result.FailedRuns > 0 {
		os.Exit(2)
	}
}

// newTranslatorClient builds the backend client selected by configuration.
func newTranslatorClient(ctx context.Context, backend types.Backend, host, model, apiKey string,
	timeout time.Duration, retryOnTimeout bool) (translator.Client, error) {
	switch backend {
	case types.BackendOpenAI:
		return translator.NewOpenAIClient(ctx, host, model, apiKey, timeout)
	case types.BackendOllama, "":
		return translator.NewOllamaClient(host, model, timeout, retryOnTimeout), nil
	}
	return nil, types.NewAppErrorWithDetails(types.ErrConfig, "未知的推理后端", string(backend), nil)
}
