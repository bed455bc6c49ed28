package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ppt-translator/internal/config"
	"ppt-translator/internal/logger"
	"ppt-translator/internal/pipeline"
	"ppt-translator/internal/pptx"
	"ppt-translator/internal/settings"
	"ppt-translator/internal/translator"
	"ppt-translator/internal/types"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Event names for frontend communication
const (
	EventTranslateProgress = "translate-progress"
	EventTranslateComplete = "translate-complete"
	EventTranslateError    = "translate-error"
)

// TranslateRequest is the frontend's translation request.
type TranslateRequest struct {
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	FromLang   string `json:"from_lang"`
	ToLang     string `json:"to_lang"`
	Model      string `json:"model"`
	Host       string `json:"host"`
}

// App is the main Wails application controller. It owns configuration,
// GUI-local settings, and the lifecycle of the running translation.
type App struct {
	ctx      context.Context
	config   *config.Manager
	settings *settings.Manager

	// Status tracking
	status   *types.Status
	statusMu sync.RWMutex

	// Cancellation support
	cancelFunc context.CancelFunc
	cancelMu   sync.Mutex

	// Last completed result, for the frontend to re-query
	lastResult *types.TranslateResult

	// isWailsRuntime indicates if the app is running in a Wails environment.
	// Used to safely skip EventsEmit calls during tests.
	isWailsRuntime bool
}

// NewApp creates a new App application struct.
func NewApp() *App {
	return &App{
		status: &types.Status{
			Phase:    types.PhaseIdle,
			Progress: 0,
			Message:  "",
		},
	}
}

// NewAppWithConfig creates a new App with a custom config path.
// Useful for testing or a specific configuration location.
func NewAppWithConfig(configPath string) (*App, error) {
	app := NewApp()
	configMgr, err := config.NewManager(configPath)
	if err != nil {
		return nil, err
	}
	app.config = configMgr
	return app, nil
}

// SetWailsRuntime sets the Wails runtime flag.
// This should be called from main.go when the app is started in Wails mode.
func (a *App) SetWailsRuntime(isWails bool) {
	a.isWailsRuntime = isWails
}

// safeEmit emits an event to the frontend, but only when running under the
// Wails runtime.
func (a *App) safeEmit(eventName string, data ...interface{}) {
	if !a.isWailsRuntime {
		logger.Debug("event emit skipped (not in Wails runtime)",
			logger.String("event", eventName))
		return
	}
	runtime.EventsEmit(a.ctx, eventName, data...)
}

// startup is called when the app starts. The context is saved so we can call
// the runtime methods.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	logger.Info("application starting up")

	if a.config == nil {
		configMgr, err := config.NewManager("")
		if err != nil {
			logger.Error("failed to create config manager", err)
			return
		}
		a.config = configMgr
	}
	if err := a.config.Load(); err != nil {
		logger.Warn("failed to load config, using defaults", logger.Err(err))
	}

	settingsMgr, err := settings.NewManager()
	if err != nil {
		logger.Warn("failed to create settings manager", logger.Err(err))
	} else {
		a.settings = settingsMgr
	}
}

// shutdown is called when the app is closing.
func (a *App) shutdown(ctx context.Context) {
	logger.Info("application shutting down")
	a.CancelProcess()
	logger.Close()
}

// SelectInputFile opens a file picker for the input presentation.
// Returns an empty string when the user cancels.
func (a *App) SelectInputFile() (string, error) {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "选择 PPTX 文件",
		Filters: []runtime.FileFilter{
			{DisplayName: "PowerPoint 演示文稿 (*.pptx)", Pattern: "*.pptx"},
		},
	})
	if err != nil {
		logger.Error("input file dialog failed", err)
		return "", types.NewAppError(types.ErrInternal, "打开文件选择对话框失败", err)
	}
	return path, nil
}

// SelectOutputFile opens a save dialog for the output path.
// Returns an empty string when the user cancels.
func (a *App) SelectOutputFile(defaultName string) (string, error) {
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "保存翻译结果",
		DefaultFilename: defaultName,
		Filters: []runtime.FileFilter{
			{DisplayName: "PowerPoint 演示文稿 (*.pptx)", Pattern: "*.pptx"},
		},
	})
	if err != nil {
		logger.Error("output file dialog failed", err)
		return "", types.NewAppError(types.ErrInternal, "打开保存对话框失败", err)
	}
	return path, nil
}

// TestConnection probes the configured inference server.
func (a *App) TestConnection(host, model string) error {
	client, err := a.newClient(context.Background(), host, model)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.TestConnection(ctx)
}

// newClient builds the translator client from the configured backend, with
// the request's host/model taking precedence over configuration.
func (a *App) newClient(ctx context.Context, host, model string) (translator.Client, error) {
	if host == "" {
		host = a.config.GetHost()
	}
	if model == "" {
		model = a.config.GetModel()
	}
	timeout := time.Duration(a.config.GetTimeoutSeconds()) * time.Second

	switch a.config.GetBackend() {
	case types.BackendOpenAI:
		return translator.NewOpenAIClient(ctx, host, model, a.config.GetAPIKey(), timeout)
	default:
		return translator.NewOllamaClient(host, model, timeout, a.config.GetRetryOnTimeout()), nil
	}
}

// StartTranslation kicks off a translation in the background. Progress and
// completion are reported through events; the returned error only covers
// validation and setup.
func (a *App) StartTranslation(req TranslateRequest) error {
	from, err := types.ParseLang(req.FromLang)
	if err != nil {
		return err
	}
	to, err := types.ParseLang(req.ToLang)
	if err != nil {
		return err
	}
	if err := types.ValidatePair(from, to); err != nil {
		return err
	}

	client, err := a.newClient(context.Background(), req.Host, req.Model)
	if err != nil {
		return err
	}

	if !a.claimStart() {
		return types.NewAppError(types.ErrInvalidInput, "已有翻译任务正在进行", nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelMu.Lock()
	a.cancelFunc = cancel
	a.cancelMu.Unlock()

	if a.settings != nil {
		if err := a.settings.AddRecentFile(req.InputPath); err != nil {
			logger.Warn("failed to record recent file", logger.Err(err))
		}
		if err := a.settings.SetDirection(string(from), string(to)); err != nil {
			logger.Warn("failed to record direction", logger.Err(err))
		}
	}

	go a.runTranslation(ctx, req, from, to, client)
	return nil
}

// runTranslation is the background worker behind StartTranslation.
func (a *App) runTranslation(ctx context.Context, req TranslateRequest, from, to types.Lang, client translator.Client) {
	defer func() {
		a.cancelMu.Lock()
		if a.cancelFunc != nil {
			a.cancelFunc()
			a.cancelFunc = nil
		}
		a.cancelMu.Unlock()
	}()

	result, err := pipeline.Run(ctx, pipeline.Options{
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		From:       from,
		To:         to,
		Translate:  client,
		Sizer:      pptx.NewFontSizer(a.config.GetMinFontSize()),
		Progress: func(cur, total int, _ string) {
			progress := cur * 100 / total
			if cur == total {
				// Last slide done, the container save is what remains
				a.setStatus(types.PhaseSaving, progress, "正在保存文件...")
			} else {
				a.setStatus(types.PhaseTranslating, progress,
					formatSlideProgress(cur, total))
			}
			a.safeEmit(EventTranslateProgress, a.GetStatus())
		},
	})
	if err != nil {
		logger.Error("translation failed", err, logger.String("input", req.InputPath))
		a.setStatusError(err)
		a.safeEmit(EventTranslateError, err.Error())
		return
	}

	a.statusMu.Lock()
	a.lastResult = result
	a.statusMu.Unlock()

	a.setStatus(types.PhaseComplete, 100, "翻译完成")
	a.safeEmit(EventTranslateComplete, result)
}

func formatSlideProgress(cur, total int) string {
	return fmt.Sprintf("正在翻译第 %d/%d 页", cur, total)
}

// GetStatus returns a copy of the current processing status.
func (a *App) GetStatus() *types.Status {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()
	s := *a.status
	return &s
}

// GetLastResult returns the result of the last completed translation, nil
// when none has finished yet.
func (a *App) GetLastResult() *types.TranslateResult {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()
	return a.lastResult
}

// claimStart atomically moves the status from an idle phase to loading.
// Returns false when a translation already holds the processing phases, so
// two concurrent StartTranslation calls cannot both pass the busy check.
func (a *App) claimStart() bool {
	a.statusMu.Lock()
	defer a.statusMu.Unlock()
	switch a.status.Phase {
	case types.PhaseLoading, types.PhaseTranslating, types.PhaseSaving:
		return false
	}
	a.status = &types.Status{Phase: types.PhaseLoading, Progress: 0, Message: "正在打开文件..."}
	return true
}

// IsProcessing reports whether a translation is currently running.
func (a *App) IsProcessing() bool {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()
	switch a.status.Phase {
	case types.PhaseLoading, types.PhaseTranslating, types.PhaseSaving:
		return true
	}
	return false
}

// CancelProcess cancels the running translation, if any.
func (a *App) CancelProcess() {
	a.cancelMu.Lock()
	defer a.cancelMu.Unlock()
	if a.cancelFunc != nil {
		logger.Info("cancelling translation")
		a.cancelFunc()
		a.cancelFunc = nil
	}
}

// GetRecentFiles returns recently translated input files, most recent first.
func (a *App) GetRecentFiles() []string {
	if a.settings == nil {
		return nil
	}
	return a.settings.RecentFiles()
}

// GetLastDirection returns the last used translation direction, defaults
// when none was recorded.
func (a *App) GetLastDirection() map[string]string {
	from, to := "", ""
	if a.settings != nil {
		from, to = a.settings.Direction()
	}
	if from == "" || to == "" {
		from, to = string(types.LangChinese), string(types.LangEnglish)
	}
	return map[string]string{"from": from, "to": to}
}

// GetAppConfig returns the current configuration for the settings panel.
func (a *App) GetAppConfig() *types.Config {
	return a.config.GetConfig()
}

// UpdateAppConfig updates and persists configuration from the settings panel.
func (a *App) UpdateAppConfig(model, host, backend, apiKey string, minFontSize, timeoutSeconds int, retryOnTimeout bool) error {
	return a.config.UpdateConfig(model, host, backend, apiKey, "", "", minFontSize, timeoutSeconds, retryOnTimeout)
}

// DefaultOutputFor returns the default output path for an input file.
func (a *App) DefaultOutputFor(inputPath string) string {
	return pipeline.DefaultOutputPath(inputPath)
}

func (a *App) setStatus(phase types.ProcessPhase, progress int, message string) {
	a.statusMu.Lock()
	defer a.statusMu.Unlock()
	a.status = &types.Status{Phase: phase, Progress: progress, Message: message}
}

func (a *App) setStatusError(err error) {
	a.statusMu.Lock()
	defer a.statusMu.Unlock()
	a.status = &types.Status{Phase: types.PhaseError, Progress: 0, Message: "翻译失败", Error: err.Error()}
}
