// Package config provides configuration management for the PPT translator application.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"ppt-translator/internal/logger"
	"ppt-translator/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "ppt-translator-config.json"
	// EnvHost is the environment variable overriding the inference server address
	EnvHost = "PPT_TRANSLATOR_HOST"
	// EnvOpenAIAPIKey is the environment variable name for the OpenAI-compatible API key
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// DefaultHost is the default inference server address
	DefaultHost = "http://localhost:2342"
	// DefaultModel is the default model to use for translation
	DefaultModel = "qwen:7b"
	// DefaultBackend is the default inference backend
	DefaultBackend = string(types.BackendOllama)
	// DefaultMinFontSize is the default font size floor in points
	DefaultMinFontSize = 10
	// DefaultTimeoutSeconds is the default per-request timeout
	DefaultTimeoutSeconds = 120
)

// Manager manages application configuration
type Manager struct {
	configPath string
	config     *types.Config
}

// NewManager creates a new Manager with the specified config path.
// If configPath is empty, it uses the default path in the user's home directory.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "ppt-translator", DefaultConfigFileName)
	}

	logger.Info("config manager initialized", logger.String("configPath", configPath))
	return &Manager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

func defaultConfig() *types.Config {
	return &types.Config{
		Model:          DefaultModel,
		Host:           DefaultHost,
		Backend:        DefaultBackend,
		FromLang:       string(types.LangChinese),
		ToLang:         string(types.LangEnglish),
		MinFontSize:    DefaultMinFontSize,
		TimeoutSeconds: DefaultTimeoutSeconds,
		RetryOnTimeout: true,
	}
}

// Load loads configuration from the config file.
// If the file doesn't exist or is malformed, defaults are used.
func (m *Manager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		config := &types.Config{}
		if err := json.Unmarshal(data, config); err != nil {
			logger.Warn("invalid config file format, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			logger.Info("configuration loaded",
				logger.String("path", m.configPath),
				logger.String("host", config.Host),
				logger.String("model", config.Model))
			m.config = config
		}
	}

	// Apply defaults for empty fields
	if m.config.Model == "" {
		m.config.Model = DefaultModel
	}
	if m.config.Host == "" {
		m.config.Host = DefaultHost
	}
	if m.config.Backend == "" {
		m.config.Backend = DefaultBackend
	}
	if m.config.FromLang == "" {
		m.config.FromLang = string(types.LangChinese)
	}
	if m.config.ToLang == "" {
		m.config.ToLang = string(types.LangEnglish)
	}
	if m.config.MinFontSize <= 0 {
		m.config.MinFontSize = DefaultMinFontSize
	}
	if m.config.TimeoutSeconds <= 0 {
		m.config.TimeoutSeconds = DefaultTimeoutSeconds
	}

	return nil
}

// Save saves the current configuration to the config file.
func (m *Manager) Save() error {
	logger.Debug("saving configuration", logger.String("path", m.configPath))

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved", logger.String("path", m.configPath))
	return nil
}

// GetConfig returns the current configuration.
func (m *Manager) GetConfig() *types.Config {
	if m.config == nil {
		return defaultConfig()
	}
	return m.config
}

// SetConfig sets the entire configuration.
func (m *Manager) SetConfig(config *types.Config) {
	m.config = config
}

// GetConfigPath returns the path to the config file.
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// GetHost returns the inference server address.
// The config file value wins; the environment variable is the fallback.
func (m *Manager) GetHost() string {
	if m.config != nil && m.config.Host != "" {
		return m.config.Host
	}
	if envHost := os.Getenv(EnvHost); envHost != "" {
		return envHost
	}
	return DefaultHost
}

// GetModel returns the model to use for translation.
func (m *Manager) GetModel() string {
	if m.config != nil && m.config.Model != "" {
		return m.config.Model
	}
	return DefaultModel
}

// GetBackend returns the inference backend.
func (m *Manager) GetBackend() types.Backend {
	if m.config != nil && m.config.Backend != "" {
		return types.Backend(m.config.Backend)
	}
	return types.Backend(DefaultBackend)
}

// GetAPIKey returns the API key for the OpenAI-compatible backend.
// The config file value wins; the environment variable is the fallback.
func (m *Manager) GetAPIKey() string {
	if m.config != nil && m.config.APIKey != "" {
		return m.config.APIKey
	}
	return os.Getenv(EnvOpenAIAPIKey)
}

// GetMinFontSize returns the font size floor in points.
func (m *Manager) GetMinFontSize() int {
	if m.config != nil && m.config.MinFontSize > 0 {
		return m.config.MinFontSize
	}
	return DefaultMinFontSize
}

// GetTimeoutSeconds returns the per-request timeout in seconds.
func (m *Manager) GetTimeoutSeconds() int {
	if m.config != nil && m.config.TimeoutSeconds > 0 {
		return m.config.TimeoutSeconds
	}
	return DefaultTimeoutSeconds
}

// GetRetryOnTimeout reports whether a timed-out request is retried once.
func (m *Manager) GetRetryOnTimeout() bool {
	if m.config != nil {
		return m.config.RetryOnTimeout
	}
	return true
}

// UpdateConfig updates the configuration with new values and saves it.
// Empty strings and non-positive numbers leave the current value unchanged.
func (m *Manager) UpdateConfig(model, host, backend, apiKey, fromLang, toLang string, minFontSize, timeoutSeconds int, retryOnTimeout bool) error {
	logger.Info("updating configuration")
	if m.config == nil {
		m.config = defaultConfig()
	}

	if model != "" {
		m.config.Model = model
	}
	if host != "" {
		m.config.Host = host
	}
	if backend != "" {
		m.config.Backend = backend
	}
	if apiKey != "" {
		m.config.APIKey = apiKey
	}
	if fromLang != "" {
		m.config.FromLang = fromLang
	}
	if toLang != "" {
		m.config.ToLang = toLang
	}
	if minFontSize > 0 {
		m.config.MinFontSize = minFontSize
	}
	if timeoutSeconds > 0 {
		m.config.TimeoutSeconds = timeoutSeconds
	}
	m.config.RetryOnTimeout = retryOnTimeout

	return m.Save()
}
