package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const appName = "vaxtui"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Lists     ListsConfig     `mapstructure:"lists"`
	Downloads DownloadsConfig `mapstructure:"downloads"`
	UI        UIConfig        `mapstructure:"ui"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds the REST service connection
type ServerConfig struct {
	URL          string        `mapstructure:"url"`           // Service root, e.g. http://127.0.0.1:8000
	ClientID     string        `mapstructure:"client_id"`     // OAuth2 application id
	ClientSecret string        `mapstructure:"client_secret"` // OAuth2 application secret
	Timeout      time.Duration `mapstructure:"timeout"`
}

// ChatConfig holds the realtime database used for support chat
type ChatConfig struct {
	DatabaseURL  string        `mapstructure:"database_url"` // e.g. https://<project>.firebaseio.com
	Auth         string        `mapstructure:"auth"`         // optional database secret or ID token
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// ListsConfig overrides list paging
type ListsConfig struct {
	PageSize int `mapstructure:"page_size"` // 0 keeps each screen's own size
}

// DownloadsConfig holds where certificates are written and how they open
type DownloadsConfig struct {
	Dir    string `mapstructure:"dir"`
	Viewer string `mapstructure:"viewer"` // PDF viewer command, empty to auto-detect
}

// UIConfig holds UI configuration
type UIConfig struct {
	Mouse bool `mapstructure:"mouse"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Timeout: 30 * time.Second,
		},
		Chat: ChatConfig{
			PollInterval: 2 * time.Second,
		},
		Downloads: DownloadsConfig{
			Dir: defaultDownloadPath(),
		},
		UI: UIConfig{
			Mouse: true,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName, appName+".log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, appName+".log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName, "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, "cache")
	}
}

// defaultDownloadPath returns where certificates go unless configured
func defaultDownloadPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Downloads")
}

// v is the process-wide viper instance backing Load and Save
var v = viper.New()

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	return load(v, defaultConfigPath(), ".")
}

func load(vp *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(vp, cfg)

	vp.SetConfigName("config")
	vp.SetConfigType("yaml")
	for _, p := range paths {
		vp.AddConfigPath(p)
	}

	// Environment variable overrides, e.g. VAXTUI_SERVER_URL
	vp.SetEnvPrefix("VAXTUI")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := vp.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(vp *viper.Viper, cfg *Config) {
	vp.SetDefault("server.url", cfg.Server.URL)
	vp.SetDefault("server.client_id", cfg.Server.ClientID)
	vp.SetDefault("server.client_secret", cfg.Server.ClientSecret)
	vp.SetDefault("server.timeout", cfg.Server.Timeout)
	vp.SetDefault("chat.database_url", cfg.Chat.DatabaseURL)
	vp.SetDefault("chat.auth", cfg.Chat.Auth)
	vp.SetDefault("chat.poll_interval", cfg.Chat.PollInterval)
	vp.SetDefault("lists.page_size", cfg.Lists.PageSize)
	vp.SetDefault("downloads.dir", cfg.Downloads.Dir)
	vp.SetDefault("downloads.viewer", cfg.Downloads.Viewer)
	vp.SetDefault("ui.mouse", cfg.UI.Mouse)
	vp.SetDefault("logging.file", cfg.Logging.File)
	vp.SetDefault("logging.level", cfg.Logging.Level)
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	return save(v, cfg, defaultConfigPath())
}

func save(vp *viper.Viper, cfg *Config, dir string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	vp.Set("server.url", cfg.Server.URL)
	vp.Set("server.client_id", cfg.Server.ClientID)
	vp.Set("server.client_secret", cfg.Server.ClientSecret)
	vp.Set("server.timeout", cfg.Server.Timeout.String())

	vp.Set("chat.database_url", cfg.Chat.DatabaseURL)
	vp.Set("chat.auth", cfg.Chat.Auth)
	vp.Set("chat.poll_interval", cfg.Chat.PollInterval.String())

	vp.Set("lists.page_size", cfg.Lists.PageSize)
	vp.Set("downloads.dir", cfg.Downloads.Dir)
	vp.Set("downloads.viewer", cfg.Downloads.Viewer)
	vp.Set("ui.mouse", cfg.UI.Mouse)

	vp.Set("logging.file", cfg.Logging.File)
	vp.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := vp.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// the file holds the OAuth client secret
	return os.Chmod(configFile, 0600)
}

// IsConfigured returns true if the service URL and OAuth client are set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != "" && c.Server.ClientID != ""
}

// ClearServerConfig removes the service connection while preserving other
// settings (chat, lists, downloads, logging)
func ClearServerConfig() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	cfg.Server = ServerConfig{Timeout: cfg.Server.Timeout}
	return SaveConfig(cfg)
}

// ClearCache removes all cached data, including the saved session
func ClearCache() error {
	cachePath := defaultCachePath()
	if err := os.RemoveAll(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// GetCachePath returns the cache directory path
func GetCachePath() string {
	return defaultCachePath()
}

// ConfigFile returns where SaveConfig writes
func ConfigFile() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}
