package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Config captures the settings riv needs to reach the processing service.
type Config struct {
	APIBind        string
	DownloadDir    string
	LogFile        string
	RequestTimeout time.Duration
	PollInterval   time.Duration
}

const (
	defaultConfigPath     = "~/.config/riv/config.toml"
	defaultAPIBind        = "127.0.0.1:8000"
	defaultDownloadDir    = "~/Downloads"
	defaultLogFile        = "~/.local/state/riv/riv.log"
	defaultRequestTimeout = 120 * time.Second
	defaultPollInterval   = 5 * time.Second
	envPrefix             = "RIV"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBind:        defaultAPIBind,
		DownloadDir:    mustExpand(defaultDownloadDir),
		LogFile:        mustExpand(defaultLogFile),
		RequestTimeout: defaultRequestTimeout,
		PollInterval:   defaultPollInterval,
	}
}

type fileConfig struct {
	APIBind               string `toml:"api_bind"`
	DownloadDir           string `toml:"download_dir"`
	LogFile               string `toml:"log_file"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	PollSeconds           int    `toml:"poll_seconds"`
}

// Load parses the riv config, falling back to defaults when it is missing.
// RIV_API_BIND, RIV_DOWNLOAD_DIR, RIV_LOG_FILE, RIV_REQUEST_TIMEOUT_SECONDS and
// RIV_POLL_SECONDS override the file. RIV_CONFIG names the file when path is empty.
func Load(path string) (Config, error) {
	env := viper.New()
	env.SetEnvPrefix(envPrefix)
	env.AutomaticEnv()

	if strings.TrimSpace(path) == "" {
		path = env.GetString("config")
	}
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	raw, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	overlayEnv(env, &raw)

	cfg := Default()
	if bind := strings.TrimSpace(raw.APIBind); bind != "" {
		cfg.APIBind = bind
	}
	if dir := strings.TrimSpace(raw.DownloadDir); dir != "" {
		cfg.DownloadDir = mustExpand(dir)
	}
	if file := strings.TrimSpace(raw.LogFile); file != "" {
		cfg.LogFile = mustExpand(file)
	}
	if raw.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}
	if raw.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second
	}
	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	var raw fileConfig
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return raw, nil
		}
		return raw, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return raw, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return raw, fmt.Errorf("parse config: %w", err)
	}
	return raw, nil
}

func overlayEnv(env *viper.Viper, raw *fileConfig) {
	if v := env.GetString("api_bind"); strings.TrimSpace(v) != "" {
		raw.APIBind = v
	}
	if v := env.GetString("download_dir"); strings.TrimSpace(v) != "" {
		raw.DownloadDir = v
	}
	if v := env.GetString("log_file"); strings.TrimSpace(v) != "" {
		raw.LogFile = v
	}
	if v := env.GetInt("request_timeout_seconds"); v > 0 {
		raw.RequestTimeoutSeconds = v
	}
	if v := env.GetInt("poll_seconds"); v > 0 {
		raw.PollSeconds = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
