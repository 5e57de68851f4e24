package appconfig

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, uses
// DefaultConfigPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("state_file", cfg.StateFile)
	v.SetDefault("engine.debounce_millis", cfg.Engine.DebounceMillis)
	v.SetDefault("browser.remote_url", cfg.Browser.RemoteURL)
	v.SetDefault("browser.exec_path", cfg.Browser.ExecPath)
	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.user_data_dir", cfg.Browser.UserDataDir)
	v.SetDefault("browser.page_url", cfg.Browser.PageURL)
	v.SetDefault("page.card_selectors", cfg.Page.CardSelectors)
	v.SetDefault("page.controls_selector", cfg.Page.ControlsSelector)
	v.SetDefault("page.highlight_selector", cfg.Page.HighlightSelector)
	v.SetDefault("page.status_selector", cfg.Page.StatusSelector)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Engine.DebounceMillis <= 0 {
		return fmt.Errorf("engine.debounce_millis must be greater than zero")
	}
	if strings.TrimSpace(cfg.StateFile) == "" {
		return fmt.Errorf("state_file is required")
	}
	if len(cfg.Page.CardSelectors) == 0 {
		return fmt.Errorf("page.card_selectors must name at least one selector")
	}
	if strings.TrimSpace(cfg.Page.ControlsSelector) == "" {
		return fmt.Errorf("page.controls_selector is required")
	}
	if remote := strings.TrimSpace(cfg.Browser.RemoteURL); remote != "" {
		parsed, err := url.Parse(remote)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("browser.remote_url must include scheme and host (e.g. ws://127.0.0.1:9222)")
		}
	}
	if pageURL := strings.TrimSpace(cfg.Browser.PageURL); pageURL != "" {
		parsed, err := url.Parse(pageURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("browser.page_url must include scheme and host")
		}
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.StateFile = expandEnv(cfg.StateFile)
	cfg.Browser.ExecPath = expandEnv(cfg.Browser.ExecPath)
	cfg.Browser.UserDataDir = expandEnv(cfg.Browser.UserDataDir)
	cfg.Browser.RemoteURL = expandEnv(cfg.Browser.RemoteURL)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
