package appconfig

import (
	"os"
	"path/filepath"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	StateFile     string        `mapstructure:"state_file" yaml:"state_file"`
	Engine        EngineConfig  `mapstructure:"engine" yaml:"engine"`
	Browser       BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Page          PageConfig    `mapstructure:"page" yaml:"page"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// EngineConfig controls the reactive engine timing.
type EngineConfig struct {
	DebounceMillis int `mapstructure:"debounce_millis" yaml:"debounce_millis"`
}

// BrowserConfig configures the browser attachment.
type BrowserConfig struct {
	// RemoteURL attaches to a running browser's DevTools endpoint. When
	// empty, a browser is launched via ExecPath (or the default lookup).
	RemoteURL   string `mapstructure:"remote_url" yaml:"remote_url"`
	ExecPath    string `mapstructure:"exec_path" yaml:"exec_path"`
	Headless    bool   `mapstructure:"headless" yaml:"headless"`
	UserDataDir string `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	PageURL     string `mapstructure:"page_url" yaml:"page_url"`
}

// PageConfig names the host page's selectors.
type PageConfig struct {
	// CardSelectors covers both content-card variants on the host page.
	CardSelectors     []string `mapstructure:"card_selectors" yaml:"card_selectors"`
	ControlsSelector  string   `mapstructure:"controls_selector" yaml:"controls_selector"`
	HighlightSelector string   `mapstructure:"highlight_selector" yaml:"highlight_selector"`
	StatusSelector    string   `mapstructure:"status_selector" yaml:"status_selector"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		StateFile:     filepath.Join(home, ".anichart-filter", "selection.json"),
		Engine: EngineConfig{
			DebounceMillis: 180,
		},
		Browser: BrowserConfig{
			RemoteURL:   "",
			ExecPath:    "",
			Headless:    false,
			UserDataDir: filepath.Join(home, ".anichart-filter", "chrome"),
			PageURL:     "https://anichart.net",
		},
		Page: PageConfig{
			CardSelectors:     []string{".media-card", ".media-preview-card"},
			ControlsSelector:  ".filters-wrap",
			HighlightSelector: ".highlight",
			StatusSelector:    ".airing-countdown",
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".anichart-filter", "config.yaml"), nil
}
