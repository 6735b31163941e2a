package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultModel is the Gemini model asked to find passwords.
const DefaultModel = "gemini-2.5-flash"

// Settings holds all configuration options.
type Settings struct {
	// Gemini settings
	Model  string `json:"model" yaml:"model"`
	APIKey string `json:"api_key" yaml:"api_key"`

	// Extraction tool. Empty means locate it automatically.
	ToolPath string `json:"tool_path" yaml:"tool_path"`

	// Console behaviour
	WaitForKey bool `json:"wait_for_key" yaml:"wait_for_key"`
	Verbose    bool `json:"verbose" yaml:"verbose"`

	// Diagnostic log file. Empty disables file logging.
	LogFile string `json:"log_file" yaml:"log_file"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Model:      DefaultModel,
		WaitForKey: true,
	}
}

// DefaultPath returns the default config file location,
// e.g. ~/.config/gemini-extractor/config.json on Linux.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(dir, "gemini-extractor", "config.json")
}

// Load reads settings from a JSON or YAML file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON or YAML file, chosen by extension.
//
// The file is written with mode 0600 because it may hold the API key.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ApplyEnv applies environment overrides.
func (s *Settings) ApplyEnv() {
	if s.APIKey == "" {
		for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if key := os.Getenv(name); key != "" {
				s.APIKey = key
				break
			}
		}
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		s.Model = model
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
