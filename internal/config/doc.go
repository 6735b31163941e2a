// Package config provides configuration management for gemini-extractor.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - Environment overrides for the Gemini API key and model
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Model gemini-2.5-flash
//	// Waits for Enter before exiting
//	// Extraction tool located automatically
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
//
// # Environment
//
// ApplyEnv fills an empty api_key from GEMINI_API_KEY, then GOOGLE_API_KEY,
// and lets GEMINI_MODEL override the model name.
package config
