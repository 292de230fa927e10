package domain

import "time"

// Config mirrors ~/.gitscribe/config.yaml after defaults and environment overrides.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Inference           InferenceSettings `yaml:"inference"`
	Tracker             TrackerSettings   `yaml:"tracker"`
	Output              OutputSettings    `yaml:"output"`
	Templates           TemplateSettings  `yaml:"templates"`
	History             HistorySettings   `yaml:"history"`
}

// InferenceSettings points at the local inference server.
type InferenceSettings struct {
	Endpoint       string `yaml:"endpoint"`
	ModelsURL      string `yaml:"models_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the inference HTTP timeout. Unset or out-of-range values
// fall back to InferenceTimeout, which is also the ceiling.
func (s InferenceSettings) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 || s.TimeoutSeconds > int(InferenceTimeout/time.Second) {
		return InferenceTimeout
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// TrackerSettings holds the raw tracker pair. Use Resolve to get a TrackerConfig.
type TrackerSettings struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// Resolve collapses the settings into an optional TrackerConfig.
func (t TrackerSettings) Resolve() (*TrackerConfig, error) {
	return NewTrackerConfig(t.BaseURL, t.Token)
}

// OutputSettings names the default output files.
type OutputSettings struct {
	ContextFile string `yaml:"context_file"`
	NotesFile   string `yaml:"notes_file"`
}

// TemplateSettings locates the system prompt templates.
type TemplateSettings struct {
	Dir     string `yaml:"dir"`
	Default string `yaml:"default"`
}

// HistorySettings controls the generation history store.
type HistorySettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}
