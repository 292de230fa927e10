// Package config loads ~/.gitscribe/config.yaml layered under environment
// overrides.
//
// Precedence, lowest first: built-in defaults, the YAML file, GITSCRIBE_*
// environment variables. Nested keys in the environment use a double
// underscore, so GITSCRIBE_TRACKER__TOKEN sets tracker.token.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/pkg/filesystem"
	"github.com/doeshing/gitscribe-go/internal/ports"
)

// EnvPrefix namespaces environment overrides.
const EnvPrefix = "GITSCRIBE_"

// PathEnvVar overrides the config file location.
const PathEnvVar = EnvPrefix + "CONFIG"

// env keys that are read elsewhere and must not leak into the config tree
var reservedEnv = map[string]bool{
	PathEnvVar:          true,
	EnvPrefix + "DEBUG": true,
}

// FileLoader loads YAML configuration from ~/.gitscribe/config.yaml (overridable via GITSCRIBE_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path selects the default location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created with the defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, fmt.Errorf("create config dir: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := writeDefault(path); err != nil {
			return domain.Config{}, fmt.Errorf("write default config: %w", err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return domain.Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(file.Provider(path), yamlParser{}); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return domain.Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

// Path returns the config file location this loader reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(PathEnvVar); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filesystem.AppDir("config.yaml")
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() domain.Config {
	k := koanf.New(".")
	// a static map cannot fail to load
	_ = k.Load(confmap.Provider(defaultValues(), "."), nil)
	cfg, _ := unmarshal(k)
	return cfg
}

func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"config_format_version":     "1",
		"inference.endpoint":        domain.DefaultInferenceEndpoint,
		"inference.models_url":      domain.DefaultModelsURL,
		"inference.model":           "",
		"inference.timeout_seconds": int(domain.InferenceTimeout.Seconds()),
		"tracker.base_url":          "",
		"tracker.token":             "",
		"output.context_file":       domain.DefaultContextFile,
		"output.notes_file":         domain.DefaultNotesFile,
		"templates.dir":             filesystem.AppDir("templates"),
		"templates.default":         domain.DefaultTemplateName,
		"history.enabled":           true,
		"history.path":              filesystem.AppDir("history.db"),
	}
}

func unmarshal(k *koanf.Koanf) (domain.Config, error) {
	var cfg domain.Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return domain.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// envKey maps GITSCRIBE_TRACKER__BASE_URL to tracker.base_url. Returning ""
// drops the variable.
func envKey(name string) string {
	if reservedEnv[name] {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func writeDefault(path string) error {
	raw, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	defaults := DefaultConfig()
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = defaults.ConfigFormatVersion
	}
	if cfg.Inference.Endpoint == "" {
		cfg.Inference.Endpoint = defaults.Inference.Endpoint
	}
	if cfg.Inference.ModelsURL == "" {
		cfg.Inference.ModelsURL = defaults.Inference.ModelsURL
	}
	if cfg.Inference.TimeoutSeconds == 0 {
		cfg.Inference.TimeoutSeconds = defaults.Inference.TimeoutSeconds
	}
	if cfg.Output.ContextFile == "" {
		cfg.Output.ContextFile = defaults.Output.ContextFile
	}
	if cfg.Output.NotesFile == "" {
		cfg.Output.NotesFile = defaults.Output.NotesFile
	}
	if cfg.Templates.Dir == "" {
		cfg.Templates.Dir = defaults.Templates.Dir
	}
	if cfg.Templates.Default == "" {
		cfg.Templates.Default = defaults.Templates.Default
	}
	if cfg.History.Path == "" {
		cfg.History.Path = defaults.History.Path
	}
	cfg.Templates.Dir = filesystem.ExpandPath(cfg.Templates.Dir)
	cfg.History.Path = filesystem.ExpandPath(cfg.History.Path)
	return cfg
}

// yamlParser lets koanf read YAML through gopkg.in/yaml.v3.
type yamlParser struct{}

func (yamlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (yamlParser) Marshal(m map[string]interface{}) ([]byte, error) {
	return yaml.Marshal(m)
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
