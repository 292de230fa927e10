package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/doeshing/gitscribe-go/internal/domain"
)

// Validate ensures the merged config is usable. All problems are reported
// together.
func Validate(cfg domain.Config) error {
	var errs []error
	if err := validateInference(cfg.Inference); err != nil {
		errs = append(errs, err)
	}
	if _, err := cfg.Tracker.Resolve(); err != nil {
		errs = append(errs, err)
	} else if cfg.Tracker.BaseURL != "" {
		if err := validateURL("tracker.base_url", cfg.Tracker.BaseURL); err != nil {
			errs = append(errs, err)
		}
	}
	if err := validateOutput(cfg.Output); err != nil {
		errs = append(errs, err)
	}
	if err := validateTemplates(cfg.Templates); err != nil {
		errs = append(errs, err)
	}
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		errs = append(errs, errors.New("history.path must be set when history is enabled"))
	}
	return errors.Join(errs...)
}

func validateInference(inf domain.InferenceSettings) error {
	if err := validateURL("inference.endpoint", inf.Endpoint); err != nil {
		return err
	}
	if err := validateURL("inference.models_url", inf.ModelsURL); err != nil {
		return err
	}
	ceiling := int(domain.InferenceTimeout.Seconds())
	if inf.TimeoutSeconds <= 0 || inf.TimeoutSeconds > ceiling {
		return fmt.Errorf("inference.timeout_seconds must be between 1 and %d, got %d", ceiling, inf.TimeoutSeconds)
	}
	return nil
}

func validateOutput(out domain.OutputSettings) error {
	if strings.TrimSpace(out.ContextFile) == "" {
		return errors.New("output.context_file must be set")
	}
	if strings.TrimSpace(out.NotesFile) == "" {
		return errors.New("output.notes_file must be set")
	}
	return nil
}

func validateTemplates(tpl domain.TemplateSettings) error {
	if strings.TrimSpace(tpl.Dir) == "" {
		return errors.New("templates.dir must be set")
	}
	if tpl.Default != "" && filepath.Base(tpl.Default) != tpl.Default {
		return fmt.Errorf("templates.default must be a file name, got %s", tpl.Default)
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s invalid: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: %q", field, raw)
	}
	return nil
}
