package doctor

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/ports"
)

// ToolProbe reports whether an external program can be run.
type ToolProbe interface {
	Program() string
	Available() bool
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Git            ToolProbe
	Extractor      ports.HistoryExtractor
	Models         ports.ModelLister
	Templates      ports.TemplateStore
	History        ports.HistoryRepository
}

// Run executes checks against repoDir and returns a report. The error is
// non-nil only when the config cannot be loaded, since every later check
// depends on it.
func (s *Service) Run(ctx context.Context, repoDir string) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("format version %s", cfg.ConfigFormatVersion)))

	checks = append(checks, s.gitChecks(ctx, repoDir)...)
	checks = append(checks, s.inferenceCheck(ctx, cfg.Inference))
	checks = append(checks, trackerCheck(cfg.Tracker))
	checks = append(checks, s.templateCheck(cfg.Templates))

	if s.History != nil {
		if cfg.History.Enabled {
			checks = append(checks, ok("History", s.History.Path()))
		} else {
			checks = append(checks, warn("History", "disabled"))
		}
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) gitChecks(ctx context.Context, repoDir string) []domain.HealthCheck {
	if s.Git == nil || !s.Git.Available() {
		return []domain.HealthCheck{fail("Git", "git executable not found on PATH")}
	}
	checks := []domain.HealthCheck{ok("Git", fmt.Sprintf("%s found", s.Git.Program()))}
	if s.Extractor == nil {
		return checks
	}
	refs, err := s.Extractor.Refs(ctx, repoDir)
	if err != nil {
		return append(checks, warn("Repository", fmt.Sprintf("%s is not a git repository", repoDir)))
	}
	return append(checks, ok("Repository", fmt.Sprintf("%d branches and tags", len(refs))))
}

func (s *Service) inferenceCheck(ctx context.Context, inf domain.InferenceSettings) domain.HealthCheck {
	if s.Models == nil {
		return warn("Inference server", "model lister not initialized")
	}
	probeCtx, cancel := context.WithTimeout(ctx, domain.DefaultProbeTimeout)
	defer cancel()

	models, err := s.Models.Models(probeCtx, inf.ModelsURL)
	if err != nil {
		return fail("Inference server", fmt.Sprintf("%s unreachable: %v", inf.ModelsURL, err))
	}
	if len(models) == 0 {
		return warn("Inference server", "reachable but no models installed")
	}
	if inf.Model == "" {
		return ok("Inference server", fmt.Sprintf("%d models available, none selected in config", len(models)))
	}
	if !slices.ContainsFunc(models, func(m domain.ModelInfo) bool { return m.Name == inf.Model }) {
		return warn("Inference server", fmt.Sprintf("configured model %s is not installed", inf.Model))
	}
	return ok("Inference server", fmt.Sprintf("%d models available, using %s", len(models), inf.Model))
}

func trackerCheck(settings domain.TrackerSettings) domain.HealthCheck {
	cfg, err := settings.Resolve()
	switch {
	case errors.Is(err, domain.ErrIncompleteTracker):
		return warn("Issue tracker", err.Error())
	case err != nil:
		return fail("Issue tracker", err.Error())
	case cfg == nil:
		return ok("Issue tracker", "not configured, linked issues are skipped")
	default:
		return ok("Issue tracker", cfg.BaseURL)
	}
}

func (s *Service) templateCheck(settings domain.TemplateSettings) domain.HealthCheck {
	if s.Templates == nil {
		return warn("Templates", "template store not initialized")
	}
	names, err := s.Templates.List()
	if err != nil {
		return fail("Templates", err.Error())
	}
	if !slices.Contains(names, settings.Default) {
		return warn("Templates", fmt.Sprintf("default template %s missing from %s", settings.Default, s.Templates.Dir()))
	}
	return ok("Templates", fmt.Sprintf("%d in %s", len(names), s.Templates.Dir()))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
