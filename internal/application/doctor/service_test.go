package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/gitscribe-go/internal/domain"
)

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s stubConfig) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }

type stubProbe struct{ available bool }

func (s stubProbe) Program() string { return "git" }
func (s stubProbe) Available() bool { return s.available }

type stubExtractor struct {
	refs []string
	err  error
}

func (s stubExtractor) Extract(context.Context, string, domain.CommitRange) (domain.HistoryText, error) {
	return domain.HistoryText{}, nil
}
func (s stubExtractor) Refs(context.Context, string) ([]string, error) { return s.refs, s.err }

type stubModels struct {
	models []domain.ModelInfo
	err    error
}

func (s stubModels) Models(context.Context, string) ([]domain.ModelInfo, error) { return s.models, s.err }

type stubTemplates struct{ names []string }

func (s stubTemplates) List() ([]string, error)     { return s.names, nil }
func (s stubTemplates) Load(string) (string, error) { return "", nil }
func (s stubTemplates) Dir() string                 { return "/tmp/templates" }

func baseConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Inference:           domain.InferenceSettings{ModelsURL: "http://localhost:11434", Model: "llama3"},
		Templates:           domain.TemplateSettings{Default: "default.md"},
	}
}

func statusOf(t *testing.T, report domain.HealthReport, name string) domain.HealthStatus {
	t.Helper()
	for _, c := range report.Checks {
		if c.Name == name {
			return c.Status
		}
	}
	t.Fatalf("check %q missing from report %+v", name, report.Checks)
	return ""
}

func TestRunHealthy(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfig{cfg: baseConfig()},
		Git:            stubProbe{available: true},
		Extractor:      stubExtractor{refs: []string{"main", "v1.0.0"}},
		Models:         stubModels{models: []domain.ModelInfo{{Name: "llama3"}}},
		Templates:      stubTemplates{names: []string{"default.md"}},
	}
	report, err := svc.Run(context.Background(), ".")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("expected no errors: %+v", report.Checks)
	}
	for _, name := range []string{"Config file", "Git", "Repository", "Inference server", "Issue tracker", "Templates"} {
		if got := statusOf(t, report, name); got != domain.HealthOK {
			t.Errorf("%s = %s, want ok", name, got)
		}
	}
}

func TestRunDegraded(t *testing.T) {
	cfg := baseConfig()
	cfg.Tracker.Token = "orphan"
	svc := &Service{
		ConfigProvider: stubConfig{cfg: cfg},
		Git:            stubProbe{available: true},
		Extractor:      stubExtractor{err: errors.New("not a repo")},
		Models:         stubModels{err: errors.New("connection refused")},
		Templates:      stubTemplates{},
	}
	report, err := svc.Run(context.Background(), "/tmp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]domain.HealthStatus{
		"Repository":       domain.HealthWarn,
		"Inference server": domain.HealthError,
		"Issue tracker":    domain.HealthWarn,
		"Templates":        domain.HealthWarn,
	}
	for name, status := range want {
		if got := statusOf(t, report, name); got != status {
			t.Errorf("%s = %s, want %s", name, got, status)
		}
	}
	if !report.HasErrors() {
		t.Fatal("expected HasErrors")
	}
}

func TestRunMissingGit(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfig{cfg: baseConfig()}, Git: stubProbe{}}
	report, err := svc.Run(context.Background(), ".")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := statusOf(t, report, "Git"); got != domain.HealthError {
		t.Fatalf("Git = %s, want error", got)
	}
}

func TestRunConfigFailure(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfig{err: errors.New("bad yaml")}}
	report, err := svc.Run(context.Background(), ".")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(report.Checks) != 1 || report.Checks[0].Status != domain.HealthError {
		t.Fatalf("unexpected report: %+v", report.Checks)
	}
}

func TestInferenceCheckModelNotInstalled(t *testing.T) {
	svc := &Service{Models: stubModels{models: []domain.ModelInfo{{Name: "mistral"}}}}
	check := svc.inferenceCheck(context.Background(), domain.InferenceSettings{Model: "llama3"})
	if check.Status != domain.HealthWarn {
		t.Fatalf("status = %s, want warn", check.Status)
	}
}
