// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The release pipeline in internal/application depends only on these
// abstractions. Concrete adapters live under internal/infrastructure: git for
// history, tracker for issue lookups, ai for the inference server, config,
// history and templates for local state.
package ports

import (
	"context"

	"github.com/doeshing/gitscribe-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.gitscribe/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// HistoryExtractor pulls the commit log and diff for a range out of version control.
type HistoryExtractor interface {
	Extract(ctx context.Context, dir string, rng domain.CommitRange) (domain.HistoryText, error)
	Refs(ctx context.Context, dir string) ([]string, error)
}

// IssueFetcher resolves issue keys. Keys that fail to resolve are omitted from
// the result; the returned slice keeps the order of keys.
type IssueFetcher interface {
	FetchIssues(ctx context.Context, keys []string) []domain.Issue
}

// IssueFetcherFactory builds a fetcher for one set of tracker credentials.
type IssueFetcherFactory interface {
	ForTracker(domain.TrackerConfig) IssueFetcher
}

// InferenceClient runs a prompt through the inference server. A nil onToken
// selects a blocking call; otherwise tokens are delivered as they arrive.
type InferenceClient interface {
	Infer(ctx context.Context, req domain.InferenceRequest, onToken func(string)) (string, error)
}

// ModelLister enumerates models installed on the inference server.
type ModelLister interface {
	Models(ctx context.Context, baseURL string) ([]domain.ModelInfo, error)
}

// TemplateStore serves named system prompt templates.
type TemplateStore interface {
	List() ([]string, error)
	Load(name string) (string, error)
	Dir() string
}

// HistoryRepository persists generated release notes. Save fills in the ID
// and timestamp when they are empty and returns the stored record.
type HistoryRepository interface {
	Save(domain.HistoryRecord) (domain.HistoryRecord, error)
	Records(limit int) ([]domain.HistoryRecord, error)
	Get(id string) (domain.HistoryRecord, bool, error)
	Clear() error
	ExportJSON(dest string) error
	Path() string
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
