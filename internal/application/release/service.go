// Package release orchestrates the release pipeline: history extraction,
// issue lookup, document assembly and the optional inference pass.
package release

import (
	"context"
	"errors"
	"fmt"

	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/ports"
)

// Service wires the pipeline ports together. Trackers may be nil when issue
// lookups are never wanted.
type Service struct {
	Extractor ports.HistoryExtractor
	Trackers  ports.IssueFetcherFactory
	Inference ports.InferenceClient
	Logger    ports.Logger
}

// ContextRequest describes one document build.
type ContextRequest struct {
	Range   domain.CommitRange
	Dir     string
	Notes   string
	Tracker *domain.TrackerConfig
}

// ContextResult is the assembled document plus what went into it.
type ContextResult struct {
	Document string
	History  domain.HistoryText
	Keys     []string
	Issues   []domain.Issue
}

// NotesRequest describes one inference pass over an assembled document.
// A nil OnToken selects the blocking mode.
type NotesRequest struct {
	Model    string
	Endpoint string
	Document string
	System   string
	OnToken  func(string)
}

// BuildContext extracts history for the range, resolves linked issues when a
// tracker is configured and assembles the document. Extraction failures abort
// the request; tracker failures only drop the affected issues.
func (s *Service) BuildContext(ctx context.Context, req ContextRequest) (ContextResult, error) {
	if s.Extractor == nil || s.Logger == nil {
		return ContextResult{}, errors.New("release.Service dependencies not satisfied")
	}

	history, err := s.Extractor.Extract(ctx, req.Dir, req.Range)
	if err != nil {
		return ContextResult{}, fmt.Errorf("extract history: %w", err)
	}

	result := ContextResult{History: history}
	if req.Tracker != nil && s.Trackers != nil {
		result.Keys = domain.ExtractIssueKeys(history.Log)
		if len(result.Keys) > 0 {
			s.Logger.Info("resolving linked issues", map[string]interface{}{
				"keys":    len(result.Keys),
				"tracker": req.Tracker.BaseURL,
			})
			result.Issues = s.Trackers.ForTracker(*req.Tracker).FetchIssues(ctx, result.Keys)
		}
	}

	result.Document = Assemble(req.Notes, RenderIssueSection(result.Issues), history.Log, history.Diff)
	s.Logger.Debug("context assembled", map[string]interface{}{
		"commits": history.CommitCount(),
		"issues":  len(result.Issues),
		"bytes":   len(result.Document),
	})
	return result, nil
}

// GenerateNotes runs the document through the inference server.
func (s *Service) GenerateNotes(ctx context.Context, req NotesRequest) (string, error) {
	if s.Inference == nil {
		return "", errors.New("release.Service has no inference client")
	}
	if req.Model == "" {
		return "", errors.New("no model selected; pass --model or set inference.model")
	}

	text, err := s.Inference.Infer(ctx, domain.InferenceRequest{
		Model:    req.Model,
		Endpoint: req.Endpoint,
		Prompt:   req.Document,
		System:   req.System,
	}, req.OnToken)
	if err != nil {
		return text, fmt.Errorf("inference: %w", err)
	}
	return text, nil
}
