// Package tracker resolves issue keys against a Jira-compatible REST API.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/ports"
)

// FetchError describes why a single key could not be resolved.
type FetchError struct {
	Key        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("issue %s: tracker returned status %d", e.Key, e.StatusCode)
	}
	return fmt.Sprintf("issue %s: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client performs read-only issue lookups.
type Client struct {
	cfg        domain.TrackerConfig
	httpClient *http.Client
	logger     ports.Logger
}

// NewClient builds a client sharing httpClient across all lookups.
func NewClient(cfg domain.TrackerConfig, httpClient *http.Client, logger ports.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

type issueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string  `json:"summary"`
		Description *string `json:"description"`
		Status      struct {
			Name string `json:"name"`
		} `json:"status"`
		IssueType struct {
			Name string `json:"name"`
		} `json:"issuetype"`
		Comment *struct {
			Comments []struct {
				Body    string  `json:"body"`
				Updated *string `json:"updated"`
			} `json:"comments"`
		} `json:"comment"`
		Updated        string  `json:"updated"`
		ResolutionDate *string `json:"resolutiondate"`
	} `json:"fields"`
}

// FetchIssue performs one GET for key. It never retries.
func (c *Client) FetchIssue(ctx context.Context, key string) (domain.Issue, error) {
	endpoint := fmt.Sprintf("%s/rest/api/2/issue/%s", strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Issue{}, &FetchError{Key: key, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Issue{}, &FetchError{Key: key, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Issue{}, &FetchError{Key: key, StatusCode: resp.StatusCode}
	}

	var decoded issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Issue{}, &FetchError{Key: key, Err: fmt.Errorf("decode response: %w", err)}
	}
	return decoded.toIssue(), nil
}

// FetchIssues resolves keys with at most domain.MaxConcurrentIssueFetches
// requests in flight. Failed keys are logged and dropped; the result follows
// the order of keys.
func (c *Client) FetchIssues(ctx context.Context, keys []string) []domain.Issue {
	if len(keys) == 0 {
		return nil
	}
	slots := make([]*domain.Issue, len(keys))

	var g errgroup.Group
	g.SetLimit(domain.MaxConcurrentIssueFetches)
	for i, key := range keys {
		g.Go(func() error {
			c.logger.Debug("fetching issue", map[string]interface{}{"key": key})
			issue, err := c.FetchIssue(ctx, key)
			if err != nil {
				c.logger.Warn("issue lookup failed", map[string]interface{}{"key": key, "error": err.Error()})
				return nil
			}
			slots[i] = &issue
			return nil
		})
	}
	_ = g.Wait()

	issues := make([]domain.Issue, 0, len(keys))
	for _, issue := range slots {
		if issue != nil {
			issues = append(issues, *issue)
		}
	}
	return issues
}

func (r issueResponse) toIssue() domain.Issue {
	issue := domain.Issue{
		Key:            r.Key,
		Summary:        r.Fields.Summary,
		Status:         r.Fields.Status.Name,
		Type:           r.Fields.IssueType.Name,
		Description:    r.Fields.Description,
		Updated:        r.Fields.Updated,
		ResolutionDate: r.Fields.ResolutionDate,
	}
	if r.Fields.Comment != nil {
		for _, cm := range r.Fields.Comment.Comments {
			issue.Comments = append(issue.Comments, domain.IssueComment{Body: cm.Body, Updated: cm.Updated})
		}
	}
	return issue
}

// Factory hands out clients that share one *http.Client.
type Factory struct {
	httpClient *http.Client
	logger     ports.Logger
}

// NewFactory builds a Factory. Lookups carry no client timeout of their own;
// they stop when the request context is cancelled.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// ForTracker implements ports.IssueFetcherFactory.
func (f *Factory) ForTracker(cfg domain.TrackerConfig) ports.IssueFetcher {
	return NewClient(cfg, f.httpClient, f.logger)
}

var (
	_ ports.IssueFetcher        = (*Client)(nil)
	_ ports.IssueFetcherFactory = (*Factory)(nil)
)
