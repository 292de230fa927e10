package domain

import (
	"errors"
	"regexp"
	"sort"
	"strings"
)

// Issue is a resolved issue-tracker record.
type Issue struct {
	Key            string
	Summary        string
	Status         string
	Type           string
	Description    *string
	Comments       []IssueComment
	Updated        string
	ResolutionDate *string
}

// IssueComment is one comment body with its optional last-updated timestamp.
type IssueComment struct {
	Body    string
	Updated *string
}

var issueKeyPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-\d+\b`)

// ExtractIssueKeys returns the unique issue keys found in text, sorted ascending.
func ExtractIssueKeys(text string) []string {
	matches := issueKeyPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		keys = append(keys, m)
	}
	sort.Strings(keys)
	return keys
}

// ErrIncompleteTracker is returned when only one of base URL and token is set.
var ErrIncompleteTracker = errors.New("issue tracker needs both base_url and token; tracker lookups disabled")

// TrackerConfig holds the credentials for issue lookups. A nil *TrackerConfig
// means the tracker is not configured.
type TrackerConfig struct {
	BaseURL string
	Token   string
}

// NewTrackerConfig collapses the URL/token pair into one optional value.
// Both blank yields (nil, nil); a half-filled pair yields ErrIncompleteTracker.
func NewTrackerConfig(baseURL, token string) (*TrackerConfig, error) {
	baseURL = strings.TrimSpace(baseURL)
	token = strings.TrimSpace(token)
	switch {
	case baseURL == "" && token == "":
		return nil, nil
	case baseURL == "" || token == "":
		return nil, ErrIncompleteTracker
	}
	return &TrackerConfig{BaseURL: strings.TrimRight(baseURL, "/"), Token: token}, nil
}
