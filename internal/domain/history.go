package domain

import "time"

// HistoryRecord captures one release-notes generation.
type HistoryRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Repo       string    `json:"repo"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
	Model      string    `json:"model"`
	OutputPath string    `json:"output_path"`
	Bytes      int       `json:"bytes"`
	Streamed   bool      `json:"streamed"`
	Issues     []string  `json:"issues,omitempty"`
	Output     string    `json:"output,omitempty"`
}
