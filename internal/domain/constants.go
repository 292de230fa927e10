package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
	// OutputFilePermissions is used for generated documents (rw-r--r--)
	OutputFilePermissions = 0o644
)

// Timeout and concurrency constants
const (
	// InferenceTimeout bounds a whole inference call, including streaming. It is
	// the only request timeout; tracker lookups end with the command context.
	InferenceTimeout = 300 * time.Second
	// MaxConcurrentIssueFetches caps in-flight tracker requests.
	MaxConcurrentIssueFetches = 5
	// DefaultProbeTimeout is used by doctor checks.
	DefaultProbeTimeout = 5 * time.Second
)

// Default endpoints and files
const (
	DefaultInferenceEndpoint = "http://localhost:11434/api/generate"
	DefaultModelsURL         = "http://localhost:11434"
	DefaultContextFile       = "release_context.md"
	DefaultNotesFile         = "release_notes.md"
	DefaultTemplateName      = "default.md"
)

// Document placeholders
const (
	NoNotesPlaceholder       = "No adhoc notes provided."
	NoDescriptionPlaceholder = "No description provided."
	NoCommentsPlaceholder    = "No comments."
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
)

// TimestampFormat is the standard timestamp format
const TimestampFormat = time.RFC3339
