package assets

import (
	_ "embed"
)

// DefaultTemplate is the release-notes system prompt seeded into the
// templates directory as default.md on first use.
//
//go:embed defaults/templates/default.md
var DefaultTemplate string
