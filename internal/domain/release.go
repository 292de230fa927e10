// Package domain defines the value types shared by the gitscribe pipeline.
//
// Everything here is request scoped: a CommitRange comes in, HistoryText and
// Issue records are produced once, and the assembled document is handed to the
// caller. Nothing in this package performs I/O.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// CommitRange is a pair of git revisions. Start is excluded, End is included.
type CommitRange struct {
	Start string
	End   string
}

// Spec renders the range in git's two-dot notation.
func (r CommitRange) Spec() string {
	return fmt.Sprintf("%s..%s", r.Start, r.End)
}

// Validate rejects empty revisions and revisions that git would parse as options.
func (r CommitRange) Validate() error {
	if strings.TrimSpace(r.Start) == "" || strings.TrimSpace(r.End) == "" {
		return errors.New("commit range requires both start and end revisions")
	}
	for _, rev := range []string{r.Start, r.End} {
		if strings.HasPrefix(rev, "-") {
			return fmt.Errorf("invalid revision %q", rev)
		}
	}
	return nil
}

// HistoryText is the raw git output for a range.
type HistoryText struct {
	Log  string
	Diff string
}

// CommitCount returns the number of "- " lines in the log.
func (h HistoryText) CommitCount() int {
	count := 0
	for _, line := range strings.Split(h.Log, "\n") {
		if strings.HasPrefix(line, "- ") {
			count++
		}
	}
	return count
}
