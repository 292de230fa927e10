package git

import (
	"context"
	"strings"

	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/executor"
	"github.com/doeshing/gitscribe-go/internal/ports"
)

// excludedPaths keeps lockfiles, images, bytecode and vendored trees out of the diff.
var excludedPaths = []string{
	"package-lock.json",
	"yarn.lock",
	"*.png",
	"*.jpg",
	"*.jpeg",
	"*.gif",
	"*.svg",
	"*.ico",
	"__pycache__",
	"*.pyc",
	"node_modules",
	".git",
}

// Runner executes the git binary.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (executor.Result, error)
}

// Extractor implements ports.HistoryExtractor on top of the git CLI.
type Extractor struct {
	runner Runner
}

// NewExtractor builds an extractor that shells out to git on PATH.
func NewExtractor() *Extractor {
	return &Extractor{runner: executor.NewLocalExecutor("git")}
}

// NewExtractorWithRunner is used by tests and alternative git binaries.
func NewExtractorWithRunner(r Runner) *Extractor {
	return &Extractor{runner: r}
}

// Log returns one "- <subject>" line per commit in rng, oldest first.
func (e *Extractor) Log(ctx context.Context, dir string, rng domain.CommitRange) (string, error) {
	return e.run(ctx, dir, LogArgs(rng)...)
}

// Diff returns the unified diff for rng with noisy paths excluded.
func (e *Extractor) Diff(ctx context.Context, dir string, rng domain.CommitRange) (string, error) {
	return e.run(ctx, dir, DiffArgs(rng)...)
}

// Extract runs log and diff. Both are attempted; the first failure wins.
func (e *Extractor) Extract(ctx context.Context, dir string, rng domain.CommitRange) (domain.HistoryText, error) {
	if err := rng.Validate(); err != nil {
		return domain.HistoryText{}, err
	}
	log, logErr := e.Log(ctx, dir, rng)
	diff, diffErr := e.Diff(ctx, dir, rng)
	if logErr != nil {
		return domain.HistoryText{}, logErr
	}
	if diffErr != nil {
		return domain.HistoryText{}, diffErr
	}
	return domain.HistoryText{Log: log, Diff: diff}, nil
}

// Refs lists local branches and tags.
func (e *Extractor) Refs(ctx context.Context, dir string) ([]string, error) {
	out, err := e.run(ctx, dir, "for-each-ref", "--format=%(refname:short)", "refs/heads", "refs/tags")
	if err != nil {
		return nil, err
	}
	var refs []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			refs = append(refs, line)
		}
	}
	return refs, nil
}

// LogArgs builds the git log argument list for rng.
func LogArgs(rng domain.CommitRange) []string {
	return []string{"log", "--reverse", "--pretty=format:- %s", rng.Spec()}
}

// DiffArgs builds the git diff argument list for rng.
func DiffArgs(rng domain.CommitRange) []string {
	args := make([]string, 0, 4+len(excludedPaths))
	args = append(args, "diff", rng.Spec(), "--", ".")
	for _, p := range excludedPaths {
		args = append(args, ":(exclude)"+p)
	}
	return args
}

func (e *Extractor) run(ctx context.Context, dir string, args ...string) (string, error) {
	res, err := e.runner.Run(ctx, dir, args...)
	if err != nil {
		return "", &domain.VCSCommandError{
			Args:   args,
			Stdout: res.Stdout,
			Stderr: res.Stderr,
			Err:    err,
		}
	}
	return strings.TrimSpace(res.Stdout), nil
}

var _ ports.HistoryExtractor = (*Extractor)(nil)
