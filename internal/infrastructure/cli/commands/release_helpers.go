package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/gitscribe-go/internal/app"
	"github.com/doeshing/gitscribe-go/internal/application/release"
	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/gitscribe-go/internal/pkg/filesystem"
)

// rangeFlags are shared by context and generate.
type rangeFlags struct {
	start        string
	end          string
	repo         string
	notesFile    string
	systemPrompt string
	template     string
	output       string
	toStdout     bool
}

func (f *rangeFlags) register(cmd *cobra.Command, outputHelp string) {
	cmd.Flags().StringVarP(&f.start, "start", "s", "", "Start revision (excluded), e.g. v1.2.0")
	cmd.Flags().StringVarP(&f.end, "end", "e", "HEAD", "End revision (included)")
	cmd.Flags().StringVarP(&f.repo, "repo", "r", ".", "Path to the git repository")
	cmd.Flags().StringVarP(&f.notesFile, "notes", "n", "", "File with adhoc notes")
	cmd.Flags().StringVar(&f.systemPrompt, "system-prompt", "", "File with the system prompt")
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "Named template from the templates directory")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", outputHelp)
	cmd.Flags().BoolVar(&f.toStdout, "stdout", false, "Write the result to stdout instead of a file")
	_ = cmd.MarkFlagRequired("start")
}

func (f *rangeFlags) commitRange() domain.CommitRange {
	return domain.CommitRange{Start: f.start, End: f.end}
}

// readNotes loads the notes file if one was given. A missing file is reported
// and treated as no notes.
func readNotes(container *app.Container, ui *helpers.Renderer, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	notes, ok, err := filesystem.ReadOptional(path)
	if err != nil {
		return "", fmt.Errorf("read notes: %w", err)
	}
	if !ok {
		container.Logger.Warn("notes file not found", map[string]interface{}{"path": path})
		ui.Warn("notes file %s not found, continuing without notes", path)
	}
	return notes, nil
}

// resolveSystemPrompt returns the prompt from --system-prompt, --template or,
// when useDefault is set, the configured default template.
func resolveSystemPrompt(container *app.Container, ui *helpers.Renderer, f *rangeFlags, useDefault bool) (string, error) {
	if f.systemPrompt != "" && f.template != "" {
		return "", errors.New(ErrPromptSourceConflict)
	}
	if f.systemPrompt != "" {
		prompt, ok, err := filesystem.ReadOptional(f.systemPrompt)
		if err != nil {
			return "", fmt.Errorf("read system prompt: %w", err)
		}
		if !ok {
			container.Logger.Warn("system prompt file not found", map[string]interface{}{"path": f.systemPrompt})
			ui.Warn("system prompt %s not found, continuing without one", f.systemPrompt)
		}
		return prompt, nil
	}

	name := f.template
	if name == "" {
		if !useDefault {
			return "", nil
		}
		name = container.Config.Templates.Default
	}
	prompt, err := container.Templates.Load(name)
	if err != nil {
		if f.template != "" {
			return "", err
		}
		ui.Warn("default template unavailable (%v), continuing without a system prompt", err)
		return "", nil
	}
	return prompt, nil
}

// buildContext runs the history/issue/assembly pipeline for f.
func buildContext(cmd *cobra.Command, container *app.Container, ui *helpers.Renderer, f *rangeFlags) (release.ContextResult, error) {
	notes, err := readNotes(container, ui, f.notesFile)
	if err != nil {
		return release.ContextResult{}, err
	}

	spinner := helpers.NewSpinner(cmd.ErrOrStderr(), "Collecting history…")
	spinner.Start()
	res, err := container.ReleaseService.BuildContext(cmd.Context(), release.ContextRequest{
		Range:   f.commitRange(),
		Dir:     f.repo,
		Notes:   notes,
		Tracker: container.Tracker(),
	})
	spinner.Stop()
	if err != nil {
		return release.ContextResult{}, err
	}

	ui.Success("%d commits, %d of %d linked issues resolved", res.History.CommitCount(), len(res.Issues), len(res.Keys))
	return res, nil
}

// writeOutput writes content to path or to stdout and reports what happened.
func writeOutput(out io.Writer, ui *helpers.Renderer, path string, toStdout bool, content string) error {
	if toStdout {
		_, err := io.WriteString(out, content)
		return err
	}
	if err := filesystem.WriteFile(path, []byte(content), domain.OutputFilePermissions); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	ui.Success("wrote %s (%s)", abs, humanize.Bytes(uint64(len(content))))
	return nil
}
