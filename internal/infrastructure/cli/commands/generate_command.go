package commands

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/gitscribe-go/internal/app"
	"github.com/doeshing/gitscribe-go/internal/application/release"
	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/cli/helpers"
)

// NewGenerateCommand creates the generate command: build the context, run it
// through the model and save the release notes.
func NewGenerateCommand(container *app.Container) *cobra.Command {
	var (
		flags       rangeFlags
		model       string
		endpoint    string
		noStream    bool
		contextFile string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate release notes for a commit range with the local model",
		Example: `  gitscribe generate --start v1.2.0 --model llama3:8b
  gitscribe generate -s v1.2.0 -e v1.3.0 --template customer.md --no-stream`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := container.Config
			ui := helpers.NewRenderer(cmd.ErrOrStderr())

			if model == "" {
				model = cfg.Inference.Model
			}
			if endpoint == "" {
				endpoint = cfg.Inference.Endpoint
			}

			system, err := resolveSystemPrompt(container, ui, &flags, true)
			if err != nil {
				return err
			}
			res, err := buildContext(cmd, container, ui, &flags)
			if err != nil {
				return err
			}
			if contextFile != "" {
				if err := writeOutput(cmd.OutOrStdout(), ui, contextFile, false, res.Document); err != nil {
					return err
				}
			}

			req := release.NotesRequest{
				Model:    model,
				Endpoint: endpoint,
				Document: res.Document,
				System:   system,
			}

			spinner := helpers.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Waiting for %s…", model))
			var stream *helpers.StreamWriter
			if !noStream {
				stream = helpers.NewStreamWriter(cmd.OutOrStdout(), spinner.Stop)
				req.OnToken = stream.WriteChunk
			}

			spinner.Start()
			notes, err := container.ReleaseService.GenerateNotes(cmd.Context(), req)
			spinner.Stop()
			if stream != nil {
				stream.Done()
			}
			if err != nil {
				received := len(notes)
				if stream != nil {
					received = stream.Written()
				}
				if received > 0 {
					ui.Warn("inference stopped after %s", humanize.Bytes(uint64(received)))
				}
				return err
			}

			output := flags.output
			if output == "" {
				output = cfg.Output.NotesFile
			}
			// streamed tokens already reached stdout
			if !(flags.toStdout && stream != nil) {
				if err := writeOutput(cmd.OutOrStdout(), ui, output, flags.toStdout, notes); err != nil {
					return err
				}
			}

			recordGeneration(container, ui, domain.HistoryRecord{
				Repo:       absPath(flags.repo),
				Start:      flags.start,
				End:        flags.end,
				Model:      model,
				OutputPath: outputPath(output, flags.toStdout),
				Bytes:      len(notes),
				Streamed:   stream != nil,
				Issues:     res.Keys,
				Output:     notes,
			})
			return nil
		},
	}

	flags.register(cmd, "Output file (default from output.notes_file)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model name (default from inference.model)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Generate endpoint URL (default from inference.endpoint)")
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "Wait for the full response instead of streaming tokens")
	cmd.Flags().StringVar(&contextFile, "save-context", "", "Also write the assembled context to this file")
	return cmd
}

func recordGeneration(container *app.Container, ui *helpers.Renderer, rec domain.HistoryRecord) {
	if !container.Config.History.Enabled || container.HistoryStore == nil {
		return
	}
	saved, err := container.HistoryStore.Save(rec)
	if err != nil {
		container.Logger.Warn("could not record history", map[string]interface{}{"error": err.Error()})
		return
	}
	ui.Dim("history id %s", saved.ID)
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func outputPath(path string, toStdout bool) string {
	if toStdout {
		return "-"
	}
	return absPath(path)
}
