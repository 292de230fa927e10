package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/gitscribe-go/internal/app"
	"github.com/doeshing/gitscribe-go/internal/domain"
)

// NewModelsCommand lists the models installed on the inference server.
func NewModelsCommand(container *app.Container) *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models installed on the inference server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseURL == "" {
				baseURL = container.Config.Inference.ModelsURL
			}
			models, err := container.Models.Models(cmd.Context(), baseURL)
			if err != nil {
				return err
			}
			return displayModels(cmd.OutOrStdout(), models, container.Config.Inference.Model)
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "", "Inference server base URL (default from inference.models_url)")
	return cmd
}

// displayModels prints one model per line; the configured model is starred.
func displayModels(out io.Writer, models []domain.ModelInfo, selected string) error {
	if len(models) == 0 {
		fmt.Fprintln(out, MsgNoModels)
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, m := range models {
		marker := " "
		if m.Name == selected {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s %s\t%s\n", marker, m.Name, humanize.Bytes(uint64(m.Size)))
	}
	return tw.Flush()
}
