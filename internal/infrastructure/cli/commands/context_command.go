package commands

import (
	"github.com/spf13/cobra"

	"github.com/doeshing/gitscribe-go/internal/app"
	"github.com/doeshing/gitscribe-go/internal/application/release"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/cli/helpers"
)

// NewContextCommand creates the context command. With a system prompt the
// document is prefixed for pasting into a model by hand.
func NewContextCommand(container *app.Container) *cobra.Command {
	var flags rangeFlags

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Assemble the release context document for a commit range",
		Example: `  gitscribe context --start v1.2.0 --end v1.3.0
  gitscribe context -s v1.2.0 --notes notes.md --template default.md --stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := helpers.NewRenderer(cmd.ErrOrStderr())

			prompt, err := resolveSystemPrompt(container, ui, &flags, false)
			if err != nil {
				return err
			}
			res, err := buildContext(cmd, container, ui, &flags)
			if err != nil {
				return err
			}

			document := release.PrependSystemPrompt(prompt, res.Document)
			output := flags.output
			if output == "" {
				output = container.Config.Output.ContextFile
			}
			return writeOutput(cmd.OutOrStdout(), ui, output, flags.toStdout, document)
		},
	}

	flags.register(cmd, "Output file (default from output.context_file)")
	return cmd
}
