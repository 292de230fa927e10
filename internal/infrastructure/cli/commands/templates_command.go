package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/gitscribe-go/internal/app"
)

// NewTemplatesCommand creates the templates command with all subcommands
func NewTemplatesCommand(container *app.Container) *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect system prompt templates",
	}

	templatesCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List available templates",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				names, err := container.Templates.List()
				if err != nil {
					return fmt.Errorf("list templates: %w", err)
				}
				if len(names) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), MsgNoTemplates)
					return nil
				}
				for _, name := range names {
					marker := " "
					if name == container.Config.Templates.Default {
						marker = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "Print a template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				content, err := container.Templates.Load(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the templates directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), container.Templates.Dir())
				return nil
			},
		},
	)

	return templatesCmd
}
