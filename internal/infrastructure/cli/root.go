// Package cli wires the cobra command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/gitscribe-go/internal/app"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// Execute runs the command tree and releases the container afterwards, on
// success and on error alike.
func Execute(ctx context.Context, opts Options) (err error) {
	root, container := newRootCmd(ctx, opts)
	defer func() {
		if closeErr := container.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close: %w", closeErr)
		}
	}()
	return root.ExecuteContext(ctx)
}

// NewRootCmd wires the cobra root command. The container is built after flag
// parsing so --config and --verbose take effect; commands share the same
// instance.
func NewRootCmd(ctx context.Context, opts Options) *cobra.Command {
	root, _ := newRootCmd(ctx, opts)
	return root
}

func newRootCmd(ctx context.Context, opts Options) (*cobra.Command, *app.Container) {
	var (
		configPath string
		verbose    bool
	)
	container := &app.Container{}

	root := &cobra.Command{
		Use:   "gitscribe",
		Short: "Release notes from git history, linked issues and a local model",
		Long: `gitscribe assembles a release context document from a git commit range,
optional adhoc notes and linked issue-tracker tickets, and can stream that
document through a local Ollama-compatible model to write release notes.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			built, err := app.BuildContainer(cmd.Context(), app.Options{
				ConfigPath: configPath,
				Verbose:    verbose || opts.Verbose,
			})
			if err != nil {
				return err
			}
			*container = *built
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetContext(ctx)

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.gitscribe/config.yaml, or $GITSCRIBE_CONFIG)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		commands.NewContextCommand(container),
		commands.NewGenerateCommand(container),
		commands.NewRefsCommand(container),
		commands.NewModelsCommand(container),
		commands.NewTemplatesCommand(container),
		commands.NewHistoryCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewConfigCommand(container),
		commands.NewVersionCommand(),
	)
	return root, container
}
