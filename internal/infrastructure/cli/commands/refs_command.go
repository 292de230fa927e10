package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/gitscribe-go/internal/app"
)

// NewRefsCommand lists branches and tags usable as range endpoints.
func NewRefsCommand(container *app.Container) *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "refs",
		Short: "List branches and tags of a repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := container.Extractor.Refs(cmd.Context(), repo)
			if err != nil {
				return err
			}
			for _, ref := range refs {
				fmt.Fprintln(cmd.OutOrStdout(), ref)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", ".", "Path to the git repository")
	return cmd
}
