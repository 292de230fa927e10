package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/gitscribe-go/internal/app"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/cli/helpers"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(container *app.Container) *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.DoctorService == nil {
				return errors.New(ErrDoctorServiceUnavailable)
			}

			report, err := container.DoctorService.Run(cmd.Context(), repo)

			// Display report even if there were errors
			helpers.NewRenderer(cmd.OutOrStdout()).HealthReport(report)

			if err != nil {
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			if report.HasErrors() {
				return errors.New("diagnostics found problems")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", ".", "Repository to check")
	return cmd
}
