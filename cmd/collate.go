package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"gollate.dev/pkg/gollate/internal/domain"
)

// collateCmd represents the collate command.
var collateCmd = newCollateCmd()

func newCollateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collate [files...]",
		Short: "Collate witnesses into an alignment table",
		Long:  collateLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString(nameFlagName)

			return workflow.Collate(context.Background(), domain.CollateArgs{
				JobArgs: jobArgsFromConfig(),
				Name:    name,
				Inputs:  args,
			})
		},
	}

	configureCollationFlags(cmd)
	cmd.Flags().String(nameFlagName, "", "report name (defaults to the witness ids)")

	return cmd
}

func init() {
	rootCmd.AddCommand(collateCmd)
}

