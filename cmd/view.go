package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gollate.dev/pkg/gollate/internal/domain"
	m "gollate.dev/pkg/gollate/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View previously saved collation reports",
		Long:  "View previously saved collation reports from a reports directory. Every report is verified before it is shown.",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			reportsPath := m.Path(viper.GetString(outputFlagName))
			return workflow.View(context.Background(), domain.ViewArgs{
				Reports: reportsPath,
				Detail:  viper.GetBool(detailConfigKey),
			})
		},
	}

	cmd.Flags().BoolVar(&detailFlag, detailFlagName, viper.GetBool(detailConfigKey), "show character-level differences of varying readings")
	cmd.PreRunE = bindCollationFlags

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
