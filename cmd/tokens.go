package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gollate.dev/pkg/gollate/internal/domain"
	m "gollate.dev/pkg/gollate/internal/model"
)

// tokensCmd represents the tokens command.
var tokensCmd = newTokensCmd()

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [files...]",
		Short: "Show the tokens of each witness",
		Long:  tokensLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return workflow.Tokens(context.Background(), domain.TokensArgs{
				Settings: m.Settings{
					Tokenizer:  viper.GetString(tokenizerConfigKey),
					Normalizer: viper.GetString(normalizerConfigKey),
				},
				Inputs:  args,
				Exclude: viper.GetStringSlice(excludeConfigKey),
				Threads: viper.GetInt(runParallelConfigKey),
			})
		},
	}

	configureTokenFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}
