package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const forceFlagName = "force"

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a gollate.yaml with the current collation settings",
		Long: `Write gollate.yaml in the current directory with the collation settings,
reports directory and log options currently in effect (defaults, environment
and flags). Edit it to change what collate, tokens and batch use by default.
An existing file is kept unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)
			force, _ := cmd.Flags().GetBool(forceFlagName)

			write := viper.SafeWriteConfigAs
			if force {
				write = viper.WriteConfigAs
			}

			if err := write(targetPath); err != nil {
				return fmt.Errorf("write %s: %w", targetPath, err)
			}

			cmd.Printf("Wrote %s (tokenizer %s, normalizer %s, engine %s)\n",
				targetPath,
				viper.GetString(tokenizerConfigKey),
				viper.GetString(normalizerConfigKey),
				viper.GetString(engineConfigKey),
			)

			return nil
		},
	}

	cmd.Flags().Bool(forceFlagName, false, "overwrite an existing gollate.yaml")

	return cmd
}

func init() {
	rootCmd.AddCommand(initCmd)
}
