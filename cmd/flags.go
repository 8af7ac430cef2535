package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gollate.dev/pkg/gollate/internal/domain"
	m "gollate.dev/pkg/gollate/internal/model"
)

var (
	segmentationFlag bool
	tokenizerFlag    string
	normalizerFlag   string
	engineFlag       string
	detailFlag       bool
	parallelFlag     int
)

// collationBindings maps the collation flags to their config keys.
var collationBindings = map[string]string{
	segmentationFlagName: segmentationConfigKey,
	tokenizerFlagName:    tokenizerConfigKey,
	normalizerFlagName:   normalizerConfigKey,
	engineFlagName:       engineConfigKey,
	detailFlagName:       detailConfigKey,
	runParallelFlagName:  runParallelConfigKey,
}

func configureCollationFlags(cmd *cobra.Command) {
	configureTokenFlags(cmd)

	cmd.Flags().BoolVar(&segmentationFlag, segmentationFlagName, viper.GetBool(segmentationConfigKey), "merge neighbouring columns with the same variation status")
	cmd.Flags().StringVar(&engineFlag, engineFlagName, viper.GetString(engineConfigKey), "alignment engine: dp or blocks")
	cmd.Flags().BoolVar(&detailFlag, detailFlagName, viper.GetBool(detailConfigKey), "show character-level differences of varying readings")

	cmd.PreRunE = bindCollationFlags
}

func configureTokenFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&tokenizerFlag, tokenizerFlagName, viper.GetString(tokenizerConfigKey), "tokenizer rule: default, attached or whitespace")
	cmd.Flags().StringVar(&normalizerFlag, normalizerFlagName, viper.GetString(normalizerConfigKey), "normalizer: default, casefold, punctuation or unicode")
	cmd.Flags().IntVarP(&parallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of parallel workers")

	cmd.PreRunE = bindCollationFlags
}

// bindCollationFlags binds the flags of the command about to run. Several
// commands share these config keys and viper follows only the last bound flag.
func bindCollationFlags(cmd *cobra.Command, _ []string) error {
	for name, key := range collationBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}

		if err := viper.BindPFlag(key, flag); err != nil {
			return err
		}
	}

	return nil
}

func settingsFromConfig() m.Settings {
	return m.Settings{
		Tokenizer:    viper.GetString(tokenizerConfigKey),
		Normalizer:   viper.GetString(normalizerConfigKey),
		Engine:       viper.GetString(engineConfigKey),
		Segmentation: viper.GetBool(segmentationConfigKey),
	}
}

func jobArgsFromConfig() domain.JobArgs {
	return domain.JobArgs{
		Settings: settingsFromConfig(),
		Reports:  m.Path(viper.GetString(outputFlagName)),
		Exclude:  viper.GetStringSlice(excludeConfigKey),
		UseCache: !viper.GetBool(noCacheFlagName),
		Threads:  viper.GetInt(runParallelConfigKey),
		Detail:   viper.GetBool(detailConfigKey),
	}
}
