package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"gollate.dev/pkg/gollate/internal/domain"
)

// batchCmd represents the batch command.
var batchCmd = newBatchCmd()

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [dirs...]",
		Short: "Collate every directory as its own job",
		Long: `Collate many independent witness sets at once. Every directory is one job
and the files directly inside it are its witnesses. Jobs run concurrently
(--parallel) and their reports are shown in the order the directories were
given. Use --exclude to skip witness files by regex.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return workflow.Batch(context.Background(), domain.BatchArgs{
				JobArgs: jobArgsFromConfig(),
				Dirs:    parsePaths(args),
			})
		},
	}

	configureCollationFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(batchCmd)
}
