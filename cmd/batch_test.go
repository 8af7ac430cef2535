package cmd

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gollate.dev/pkg/gollate/internal/domain"
	m "gollate.dev/pkg/gollate/internal/model"
)

func TestBatchCmd_PassesDirectoriesInOrder(t *testing.T) {
	cmd, mockWorkflow := newTestRootCmd(t, newBatchCmd())

	mockWorkflow.On("Batch", mock.Anything, mock.MatchedBy(func(args domain.BatchArgs) bool {
		return len(args.Dirs) == 3 &&
			args.Dirs[0] == m.Path("iliad") &&
			args.Dirs[1] == m.Path("beowulf") &&
			args.Dirs[2] == m.Path("hamlet") &&
			args.Threads == 4 &&
			args.Settings.Engine == "blocks" &&
			args.UseCache
	})).Return(nil)

	cmd.SetArgs([]string{"batch", "iliad", "beowulf", "hamlet", "--parallel", "4", "--engine", "blocks"})
	require.NoError(t, cmd.Execute())
}

func TestBatchCmd_RequiresDirectories(t *testing.T) {
	cmd, _ := newTestRootCmd(t, newBatchCmd())

	cmd.SetArgs([]string{"batch"})
	require.Error(t, cmd.Execute())
}
