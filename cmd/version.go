package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

// buildVersion describes the running binary; ok is false when the binary
// carries no module information.
func buildVersion() (module, version, goVersion string, ok bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", "", "", false
	}

	version = info.Main.Version
	if version == "" {
		version = "(devel)"
	}

	return info.Main.Path, version, info.GoVersion, true
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gollate release and Go toolchain",
		Long:  "Print the gollate release this binary was built from, its module path and the Go toolchain that compiled it.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			module, version, goVersion, ok := buildVersion()
			if !ok {
				cmd.Println("gollate (unknown build)")
				return
			}

			cmd.Printf("gollate %s\n", version)

			if module != "" {
				cmd.Printf("module  %s\n", module)
			}

			cmd.Printf("go      %s\n", goVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
