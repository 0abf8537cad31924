// autoclip: rewrites clipboard text through plugins.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd returns the run command with every sub-command attached.
// SilenceUsage on the root covers the sub-commands too.
func newRootCmd() *cobra.Command {
	root := newRunCmd()
	root.AddCommand(
		newSingleCmd(),
		newInstallCmd(),
		newListCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("autoclip %s\n", Version)
		},
	}
}
