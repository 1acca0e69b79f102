package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand reports the linker-supplied build identity.
func NewVersionCommand(version, commitID, buildTime string) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "View process version information.",
		Example: "classvm version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s-%s %s\n", version, commitID, buildTime)
		},
	}
}
