package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xuperchain/classvm/common/config"
)

// NewRootCommand builds the classvm command tree: a bare root that only
// wires subcommands, matching xchain's own rootCmd.
func NewRootCommand(version, commitID, buildTime string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "classvm <command> [arguments]",
		Short:         "classvm runs and inspects class-based bytecode.",
		Long:          "classvm loads compiled class files and runs them against the embedded interpreter.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example:       "classvm run --class Main --method main --spec ([Ljava/lang/String;)V classes/Main.classvm",
	}

	vc := config.NewVMConfig()
	vc.LoadConfig()
	vc.ApplyFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewRunCommand(vc))
	rootCmd.AddCommand(NewDebugCommand(vc))
	rootCmd.AddCommand(NewServeCommand(vc))
	rootCmd.AddCommand(NewVersionCommand(version, commitID, buildTime))
	return rootCmd
}
