package cmd

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/xuperchain/classvm/common/config"
	"github.com/xuperchain/classvm/common/log"
)

// NewDebugCommand drives calls one at a time, printing frame results and
// prompting before each one runs. The interpreter core has no per-opcode
// stepping hook exposed (its dispatch loop is a single tight function by
// design), so this steps at call granularity: each iteration prompts,
// then runs one method to completion and reports its outcome.
func NewDebugCommand(vc *config.VMConfig) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:     "debug [class files...]",
		Short:   "Step through method calls one at a time, prompting before each.",
		Example: "classvm debug --class Main --method main classes/Main.classvm",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.className == "" {
				return fmt.Errorf("--class is required")
			}
			logger := log.New("classvm-debug")
			vm, err := buildVM(vc, opts, args, logger)
			if err != nil {
				return err
			}
			thread := vm.NewThread(1, vc.StackWords)
			thread.Log = &logger

			for {
				select_ := promptui.Select{
					Label: fmt.Sprintf("about to call %s.%s%s", opts.className, opts.methodName, opts.methodSpec),
					Items: []string{"run", "quit"},
				}
				_, choice, err := select_.Run()
				if err != nil {
					return err
				}
				if choice == "quit" {
					return nil
				}

				result := thread.Run(context.Background(), opts.className, opts.methodName, opts.methodSpec, nil)
				if result.Exception != nil {
					exc := result.Exception
					fmt.Printf("uncaught %s: %s\n", exc.Class().Name, exc.Message)
					for cause := exc.Cause; cause != nil; cause = cause.Cause {
						fmt.Printf("  caused by %s: %s\n", cause.Class().Name, cause.Message)
					}
					for _, entry := range exc.Trace {
						fmt.Printf("  at %s.%s:%d\n", entry.Class, entry.Method, entry.Line)
					}
					return fmt.Errorf("call threw an uncaught exception")
				}
				fmt.Printf("result: %d\n", int64(result.Value.Num))
			}
		},
	}
	opts.addFlags(cmd)
	return cmd
}
