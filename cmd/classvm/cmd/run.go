package cmd

import (
	"context"
	"fmt"
	"io/ioutil"

	"github.com/spf13/cobra"

	"github.com/xuperchain/classvm/classloader"
	"github.com/xuperchain/classvm/common/config"
	"github.com/xuperchain/classvm/common/log"
	"github.com/xuperchain/classvm/engine"
)

// runOptions holds the flags shared by run and debug: which method to
// call and which serialized class files to load first.
type runOptions struct {
	className  string
	methodName string
	methodSpec string
	classFiles []string
}

func (o *runOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.className, "class", "", "fully-qualified name of the class to run")
	cmd.Flags().StringVar(&o.methodName, "method", "main", "method name to invoke")
	cmd.Flags().StringVar(&o.methodSpec, "spec", "([Ljava/lang/String;)V", "method descriptor to invoke")
	cmd.Flags().StringArrayVar(&o.classFiles, "load", nil, "path to a serialized class file, may be repeated")
}

// buildVM wires a fresh engine.VM around a classloader.Loader preloaded
// with opts.classFiles plus the positional class-file arguments, the way
// the run/debug subcommands both need to.
func buildVM(vc *config.VMConfig, opts *runOptions, args []string, logger log.Logger) (*engine.VM, error) {
	loader := classloader.NewLoader()
	for _, path := range append(append([]string{}, opts.classFiles...), args...) {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read class file %s: %w", path, err)
		}
		if _, err := loader.Register(data); err != nil {
			return nil, fmt.Errorf("register class file %s: %w", path, err)
		}
	}

	return &engine.VM{
		Loader:    loader,
		Heap:      classloader.NewSimpleHeap(),
		Monitor:   classloader.NewSimpleMonitor(),
		Safepoint: classloader.SimpleSafepoint{},
		WeakRefs:  classloader.NewSimpleWeakRefs(),
		Builtins:  classloader.NewBuiltins(logger),
		Bridge:    classloader.SimpleBridge{},
	}, nil
}

// NewRunCommand loads the given class files and invokes one method to
// completion, printing its result or uncaught exception.
func NewRunCommand(vc *config.VMConfig) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:     "run [class files...]",
		Short:   "Load class files and run one method to completion.",
		Example: "classvm run --class Main --method main classes/Main.classvm",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.className == "" {
				return fmt.Errorf("--class is required")
			}
			logger := log.New("classvm")
			vm, err := buildVM(vc, opts, args, logger)
			if err != nil {
				return err
			}
			thread := vm.NewThread(1, vc.StackWords)
			thread.Log = &logger

			result := thread.Run(context.Background(), opts.className, opts.methodName, opts.methodSpec, nil)
			if result.Exception != nil {
				fmt.Printf("uncaught %s: %s\n", result.Exception.Class().Name, result.Exception.Message)
				return fmt.Errorf("run failed with uncaught exception")
			}
			fmt.Printf("result: %d\n", int64(result.Value.Num))
			return nil
		},
	}
	opts.addFlags(cmd)
	return cmd
}
