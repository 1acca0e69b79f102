package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xuperchain/classvm/common/config"
	"github.com/xuperchain/classvm/common/log"
	"github.com/xuperchain/classvm/server"
)

// NewServeCommand starts the grpc embedding-API front-end.
func NewServeCommand(vc *config.VMConfig) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:     "serve [class files...]",
		Short:   "Serve the embedding API over grpc.",
		Example: "classvm serve --load classes/Main.classvm",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := log.OpenLog(&vc.Log)
			if err != nil {
				fmt.Println("continuing with degraded logging:", err)
			}
			vm, err := buildVM(vc, opts, args, logger)
			if err != nil {
				return err
			}
			srv := server.NewServer(vm, vc.StackWords, logger)
			return server.Listen(context.Background(), srv, &vc.RPC)
		},
	}
	opts.addFlags(cmd)
	return cmd
}
