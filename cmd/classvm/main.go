package main

import (
	"log"

	"github.com/xuperchain/classvm/cmd/classvm/cmd"
)

var (
	Version   = ""
	BuildTime = ""
	CommitID  = ""
)

func main() {
	rootCmd := cmd.NewRootCommand(Version, CommitID, BuildTime)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("classvm command failed: %v", err)
	}
}
