package main

import (
	"context"
	"os"

	"github.com/marcodd23/go-txscope/cmd/txscope/commands"
	"github.com/marcodd23/go-txscope/pkg/logx"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	ctx := context.Background()

	if err := commands.Execute(ctx, Version, Commit, BuildDate); err != nil {
		logx.GetLogger().LogError(ctx, "Command execution failed", err)
		os.Exit(1)
	}
}
