package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zhouzirui/prompt-chat/backend/cmd/promptchat/cmds"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmds.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
