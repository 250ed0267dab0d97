package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"chatwoot/kbsync/internal/config"

	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newCLIApp(config.Load).RunContext(ctx, os.Args)
	stop()
	if err != nil {
		log.Fatalf("kbsync exited with error: %v", err)
	}
}
