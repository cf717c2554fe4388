package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"memtap/infrastructure/settings"
	"memtap/presentation"
)

const (
	PackageName   = "memtap"
	InspectMode   = "inspect"
	InspectModeSh = "i"
)

func main() {
	appCtx, appCtxCancel := context.WithCancel(context.Background())
	defer appCtxCancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		<-sigChan
		fmt.Println("\ninterrupt received, shutting down...")
		appCtxCancel()
	}()

	args := os.Args[1:]
	if len(args) > 0 && (args[0] == InspectMode || args[0] == InspectModeSh) {
		addr := ""
		if len(args) > 1 {
			addr = args[1]
		}
		if err := presentation.StartInspector(addr); err != nil {
			log.Fatalf("inspector failed: %v", err)
		}
		return
	}

	conf, err := settings.FromArgs(args)
	if err != nil {
		fmt.Printf("%v\n", err)
		printUsage()
		os.Exit(1)
	}

	if err := presentation.StartServer(appCtx, conf); err != nil {
		log.Fatalf("agent failed: %v", err)
	}
}

func printUsage() {
	fmt.Printf(`Usage:
  %s [bind-addr] [tcp|ws]      serve (default %s)
  %s %s [addr]            interactive process inspector
`, PackageName, settings.DefaultListenAddr, PackageName, InspectMode)
}
