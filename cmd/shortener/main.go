package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/danilovkiri/dk_go_pastebin/internal/app"
	"github.com/danilovkiri/dk_go_pastebin/internal/config"
	"github.com/danilovkiri/dk_go_pastebin/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func printBuildMetadata() {
	for _, p := range []struct{ name, value string }{
		{"Build version", buildVersion},
		{"Build date", buildDate},
		{"Build commit", buildCommit},
	} {
		if p.value == "" {
			p.value = "N/A"
		}
		fmt.Printf("%s: %s\n", p.name, p.value)
	}
}

func main() {
	printBuildMetadata()
	// get configuration
	cfg := config.NewDefaultConfiguration()
	if err := cfg.Parse(); err != nil {
		log.Fatal(err)
	}
	appLog, err := logger.New(os.Stdout, cfg.LogConfig.Level, cfg.LogConfig.Format)
	if err != nil {
		log.Fatal(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	// storage goroutines close database connections once storageCtx is done
	storageCtx, storageCancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	application, err := app.New(storageCtx, wg, cfg, appLog)
	if err != nil {
		storageCancel()
		wg.Wait()
		log.Fatal(err)
	}
	runErr := application.Run(ctx)
	storageCancel()
	// wait for goroutines in InitStorage to finish before exiting
	wg.Wait()
	if runErr != nil {
		log.Fatal(runErr)
	}
	appLog.Info("server shutdown succeeded")
}
