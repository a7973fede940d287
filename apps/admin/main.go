package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/pragya-git-bug/aibackend/apps"
	"github.com/pragya-git-bug/aibackend/apps/shared"
	"github.com/pragya-git-bug/aibackend/core"
	logsvc "github.com/pragya-git-bug/aibackend/services/logger"
)

func main() {
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	if err != nil {
		stdLogger.Fatalf("loading config: %v", err)
	}
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)

	// set up DB; migrations are left to the migrate command
	stores, err := shared.OpenStores(context.Background(), conf, false)
	if err != nil {
		stdLogger.Fatalf("setting up %s database: %v", conf.Database.Engine, err)
	}

	events, closeEvents, err := shared.NewEventPublisher(conf, logger)
	if err != nil {
		_ = stores.Close()
		stdLogger.Fatalf("setting up event publisher: %v", err)
	}
	svcs := shared.NewServices(conf, logger, stores, events, shared.NewEmailService(conf, logger))

	// start CLI
	cli := commandLine{
		engine: stores.Engine,
		db:     stores.SQL,
		usrSvc: svcs.Users,
	}
	err = cli.run(os.Args)

	_ = closeEvents()
	_ = stores.Close()
	if err != nil {
		var argErr *apps.ArgumentError
		switch {
		case errors.Is(err, errHelp):
		case errors.As(err, &argErr):
			stdLogger.Printf("\n%s\n", argErr)
		default:
			stdLogger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
