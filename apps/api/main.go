package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	echoapi "github.com/pragya-git-bug/aibackend/apps/api/echo"
	"github.com/pragya-git-bug/aibackend/apps/shared"
	"github.com/pragya-git-bug/aibackend/core"
	logsvc "github.com/pragya-git-bug/aibackend/services/logger"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	stores, err := shared.OpenStores(context.Background(), conf, true)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up %s database: %v", conf.Database.Engine, err), err)
	}
	defer func() {
		if err = stores.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up outer services
	events, closeEvents, err := shared.NewEventPublisher(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up event publisher: %v", err), err)
	}
	defer func() {
		if err = closeEvents(); err != nil {
			logger.Error("Failed to close event publisher", err)
		}
	}()
	mailSvc := shared.NewEmailService(conf, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q (%s storage)", conf.Build, stores.Engine))
	defer logger.Info("Application stopped")

	svcs := shared.NewServices(conf, logger, stores, events, mailSvc)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(stores.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.Options{
			Conf:          conf,
			Logger:        logger,
			Translator:    svcs.Translator,
			UserSvc:       svcs.Users,
			AssignmentSvc: svcs.Assignments,
			QuizSvc:       svcs.Quizzes,
			ReportSvc:     svcs.Reports,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
