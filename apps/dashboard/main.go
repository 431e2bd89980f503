package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	echoapi "github.com/unidash/unidash/apps/dashboard/echo"
	"github.com/unidash/unidash/core"
	"github.com/unidash/unidash/core/mcq"
	"github.com/unidash/unidash/core/session"
	"github.com/unidash/unidash/core/university"
	emailsvc "github.com/unidash/unidash/services/email"
	logsvc "github.com/unidash/unidash/services/logger"
	inmemdb "github.com/unidash/unidash/storage/inmem"
	remoterepos "github.com/unidash/unidash/storage/remote"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	std := log.New(os.Stdout, "DASHBOARD : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug || conf.TestMode {
		logger = logsvc.NewStdLogger(std)
	} else {
		rollbar := logsvc.NewRollbarLogger(std, conf)
		rollbar.Enable(true)
		logger = rollbar
	}

	// set up the catalog repository
	var repo university.Repository
	switch conf.Repository {
	case "inmem":
		repo = inmemdb.NewUniversityRepository(inmemdb.OpenSeeded())
	default:
		authn := remoterepos.NewAuthenticator(conf)
		sess := session.NewSession(authn, conf, logger)
		repo = remoterepos.NewUniversityRepository(remoterepos.NewClient(conf, sess, logger))
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	uniSvc := university.NewService(repo, logger)

	bank := mcq.NewBank()
	mcq.Seed(bank)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(
		&echoapi.Options{
			Addr:    conf.Server.Addr,
			Conf:    conf,
			Logger:  logger,
			UniSvc:  uniSvc,
			Bank:    bank,
			MailSvc: mailSvc,
		},
	)

	serverErrs := make(chan error, 1)
	go func() {
		serverErrs <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrs:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
