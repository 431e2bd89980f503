package main

import (
	"log"
	"os"

	"github.com/unidash/unidash/core"
	"github.com/unidash/unidash/core/session"
	"github.com/unidash/unidash/core/university"
	logsvc "github.com/unidash/unidash/services/logger"
	inmemdb "github.com/unidash/unidash/storage/inmem"
	remoterepos "github.com/unidash/unidash/storage/remote"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	coreLogger := logsvc.NewStdLogger(logger)

	authn := remoterepos.NewAuthenticator(conf)

	var repo university.Repository
	switch conf.Repository {
	case "inmem":
		repo = inmemdb.NewUniversityRepository(inmemdb.OpenSeeded())
	default:
		sess := session.NewSession(authn, conf, coreLogger)
		repo = remoterepos.NewUniversityRepository(remoterepos.NewClient(conf, sess, coreLogger))
	}

	// start CLI
	cli := commandLine{
		uniSvc: university.NewService(repo, coreLogger),
		authn:  authn,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
