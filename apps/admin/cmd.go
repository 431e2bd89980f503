package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/unidash/unidash/core/session"
	"github.com/unidash/unidash/core/university"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	uniSvc *university.Service
	authn  session.Authenticator
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  ping                           - check that the catalog upstream answers")
	fmt.Println("  login -email EMAIL             - log in as an admin; the password will be prompted")
	fmt.Println("  export -format csv|excel -out FILE - download the full catalog to FILE")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginEmail := loginCmd.String("email", "", "The admin's email. The password will be prompted next.")

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportFormat := exportCmd.String("format", university.ExportCSV, "Export format: csv or excel.")
	exportOut := exportCmd.String("out", "", "Destination file.")

	switch args[1] {
	case "ping":
		return cli.ping()
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(*loginEmail, string(pwd))
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportOut == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.export(*exportFormat, *exportOut)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) ping() error {
	page, err := cli.uniSvc.List(context.Background(), university.ListQuery{Page: 1, Limit: university.DefaultPageSize})
	if err != nil {
		return err
	}
	fmt.Printf("upstream OK: %d universities\n", page.Pagination.Total)
	return nil
}

func (cli *commandLine) login(email, pwd string) error {
	auth, err := cli.authn.Login(context.Background(), email, pwd)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", auth.User.Name, auth.User.Role)
	fmt.Println(auth.AccessToken)
	return nil
}
