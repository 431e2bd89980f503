package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unidash/unidash/core/session"
	"github.com/unidash/unidash/core/university"
	logsvc "github.com/unidash/unidash/services/logger"
	inmemdb "github.com/unidash/unidash/storage/inmem"
)

var errBadCreds = errors.New("invalid credentials")

type fakeAuthenticator struct{}

func (fakeAuthenticator) Login(_ context.Context, email, pwd string) (session.Auth, error) {
	if email == "admin@unidash.local" && pwd == "admin123" {
		return session.Auth{
			User:        session.User{ID: "1", Name: "Admin", Email: email, Role: "admin"},
			AccessToken: "token",
		}, nil
	}
	return session.Auth{}, errBadCreds
}

func setup(t *testing.T) *commandLine {
	t.Helper()
	repo := inmemdb.NewUniversityRepository(inmemdb.OpenSeeded())
	return &commandLine{
		uniSvc: university.NewService(repo, logsvc.NewStdLogger(log.New(io.Discard, "", 0))),
		authn:  fakeAuthenticator{},
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_ping(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "ping", args: []string{"ping"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_login(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"login"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"login", "-email", "admin@unidash.local"}, wantErr: errHelp},
		{name: "bad credentials", args: []string{"login", "-email", "admin@unidash.local"}, extra: extra{pwd: "nope"}, wantErr: errBadCreds},
		{name: "login", args: []string{"login", "-email", "admin@unidash.local"}, extra: extra{pwd: "admin123"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_export(t *testing.T) {
	cli := setup(t)
	out := filepath.Join(t.TempDir(), "unis.csv")

	tests := []cliTest{
		{name: "no out file", args: []string{"export"}, wantErr: errHelp},
		{name: "bad format", args: []string{"export", "-format", "pdf", "-out", out}, wantErrStr: "export format must be csv or excel"},
		{name: "export csv", args: []string{"export", "-out", out}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil || tt.wantErrStr != "" {
				if err == nil {
					t.Fatal("cli.run() expected an error")
				}
				if tt.wantErr != nil && err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				if tt.wantErrStr != "" && err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
				}
				return
			}
			if err != nil {
				t.Fatalf("cli.run() unexpected error = %v", err)
			}

			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatalf("reading export: %v", err)
			}
			if !strings.HasPrefix(string(data), "name,short_name,sector,city,status") {
				t.Errorf("unexpected export header: %q", strings.SplitN(string(data), "\n", 2)[0])
			}
		})
	}
}
