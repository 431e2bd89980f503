package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	AppName  string
	Env      string
	Build    string

	Server struct {
		Addr            string
		ShutdownTimeout time.Duration
	}

	// Upstream is the remote universities API this dashboard talks to.
	Upstream struct {
		BaseURL string
		Timeout time.Duration
	}

	// Auth is the fixed admin credential pair used for automatic login.
	Auth struct {
		Email    string
		Password string
	}

	// Repository selects the catalog backing store: "remote" or "inmem".
	// The choice is made once at startup and never switched mid-session.
	Repository string

	AdminEmail          string
	DefaultFromEmailStr string
	RollbarToken        string
	SendgridApiKey      string
}

// NewConfig loads the app configuration from defaults, an optional
// config/.env.<env> file and ENV-prefixed environment variables.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Unidash")
	v.SetDefault("build", "dev")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("upstreamBaseUrl", "http://localhost:5000/api")
	v.SetDefault("upstreamTimeout", 30*time.Second)
	v.SetDefault("authEmail", "admin@unidash.local")
	v.SetDefault("authPassword", "admin123")
	v.SetDefault("repository", "remote")
	v.SetDefault("adminEmail", "admin@unidash.local")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:               v.GetBool("debug"),
		TestMode:            v.GetBool("testMode"),
		AppName:             v.GetString("appName"),
		Env:                 env,
		Build:               v.GetString("build"),
		Repository:          v.GetString("repository"),
		AdminEmail:          v.GetString("adminEmail"),
		DefaultFromEmailStr: v.GetString("defaultFromEmail"),
		RollbarToken:        v.GetString("rollbarToken"),
		SendgridApiKey:      v.GetString("sendgridApiKey"),
	}
	conf.Server.Addr = v.GetString("serverAddr")
	conf.Server.ShutdownTimeout = v.GetDuration("serverShutdownTimeout")
	conf.Upstream.BaseURL = strings.TrimRight(v.GetString("upstreamBaseUrl"), "/")
	conf.Upstream.Timeout = v.GetDuration("upstreamTimeout")
	conf.Auth.Email = v.GetString("authEmail")
	conf.Auth.Password = v.GetString("authPassword")
	return conf
}

func (conf *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: conf.AppName, Address: conf.DefaultFromEmailStr}
}

// Getwd walks up from the working directory until it finds the project root.
// go-test changes the working directory to the test package being run during tests...
// see: https://stackoverflow.com/questions/23847003/golang-tests-and-working-directory
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
