// Package config loads settings for the server and gateway binaries.
//
// Values are resolved in order: an optional .env file in the working
// directory, SHAREIT_* environment variables (with defaults), then
// command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Server holds settings for the REST server.
type Server struct {
	DBPath  string `env:"SHAREIT_DB,default=shareit.sqlite3"`
	Addr    string `env:"SHAREIT_ADDR,default=:9090"`
	Env     string `env:"SHAREIT_ENV,default=development"`
	LogPath string `env:"SHAREIT_LOG"`
}

// Gateway holds settings for the validating gateway.
type Gateway struct {
	Addr      string        `env:"SHAREIT_GATEWAY_ADDR,default=:8080"`
	ServerURL string        `env:"SHAREIT_SERVER_URL,default=http://localhost:9090"`
	Timeout   time.Duration `env:"SHAREIT_GATEWAY_TIMEOUT,default=10s"`
	Env       string        `env:"SHAREIT_ENV,default=development"`
	LogPath   string        `env:"SHAREIT_LOG"`
}

// DotenvPath is the file read before the environment is decoded. A missing
// file is not an error.
var DotenvPath = ".env"

// LoadServer resolves server settings. It returns flag.ErrHelp if -h was
// given; usage has then already been written to out.
func LoadServer(args []string, out io.Writer) (*Server, error) {
	cfg := &Server{}
	if err := loadEnv(cfg); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("shareit-server", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fs.StringVar(&cfg.Env, "env", cfg.Env, "")
	fs.StringVar(&cfg.Env, "e", cfg.Env, "")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.Usage = func() {
		fmt.Fprint(out, `Usage: shareit-server [flags]

Flags:
  -d, -db <path>          SQLite database path (env SHAREIT_DB, default: shareit.sqlite3)
  -a, -addr <host:port>   listen address (env SHAREIT_ADDR, default: :9090)
  -e, -env <name>         development or production (env SHAREIT_ENV)
  -l, -log <path>         log file path (env SHAREIT_LOG, default: stdout/stderr only)
  -h, -help               show this help and exit
`)
	}

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadGateway resolves gateway settings. It returns flag.ErrHelp if -h was
// given; usage has then already been written to out.
func LoadGateway(args []string, out io.Writer) (*Gateway, error) {
	cfg := &Gateway{}
	if err := loadEnv(cfg); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("shareit-gateway", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "")
	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "")
	fs.DurationVar(&cfg.Timeout, "t", cfg.Timeout, "")
	fs.StringVar(&cfg.Env, "env", cfg.Env, "")
	fs.StringVar(&cfg.Env, "e", cfg.Env, "")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.Usage = func() {
		fmt.Fprint(out, `Usage: shareit-gateway [flags]

Flags:
  -a, -addr <host:port>   listen address (env SHAREIT_GATEWAY_ADDR, default: :8080)
  -s, -server <url>       server base URL (env SHAREIT_SERVER_URL, default: http://localhost:9090)
  -t, -timeout <dur>      upstream request timeout (env SHAREIT_GATEWAY_TIMEOUT, default: 10s)
  -e, -env <name>         development or production (env SHAREIT_ENV)
  -l, -log <path>         log file path (env SHAREIT_LOG, default: stdout/stderr only)
  -h, -help               show this help and exit
`)
	}

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	return cfg, nil
}

func loadEnv(target any) error {
	if err := godotenv.Load(DotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", DotenvPath, err)
	}
	if err := envdecode.Decode(target); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("decoding environment: %w", err)
	}
	return nil
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return nil
}
