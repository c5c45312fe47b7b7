// taskflow serves the task management API and provides admin commands
// for bootstrapping accounts and inspecting dashboards.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/nhle/taskflow/internal/credential"
	"github.com/nhle/taskflow/internal/logging"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/store"
)

const usage = `Usage: taskflow <command> [flags]

Commands:
  serve       run the HTTP API
  useradd     create a user account
  dashboard   print a task dashboard
  init        write a default config file
  secret      store a secret in the system keyring

Run "taskflow <command> --help" for the flags of a command.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("no command given")
	}

	switch args[0] {
	case "serve":
		return runServe(args[1:])
	case "useradd":
		return runUserAdd(args[1:])
	case "dashboard":
		return runDashboard(args[1:])
	case "init":
		return runInit(args[1:])
	case "secret":
		return runSecret(args[1:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// newFlagSet returns a flag set carrying the flags every command shares.
func newFlagSet(name string) (*pflag.FlagSet, *string) {
	fs := pflag.NewFlagSet("taskflow "+name, pflag.ContinueOnError)
	configPath := fs.String("config", model.DefaultConfigPath(), "path to the config file")
	fs.String("driver", "", "store driver: sqlite, postgres or mongo")
	fs.String("dsn", "", "store connection string or sqlite file path")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	return fs, configPath
}

// env is what every command needs after flag parsing.
type env struct {
	cfg   *model.AppConfig
	log   zerolog.Logger
	store store.Store
}

// setup loads configuration, builds the logger, resolves keyring
// secrets, and opens the store.
func setup(ctx context.Context, fs *pflag.FlagSet, configPath string) (*env, error) {
	cfg, err := model.LoadConfig(configPath, fs)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	if cfg.Auth.UseKeyring {
		vault, err := credential.Open()
		if err != nil {
			return nil, err
		}
		if err := vault.Resolve(&cfg.Auth); err != nil {
			return nil, err
		}
	}

	s, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("driver", cfg.Store.Driver).Msg("store opened")
	return &env{cfg: cfg, log: log, store: s}, nil
}
