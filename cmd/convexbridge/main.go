package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/finleyb/convexbridge/internal/authclient"
	"github.com/finleyb/convexbridge/internal/broker"
	"github.com/finleyb/convexbridge/internal/config"
	"github.com/finleyb/convexbridge/internal/store"
)

const version = "0.1.0"

var (
	serverURL   = flag.String("server", "", "Auth server base URL (overrides BRIDGE_SERVER_URL)")
	noCache     = flag.Bool("no-cache", false, "Disable cached logins for this invocation")
	refreshUser = flag.Bool("refresh-user", false, "Re-hydrate the user after interactive sign-in")
	debug       = flag.Bool("debug", false, "Enable debug logging")
	logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	showVersion = flag.Bool("version", false, "Show version information")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: convexbridge [flags] <command>

Commands:
  login    Interactive sign-in, prints the platform token
  cached   Restore the cached session, prints the platform token
  token    Refresh the current session, prints the platform token
  whoami   Print the hydrated user as JSON
  logout   Sign out and clear the stored session

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("convexbridge version %s\n", version)
		os.Exit(0)
	}

	command := flag.Arg(0)
	if command == "" {
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigChan
		log.Debug().Str("signal", sig.String()).Msg("cancelling in-flight requests")
		cancel()
	}()

	if err := run(ctx, cfg, command); err != nil {
		log.Error().Err(err).Str("command", command).Msg("command failed")
		os.Exit(1)
	}
}

// loadConfig loads the environment configuration and applies CLI flag
// overrides before validating.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}

	applyFlagOverrides(cfg, setFlags())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// setFlags reports which flags were explicitly passed on the command line
func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

// applyFlagOverrides layers explicitly-set CLI flags over the environment
// configuration. An explicit flag always wins, even when its value equals
// the flag default.
func applyFlagOverrides(cfg *config.Config, set map[string]bool) {
	if set["server"] {
		cfg.ServerURL = *serverURL
	}
	if *noCache {
		cfg.EnableCachedLogins = false
	}
	if *debug {
		cfg.Debug = true
		if !set["log-level"] {
			cfg.LogLevel = "debug"
		}
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}
}

// setupLogging configures the global logger
func setupLogging(cfg *config.Config) {
	zerolog.SetGlobalLevel(parseLogLevel(cfg.LogLevel))

	if cfg.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Caller().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).
			With().
			Timestamp().
			Logger()
	}
}

// parseLogLevel converts a string log level to zerolog.Level
func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func run(ctx context.Context, cfg *config.Config, command string) error {
	b, err := newBroker(cfg)
	if err != nil {
		return err
	}

	switch command {
	case "login":
		cred, err := b.Login(ctx, *refreshUser)
		if err != nil {
			return err
		}
		fmt.Println(broker.ExtractIDToken(cred))
		return nil

	case "cached":
		cred, err := b.LoginFromCache(ctx)
		if err != nil {
			return err
		}
		fmt.Println(broker.ExtractIDToken(cred))
		return nil

	case "token":
		cred, err := b.GetSession(ctx)
		if err != nil {
			return err
		}
		fmt.Println(broker.ExtractIDToken(cred))
		return nil

	case "whoami":
		cred, err := b.GetSession(ctx)
		if err != nil {
			return err
		}
		if cred.User == nil {
			return fmt.Errorf("session is valid but the server returned no user")
		}
		return json.NewEncoder(os.Stdout).Encode(cred.User)

	case "logout":
		return b.Logout(ctx)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// newBroker wires the broker with the keychain token store and, when
// credentials are configured, the email sign-in delegate.
func newBroker(cfg *config.Config) (*broker.Broker, error) {
	opts := []authclient.Option{
		authclient.WithTokenStore(store.NewKeyringStore(cfg.ServerURL)),
		authclient.WithTokenListener(logListener{}),
	}

	if cfg.Email != "" {
		opts = append(opts, authclient.WithSignInDelegate(&authclient.EmailSignIn{
			Email:    cfg.Email,
			Password: cfg.Password,
		}))
	}

	return broker.New(cfg.ServerURL, cfg.EnableCachedLogins, opts...)
}

// logListener surfaces token lifecycle changes in the debug log
type logListener struct{}

func (logListener) TokenChanged(token string) {
	if token == "" {
		log.Debug().Msg("session token cleared")
		return
	}
	log.Debug().Msg("session token updated")
}
