// stubauthd runs the stub identity provider used for local development
// of clients built on the credential broker.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/finleyb/convexbridge/internal/stubserver"
)

var (
	addr       = flag.String("addr", ":8787", "Listen address")
	signingKey = flag.String("signing-key", "", "HS256 key for platform tokens (default: STUB_SIGNING_KEY)")
	rotate     = flag.Bool("rotate", false, "Rotate session tokens on every validation")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	key := *signingKey
	if key == "" {
		key = os.Getenv("STUB_SIGNING_KEY")
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "a signing key is required (--signing-key or STUB_SIGNING_KEY)")
		os.Exit(1)
	}

	var opts []stubserver.Option
	if *rotate {
		opts = append(opts, stubserver.WithRotateOnValidate())
	}

	stub, err := stubserver.New([]byte(key), opts...)
	if err != nil {
		log.Error().Err(err).Msg("failed to create stub server")
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           stub.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	log.Info().Str("addr", *addr).Bool("rotate", *rotate).Msg("stub auth server listening")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}

	log.Info().Msg("stub auth server stopped")
}
