package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Roshick/go-autumn-slog/pkg/logging"
	"github.com/Roshick/go-autumn-validation/auth"
	"github.com/Roshick/go-autumn-validation/config"
	"github.com/Roshick/go-autumn-validation/resiliency"
	aulogging "github.com/StephanHCB/go-autumn-logging"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		addr       string
		envPrefix  string
		dotenvFile string
		signingKey string
		keySetURL  string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:          "example-server",
		Short:        "Serve a small user API whose handlers only see validated input",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := setupLogging(os.Stderr, verbose, false)

			var dotenvFiles []string
			if dotenvFile != "" {
				dotenvFiles = append(dotenvFiles, dotenvFile)
			}
			settings, err := config.Load(envPrefix, dotenvFiles...)
			if err != nil {
				logger.Error("failed to load settings", tint.Err(err))
				return err
			}
			tokenKeys, err := tokenKeyOption(signingKey, keySetURL)
			if err != nil {
				logger.Error("invalid flags", tint.Err(err))
				return err
			}

			router, err := newRouter(logger, settings, tokenKeys)
			if err != nil {
				logger.Error("failed to build router", tint.Err(err))
				return err
			}
			return serve(cmd.Context(), logger, addr, router)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")
	cmd.Flags().StringVar(&envPrefix, "env-prefix", config.DefaultPrefix, "Prefix of environment variables holding extractor settings")
	cmd.Flags().StringVar(&dotenvFile, "env-file", "", "Optional dotenv file loaded before reading the environment")
	cmd.Flags().StringVar(&signingKey, "signing-key", os.Getenv("EXAMPLE_SIGNING_KEY"), "HMAC key used to verify bearer tokens")
	cmd.Flags().StringVar(&keySetURL, "jwks-url", "", "URL of a JWK set used to verify bearer tokens instead of --signing-key")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log rejected requests")
	return cmd
}

// tokenKeyOption verifies bearer tokens against the remote key set when keySetURL is set,
// otherwise against the HMAC signing key.
func tokenKeyOption(signingKey string, keySetURL string) (jwt.ParseOption, error) {
	if keySetURL != "" {
		return auth.WithRemoteKeySet(keySetURL, resiliency.NewCircuitBreakerFetcher(nil, nil)), nil
	}
	if signingKey == "" {
		return nil, errors.New("either --signing-key or --jwks-url must be set")
	}
	return jwt.WithKey(jwa.HS256(), []byte(signingKey)), nil
}

// setupLogging installs a tint logger as slog default and as the go-autumn-logging backend.
func setupLogging(w io.Writer, verbose bool, noColor bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(w, &tint.Options{Level: level, TimeFormat: time.Kitchen, NoColor: noColor}))
	slog.SetDefault(logger)
	aulogging.Logger = logging.New().WithLogger(logger)
	return logger
}

func serve(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", tint.Err(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
