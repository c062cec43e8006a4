package resiliency

import (
	"context"
	"errors"
	"time"

	aulogging "github.com/StephanHCB/go-autumn-logging"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sony/gobreaker/v2"
)

type Settings = gobreaker.Settings

type CircuitBreakerOptions struct {
	Settings Settings
}

func DefaultCircuitBreakerOptions() *CircuitBreakerOptions {
	return &CircuitBreakerOptions{
		Settings: Settings{
			Name:    "jwk-fetch",
			Timeout: 30 * time.Second,
		},
	}
}

var _ jwk.Fetcher = (*CircuitBreakerFetcher)(nil)

// CircuitBreakerFetcher guards a key set fetcher. While open, Fetch fails with
// gobreaker.ErrOpenState without reaching the wrapped fetcher.
type CircuitBreakerFetcher struct {
	jwk.Fetcher
	cb *gobreaker.CircuitBreaker[jwk.Set]
}

func (f *CircuitBreakerFetcher) Fetch(ctx context.Context, u string, options ...jwk.FetchOption) (jwk.Set, error) {
	return f.cb.Execute(func() (jwk.Set, error) {
		return f.Fetcher.Fetch(ctx, u, options...)
	})
}

func (f *CircuitBreakerFetcher) State() gobreaker.State {
	return f.cb.State()
}

// NewCircuitBreakerFetcher wraps fetcher, jwk.Fetch if nil. Requests canceled by the caller
// do not count as failures.
func NewCircuitBreakerFetcher(fetcher jwk.Fetcher, opts *CircuitBreakerOptions) *CircuitBreakerFetcher {
	if opts == nil {
		opts = DefaultCircuitBreakerOptions()
	}
	if fetcher == nil {
		fetcher = jwk.FetchFunc(jwk.Fetch)
	}

	settings := opts.Settings
	if settings.IsSuccessful == nil {
		settings.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		}
	}
	onStateChange := settings.OnStateChange
	settings.OnStateChange = func(name string, from gobreaker.State, to gobreaker.State) {
		aulogging.Logger.NoCtx().Warn().Printf("circuit breaker %s changed from %s to %s", name, from, to)
		if onStateChange != nil {
			onStateChange(name, from, to)
		}
	}

	return &CircuitBreakerFetcher{
		Fetcher: fetcher,
		cb:      gobreaker.NewCircuitBreaker[jwk.Set](settings),
	}
}
