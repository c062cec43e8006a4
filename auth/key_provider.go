package auth

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// WithRemoteKeySet verifies tokens against the key set served at keySetURL. Only that URL may be fetched.
func WithRemoteKeySet(keySetURL string, fetcher jwk.Fetcher, options ...jwk.FetchOption) jwt.ParseOption {
	return jwt.WithKeyProvider(NewRemoteKeySetProvider(keySetURL, fetcher, options...))
}

func NewRemoteKeySetProvider(keySetURL string, fetcher jwk.Fetcher, options ...jwk.FetchOption) *RemoteKeySetProvider {
	if fetcher == nil {
		fetcher = jwk.FetchFunc(jwk.Fetch)
	}

	whitelist := jwk.NewMapWhitelist()
	whitelist.Add(keySetURL)

	return &RemoteKeySetProvider{
		keySetURL: keySetURL,
		fetcher:   fetcher,
		options:   append(append([]jwk.FetchOption(nil), options...), jwk.WithFetchWhitelist(whitelist)),
	}
}

type RemoteKeySetProvider struct {
	keySetURL string
	fetcher   jwk.Fetcher
	options   []jwk.FetchOption
}

// FetchKeys offers the key matching the "kid" header of the signature, restricted to the header's algorithm.
func (p *RemoteKeySetProvider) FetchKeys(ctx context.Context, sink jws.KeySink, sig *jws.Signature, _ *jws.Message) error {
	kid, ok := sig.ProtectedHeaders().KeyID()
	if !ok {
		return fmt.Errorf(`remote key set %q requires a "kid" in the protected header`, p.keySetURL)
	}
	hdrAlg, ok := sig.ProtectedHeaders().Algorithm()
	if !ok {
		return nil
	}

	set, err := p.fetcher.Fetch(ctx, p.keySetURL, p.options...)
	if err != nil {
		return fmt.Errorf("failed to fetch key set %q: %w", p.keySetURL, err)
	}
	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil
	}

	algs, err := jws.AlgorithmsForKey(key)
	if err != nil {
		return fmt.Errorf("failed to determine algorithms for key %q: %w", kid, err)
	}
	for _, alg := range algs {
		if alg == hdrAlg {
			sink.Key(alg, key)
			return nil
		}
	}
	return nil
}
