// Package spotify wraps the official Spotify client library for the track
// cache service. It authenticates with the client credentials flow, reusing
// each access token until shortly before it expires, and exposes the one
// catalog lookup the service needs. The wrapped library does not provide
// context support so cancellation is checked explicitly before each call.
package spotify

import (
	"context"
	"sync"
	"time"

	"github.com/zmb3/spotify"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// expiryMargin is how long before the recorded expiry a cached token already
// counts as stale. Spotify tokens live for an hour; refreshing two minutes
// early keeps in-flight requests from racing the deadline.
const expiryMargin = 120 * time.Second

// TokenSource issues client-credentials tokens for the Spotify Web API,
// caching each one until it is within expiryMargin of expiring. It is safe
// for concurrent use: when the cache is stale exactly one caller performs the
// exchange while the rest wait for its result.
type TokenSource struct {
	conf *clientcredentials.Config
	ctx  context.Context

	mu    sync.Mutex
	token *oauth2.Token

	now func() time.Time
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

// NewTokenSource builds a TokenSource for the given application credentials,
// obtained from the Spotify developer dashboard. ctx is used for every token
// exchange the source performs.
func NewTokenSource(ctx context.Context, clientID, clientSecret string) *TokenSource {
	return &TokenSource{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotify.TokenURL,
		},
		ctx: ctx,
		now: time.Now,
	}
}

// Token returns the cached token, first exchanging credentials for a fresh
// one when the cache is empty or about to expire. A failed exchange leaves
// the cache empty so the next caller retries.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != nil && ts.now().Add(expiryMargin).Before(ts.token.Expiry) {
		return ts.token, nil
	}

	token, err := ts.conf.Token(ts.ctx)
	if err != nil {
		ts.token = nil
		return nil, err
	}
	ts.token = token
	return token, nil
}
