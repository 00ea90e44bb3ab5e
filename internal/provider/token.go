package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type Refresher interface {
	RefreshToken(ctx context.Context, old Token) (Token, error)
}

// Authorizer hands out usable tokens, refreshing expired ones. Concurrent
// refreshes of the same token share one provider call, and a token that was
// already refreshed is answered from memory until its replacement expires.
type Authorizer struct {
	refresher Refresher
	group     singleflight.Group
	now       func() time.Time

	mu        sync.Mutex
	refreshed map[string]Token
}

func NewAuthorizer(refresher Refresher) *Authorizer {
	return &Authorizer{
		refresher: refresher,
		now:       time.Now,
		refreshed: make(map[string]Token),
	}
}

// Authorize returns tok unchanged when it is still valid. Otherwise it
// returns the refreshed token and true; the caller must persist it.
func (a *Authorizer) Authorize(ctx context.Context, tok Token) (Token, bool, error) {
	now := a.now()
	if !tok.Expired(now) {
		return tok, false, nil
	}

	if fresh, ok := a.lookup(tok.RefreshToken, now); ok {
		return fresh, true, nil
	}

	v, err, _ := a.group.Do(tok.RefreshToken, func() (any, error) {
		if fresh, ok := a.lookup(tok.RefreshToken, a.now()); ok {
			return fresh, nil
		}

		fresh, err := a.refresher.RefreshToken(ctx, tok)
		if err != nil {
			return Token{}, err
		}

		a.mu.Lock()
		a.refreshed[tok.RefreshToken] = fresh
		a.mu.Unlock()

		return fresh, nil
	})
	if err != nil {
		return Token{}, false, fmt.Errorf("%w: %w", ErrAuthExpired, err)
	}

	return v.(Token), true, nil
}

func (a *Authorizer) lookup(refreshToken string, now time.Time) (Token, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for k, t := range a.refreshed {
		if t.Expired(now) {
			delete(a.refreshed, k)
		}
	}

	fresh, ok := a.refreshed[refreshToken]
	return fresh, ok
}
