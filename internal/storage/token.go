package storage

import "context"

const tokenKey = "auth_token"

// TokenAccessor is the only path to the persisted auth token. The session
// store and the API client share one accessor so a silent refresh and an
// explicit login write the same place.
type TokenAccessor struct {
	store Store
}

func NewTokenAccessor(store Store) *TokenAccessor {
	return &TokenAccessor{store: store}
}

func (a *TokenAccessor) Token(ctx context.Context) (string, bool, error) {
	value, ok, err := a.store.Get(ctx, tokenKey)
	if err != nil || !ok || value == "" {
		return "", false, err
	}
	return value, true, nil
}

func (a *TokenAccessor) SetToken(ctx context.Context, token string) error {
	return a.store.Set(ctx, tokenKey, token)
}

func (a *TokenAccessor) ClearToken(ctx context.Context) error {
	return a.store.Delete(ctx, tokenKey)
}
