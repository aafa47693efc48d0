package authcore

import (
	"context"
	"time"

	"github.com/veslund/authcore/internal/secure"
)

// csrfStore issues and validates anti-forgery tokens for authenticated
// accounts through the host's TokenStore.
//
// Tokens roll forward instead of expiring: a load past the validity window
// transparently re-stamps the expiry rather than invalidating the token, so
// an active account keeps one CSRF token indefinitely. Anonymous sessions
// share a process-wide default token that is never persisted.
type csrfStore struct {
	tokens   TokenStore
	validity time.Duration

	// defaultToken is minted once per store and handed to every anonymous
	// session.
	defaultToken string

	now func() time.Time
}

func newCsrfStore(tokens TokenStore, validity time.Duration) (*csrfStore, error) {
	def, err := secure.NewTokenValue()
	if err != nil {
		return nil, err
	}
	return &csrfStore{
		tokens:       tokens,
		validity:     validity,
		defaultToken: def,
		now:          time.Now,
	}, nil
}

// Issue persists a fresh token owned by the account and returns its value.
func (s *csrfStore) Issue(ctx context.Context, accountID string) (string, error) {
	value, err := secure.NewTokenValue()
	if err != nil {
		return "", err
	}

	record := &TokenRecord{
		Value:     value,
		AccountID: accountID,
		Kind:      TokenCSRF,
		ExpiresAt: s.now().Add(s.validity),
	}
	if err := s.tokens.Save(ctx, record); err != nil {
		return "", err
	}
	return value, nil
}

// Validate resolves a token to its owning account id. The default token
// resolves to the empty account id (anonymous). Every hit re-stamps the
// expiry window.
func (s *csrfStore) Validate(ctx context.Context, value string) (string, error) {
	if value == s.defaultToken {
		return "", nil
	}

	record, err := s.tokens.Find(ctx, value)
	if err != nil {
		return "", err
	}
	if record == nil || record.Kind != TokenCSRF {
		return "", ErrTokenNotFound
	}

	record.ExpiresAt = s.now().Add(s.validity)
	if err := s.tokens.Save(ctx, record); err != nil {
		return "", err
	}
	return record.AccountID, nil
}

// Clear removes a persisted token. Clearing the default token is a no-op.
func (s *csrfStore) Clear(ctx context.Context, value string) error {
	if value == s.defaultToken || value == "" {
		return nil
	}
	return s.tokens.Delete(ctx, value)
}
