package authcore

import (
	"context"
	"time"

	"github.com/veslund/authcore/internal/secure"
)

// rememberMeStore manages long-lived auto-login tokens over the host's
// TokenStore. One row per (account, token): every explicit login persists a
// new row, and every successful replay re-signs the presented row with a
// fresh expiry.
type rememberMeStore struct {
	tokens   TokenStore
	validity time.Duration

	now func() time.Time
}

func newRememberMeStore(tokens TokenStore, validity time.Duration) *rememberMeStore {
	return &rememberMeStore{
		tokens:   tokens,
		validity: validity,
		now:      time.Now,
	}
}

// Issue persists a fresh remember-me row for the account.
func (s *rememberMeStore) Issue(ctx context.Context, accountID string) (string, error) {
	value, err := secure.NewTokenValue()
	if err != nil {
		return "", err
	}

	record := &TokenRecord{
		Value:     value,
		AccountID: accountID,
		Kind:      TokenRememberMe,
		ExpiresAt: s.now().Add(s.validity),
	}
	if err := s.tokens.Save(ctx, record); err != nil {
		return "", err
	}
	return value, nil
}

// Redeem resolves a presented token to its account and re-signs it with a
// fresh expiry. A miss or an expired row answers ErrTokenNotFound ("not
// remembered"), never a hard failure; expired rows are removed lazily here.
func (s *rememberMeStore) Redeem(ctx context.Context, value string) (string, error) {
	record, err := s.tokens.Find(ctx, value)
	if err != nil {
		return "", err
	}
	if record == nil || record.Kind != TokenRememberMe {
		return "", ErrTokenNotFound
	}
	if record.Expired(s.now()) {
		_ = s.tokens.Delete(ctx, value)
		return "", ErrTokenNotFound
	}

	record.ExpiresAt = s.now().Add(s.validity)
	if err := s.tokens.Save(ctx, record); err != nil {
		return "", err
	}
	return record.AccountID, nil
}

// Revoke deletes one token row if it exists and belongs to the account.
// Used on logout against token values found in the caller's cookies.
func (s *rememberMeStore) Revoke(ctx context.Context, accountID, value string) error {
	record, err := s.tokens.Find(ctx, value)
	if err != nil {
		return err
	}
	if record == nil || record.Kind != TokenRememberMe || record.AccountID != accountID {
		return nil
	}
	return s.tokens.Delete(ctx, value)
}

// RevokeAccount removes every remember-me row owned by the account.
func (s *rememberMeStore) RevokeAccount(ctx context.Context, accountID string) error {
	return s.tokens.DeleteByAccount(ctx, accountID, TokenRememberMe)
}
