package authcore

import (
	"context"
	"errors"
)

// IssueKey returns the per-origin challenge key for the credential exchange.
// Idempotent for a given origin across one login round-trip.
func (e *Engine) IssueKey(origin string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	return e.cipher.IssueKey(origin)
}

// Login evaluates one credential submission from origin.
//
// The order is fixed: ban check, account lookup, account-state checks,
// decrypt, hash compare. An unknown login passes through with
// ErrUnknownPrincipal so a federated flow can take over, and does not feed
// the ledger. A mismatch (or an undecryptable submission, which is made
// indistinguishable from one) feeds the ledger exactly once; the failure that
// reaches the threshold answers ErrAuthForbidden instead of
// ErrBadCredentials so the transport can block with 403.
//
// Success does not reset the origin's failure count.
func (e *Engine) Login(ctx context.Context, origin, login, ciphertext, key string) (*Principal, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	if !e.ledger.Allowed(origin) {
		e.metrics.Inc(MetricLoginForbidden)
		return nil, ErrAuthForbidden
	}

	account, err := e.accounts.FindByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrUnknownPrincipal
	}

	if err := e.checkAccountUsable(ctx, account); err != nil {
		return nil, err
	}

	plaintext, err := e.cipher.Decrypt(ciphertext, key)
	if err != nil {
		// Surfaced as bad credentials so clients cannot tell which stage
		// failed. Still counts against the origin.
		e.log.Debug().Str("origin", origin).Msg("credential decryption failed")
		return nil, e.recordFailure(origin)
	}
	defer plaintext.Destroy()

	match, err := e.hasher.Verify(plaintext.Bytes(), account.PasswordHash)
	if err != nil {
		e.log.Warn().Str("login", login).Err(err).Msg("stored hash unreadable")
		return nil, e.recordFailure(origin)
	}
	if !match {
		return nil, e.recordFailure(origin)
	}

	e.metrics.Inc(MetricLoginSuccess)
	return &Principal{
		AccountID:   account.ID,
		Login:       account.Login,
		Role:        account.Role,
		Authorities: account.Role.Authorities(),
	}, nil
}

// recordFailure feeds the ledger once and picks the error for this failure.
func (e *Engine) recordFailure(origin string) error {
	if e.ledger.RecordFailure(origin) {
		e.metrics.Inc(MetricBanOpened)
		e.metrics.Inc(MetricLoginForbidden)
		return ErrAuthForbidden
	}
	e.metrics.Inc(MetricLoginFailure)
	return ErrBadCredentials
}

// checkAccountUsable fails fast with a distinct signal per account state.
// A missed confirmation deadline deletes the stale account before surfacing.
func (e *Engine) checkAccountUsable(ctx context.Context, account *Account) error {
	if account.ConfirmationExpired(e.now()) {
		if err := e.accounts.Delete(ctx, account.ID); err != nil {
			return err
		}
		e.metrics.Inc(MetricAccountExpired)
		return ErrAccountExpired
	}
	if account.Locked {
		return ErrAccountLocked
	}
	if account.Disabled {
		return ErrAccountDisabled
	}
	return nil
}

// AutoLogin replays a remember-me token found in the caller's cookies. The
// redeemed token is re-signed with a fresh expiry. A request without a
// usable token answers ErrTokenNotFound and is treated as "not remembered".
func (e *Engine) AutoLogin(ctx context.Context, origin string, cookies []Cookie) (*Account, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	for _, cookie := range cookies {
		if cookie.Name != e.config.Tokens.RememberMeCookie || cookie.Value == "" {
			continue
		}

		accountID, err := e.remember.Redeem(ctx, cookie.Value)
		if errors.Is(err, ErrTokenNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		account, err := e.accounts.FindByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			// Row referenced a deleted account; drop it.
			_ = e.tokens.Delete(ctx, cookie.Value)
			continue
		}
		if err := e.checkAccountUsable(ctx, account); err != nil {
			return nil, err
		}

		e.metrics.Inc(MetricRememberMeReplayed)
		e.emit(ctx, EventLoggedIn, account, origin, "remember-me replay")
		return account, nil
	}

	return nil, ErrTokenNotFound
}

// RememberMe persists a fresh remember-me token for the account after an
// explicit login. The host writes the returned value into its cookie.
func (e *Engine) RememberMe(ctx context.Context, accountID string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	value, err := e.remember.Issue(ctx, accountID)
	if err != nil {
		return "", err
	}
	e.metrics.Inc(MetricRememberMeIssued)
	return value, nil
}

// Logout clears the caller's CSRF token and revokes any remember-me token in
// the cookies that belongs to the same account. Anonymous callers (default
// or unknown CSRF token) log out as a no-op.
func (e *Engine) Logout(ctx context.Context, origin, csrfToken string, cookies []Cookie) error {
	if e == nil {
		return ErrEngineNotReady
	}

	accountID, err := e.csrf.Validate(ctx, csrfToken)
	if errors.Is(err, ErrTokenNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if accountID == "" {
		return nil
	}

	if err := e.csrf.Clear(ctx, csrfToken); err != nil {
		return err
	}

	for _, cookie := range cookies {
		if cookie.Name != e.config.Tokens.RememberMeCookie || cookie.Value == "" {
			continue
		}
		if err := e.remember.Revoke(ctx, accountID, cookie.Value); err != nil {
			return err
		}
	}

	account, err := e.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	e.metrics.Inc(MetricLogout)
	e.emit(ctx, EventLoggedOut, account, origin, "logout")
	return nil
}

// RevokeRememberMe removes every remember-me token owned by the account, so
// replays from any device stop working. Used by hosts on password change or
// account compromise.
func (e *Engine) RevokeRememberMe(ctx context.Context, accountID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return e.remember.RevokeAccount(ctx, accountID)
}

// CsrfToken issues and persists a fresh anti-forgery token for the account.
func (e *Engine) CsrfToken(ctx context.Context, accountID string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	value, err := e.csrf.Issue(ctx, accountID)
	if err != nil {
		return "", err
	}
	e.metrics.Inc(MetricCsrfIssued)
	return value, nil
}

// DefaultCsrfToken is the process-wide token handed to anonymous sessions.
// Never persisted.
func (e *Engine) DefaultCsrfToken() string {
	return e.csrf.defaultToken
}

// ValidateCsrf resolves a CSRF token to its owning account id ("" for the
// anonymous default). Loads roll the expiry forward.
func (e *Engine) ValidateCsrf(ctx context.Context, value string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	return e.csrf.Validate(ctx, value)
}
