package authcore

import (
	"context"
	"errors"

	"github.com/veslund/authcore/internal/secure"
)

// RequestRecovery mints a one-time recovery grant for the account behind the
// email and produces the mail carrying its id. The mail is handed to the
// configured Mailer when present; delivery failure is logged, never
// surfaced, so the response cannot be used to probe delivery.
func (e *Engine) RequestRecovery(ctx context.Context, email string) (Mail, error) {
	if e == nil {
		return Mail{}, ErrEngineNotReady
	}

	account, err := e.accounts.FindByEmail(ctx, email)
	if err != nil {
		return Mail{}, err
	}
	if account == nil {
		return Mail{}, ErrUnknownPrincipal
	}

	recoveryID := e.recovery.Mint(account.ID)
	mail, err := buildRecoveryMail(account, recoveryID, e.config.Recovery.GrantTTL)
	if err != nil {
		return Mail{}, err
	}

	e.metrics.Inc(MetricRecoveryMinted)
	e.dispatchMail(ctx, mail)
	return mail, nil
}

// GenerateNewPassword consumes a recovery grant, replaces the account's
// password with a generated one guaranteed to differ from the previous, and
// produces the mail carrying it.
//
// The grant is gone after this call whatever the outcome: a second attempt
// with the same id answers ErrRecoveryInvalid, and a grant past its window
// answers ErrRecoveryExpired.
func (e *Engine) GenerateNewPassword(ctx context.Context, recoveryID string) (Mail, error) {
	if e == nil {
		return Mail{}, ErrEngineNotReady
	}

	accountID, err := e.recovery.Consume(recoveryID)
	if err != nil {
		if errors.Is(err, ErrRecoveryExpired) {
			e.metrics.Inc(MetricRecoveryExpired)
		}
		return Mail{}, err
	}

	account, err := e.accounts.FindByID(ctx, accountID)
	if err != nil {
		return Mail{}, err
	}
	if account == nil {
		return Mail{}, ErrRecoveryInvalid
	}

	newPassword, err := e.generateDistinctPassword(account.PasswordHash)
	if err != nil {
		return Mail{}, err
	}

	pwd := secure.NewBufferString(newPassword)
	hash, err := e.hasher.Hash(pwd.Bytes())
	pwd.Destroy()
	if err != nil {
		return Mail{}, err
	}

	account.PasswordHash = hash
	if err := e.accounts.Save(ctx, account); err != nil {
		return Mail{}, err
	}

	mail, err := buildNewPasswordMail(account, newPassword)
	if err != nil {
		return Mail{}, err
	}

	e.metrics.Inc(MetricRecoveryConsumed)
	e.dispatchMail(ctx, mail)
	return mail, nil
}

// generateDistinctPassword draws random passwords until one does not verify
// against the old hash. A collision is astronomically unlikely; the loop is
// bounded all the same.
func (e *Engine) generateDistinctPassword(oldHash string) (string, error) {
	for i := 0; i < 3; i++ {
		candidate, err := secure.NewPassword(e.config.Recovery.PasswordLength)
		if err != nil {
			return "", err
		}

		buf := secure.NewBufferString(candidate)
		same, err := e.hasher.Verify(buf.Bytes(), oldHash)
		buf.Destroy()
		if err != nil {
			// Unreadable old hash cannot collide with anything.
			return candidate, nil
		}
		if !same {
			return candidate, nil
		}
	}
	return "", ErrRecoveryInvalid
}

// ChangePassword verifies the current password and replaces it with the new
// one; both arrive encrypted under the caller's challenge key. A wrong
// current password answers ErrBadCredentials without touching the attempt
// ledger, which only meters login attempts.
func (e *Engine) ChangePassword(ctx context.Context, login, oldCiphertext, newCiphertext, key string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	account, err := e.accounts.FindByLogin(ctx, login)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrUnknownPrincipal
	}
	if err := e.checkAccountUsable(ctx, account); err != nil {
		return err
	}

	oldPwd, err := e.cipher.Decrypt(oldCiphertext, key)
	if err != nil {
		return ErrBadCredentials
	}
	defer oldPwd.Destroy()

	match, err := e.hasher.Verify(oldPwd.Bytes(), account.PasswordHash)
	if err != nil || !match {
		return ErrBadCredentials
	}

	newPwd, err := e.cipher.Decrypt(newCiphertext, key)
	if err != nil {
		return ErrBadCredentials
	}
	defer newPwd.Destroy()

	hash, err := e.hasher.Hash(newPwd.Bytes())
	if err != nil {
		return err
	}

	account.PasswordHash = hash
	return e.accounts.Save(ctx, account)
}

func (e *Engine) dispatchMail(ctx context.Context, mail Mail) {
	if e.mailer == nil {
		return
	}
	if err := e.mailer.Send(ctx, mail); err != nil {
		e.log.Error().Str("to", mail.To).Err(err).Msg("mail dispatch failed")
	}
}
