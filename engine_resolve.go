package authcore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/veslund/authcore/internal/secure"
)

// Resolve maps an authenticated local principal to its persisted account and
// records the login in the event log.
//
// An account past its confirmation deadline is deleted and the resolution
// fails hard with ErrAccountExpired; the first login after expiry never
// yields a usable principal.
func (e *Engine) Resolve(ctx context.Context, principal Principal, origin string) (*Account, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	account, err := e.accounts.FindByLogin(ctx, principal.Login)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrUnknownPrincipal
	}
	if err := e.checkAccountUsable(ctx, account); err != nil {
		return nil, err
	}

	e.emit(ctx, EventLoggedIn, account, origin, "login")
	return account, nil
}

// ResolveFederated maps a federated claim to a persisted account,
// provisioning one on first contact. The provisioned account gets a random
// password, the USER role, and is confirmed immediately: the identity was
// already verified by the external provider, so the local confirmation step
// is skipped.
//
// A second resolution with the same email returns the existing account,
// never a duplicate.
func (e *Engine) ResolveFederated(ctx context.Context, claim FederatedClaim, origin string) (*Account, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if claim.Email == "" {
		return nil, fmt.Errorf("%w: federated claim without email", ErrUnknownPrincipal)
	}

	account, err := e.accounts.FindByEmail(ctx, claim.Email)
	if err != nil {
		return nil, err
	}

	if account == nil {
		account, err = e.provisionFederated(ctx, claim)
		if err != nil {
			return nil, err
		}
	} else if err := e.checkAccountUsable(ctx, account); err != nil {
		return nil, err
	}

	e.emit(ctx, EventLoggedIn, account, origin, "federated login via "+claim.Provider)
	return account, nil
}

func (e *Engine) provisionFederated(ctx context.Context, claim FederatedClaim) (*Account, error) {
	// Nobody ever learns this password; it only exists so the row is not
	// distinguishable from a locally registered one.
	raw, err := secure.NewPassword(e.config.Recovery.PasswordLength)
	if err != nil {
		return nil, err
	}
	pwd := secure.NewBufferString(raw)
	defer pwd.Destroy()

	hash, err := e.hasher.Hash(pwd.Bytes())
	if err != nil {
		return nil, err
	}

	name := claim.Name
	if name == "" {
		name = claim.Email
	}

	account := &Account{
		ID:             uuid.NewString(),
		Login:          claim.Email,
		Name:           name,
		PasswordHash:   hash,
		Role:           RoleUser,
		Email:          claim.Email,
		Confirmed:      true,
		VerificationID: uuid.NewString(),
	}
	if err := e.accounts.Save(ctx, account); err != nil {
		return nil, err
	}

	e.metrics.Inc(MetricAccountProvisioned)
	e.log.Info().Str("provider", claim.Provider).Msg("provisioned federated account")
	return account, nil
}
