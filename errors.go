package authcore

import "errors"

var (
	// ErrBadCredentials is returned when a decrypted password does not match
	// the stored hash. Recoverable; every occurrence feeds the attempt ledger.
	ErrBadCredentials = errors.New("invalid credentials")
	// ErrAuthForbidden is returned when the origin of a login attempt is
	// inside an active ban window, or on the exact failure that opens one.
	ErrAuthForbidden = errors.New("authentication forbidden")
	// ErrUnknownPrincipal is returned when no account exists for a submitted
	// login. Callers pass through to a federated flow or a generic failure.
	ErrUnknownPrincipal = errors.New("unknown principal")
	// ErrAccountExpired is returned when an account's confirmation deadline
	// has passed. The stale account is deleted before the error surfaces.
	ErrAccountExpired = errors.New("account confirmation expired")
	// ErrAccountLocked is returned for accounts locked by an operator.
	ErrAccountLocked = errors.New("account locked")
	// ErrAccountDisabled is returned for administratively disabled accounts.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrDecryption is returned by cipher backends on malformed or mismatched
	// ciphertext. Login paths surface it to clients as ErrBadCredentials so
	// the failing stage is not leaked.
	ErrDecryption = errors.New("credential decryption failed")
	// ErrRecoveryExpired is returned when a recovery grant exists but is past
	// its validity window.
	ErrRecoveryExpired = errors.New("recovery grant expired")
	// ErrRecoveryInvalid is returned when no grant exists for a recovery id,
	// including grants already consumed once.
	ErrRecoveryInvalid = errors.New("recovery grant invalid")
	// ErrTokenNotFound is a lookup miss for a CSRF or remember-me token.
	// Callers treat it as "anonymous" / "not remembered", never as a hard
	// failure.
	ErrTokenNotFound = errors.New("token not found")
	// ErrCipherUnknown is returned at build time for an unregistered cipher
	// algorithm name.
	ErrCipherUnknown = errors.New("unknown cipher algorithm")
	// ErrStoreUnavailable wraps persistence backend failures.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrEngineNotReady is returned by engine methods before Build completed.
	ErrEngineNotReady = errors.New("engine not initialized")
)
