package authcore

import (
	"context"
	"time"
)

// Role is the coarse authority level attached to an account.
type Role string

const (
	// RoleUser is the default role for self-registered and auto-provisioned
	// accounts.
	RoleUser Role = "USER"
	// RoleAdmin marks operator accounts.
	RoleAdmin Role = "ADMIN"
)

// Authorities returns the authority set implied by the role. Admins inherit
// the user authority.
func (r Role) Authorities() []string {
	if r == RoleAdmin {
		return []string{"ROLE_ADMIN", "ROLE_USER"}
	}
	return []string{"ROLE_USER"}
}

// Account is the persisted user record this core reads and conditionally
// mutates. Ownership stays with the host's persistence layer; authcore only
// ever touches it through [AccountStore].
type Account struct {
	ID           string
	Login        string
	Name         string
	PasswordHash string
	Role         Role
	Email        string

	// Confirmed is set once the account finished (or was excused from) the
	// confirmation step. Unconfirmed accounts past ConfirmBy are deleted on
	// their next resolution.
	Confirmed bool
	ConfirmBy time.Time

	// VerificationID is the opaque id mailed out during confirmation.
	VerificationID string

	Locked   bool
	Disabled bool
}

// ConfirmationExpired reports whether the account missed its confirmation
// deadline as of now.
func (a *Account) ConfirmationExpired(now time.Time) bool {
	return !a.Confirmed && !a.ConfirmBy.IsZero() && now.After(a.ConfirmBy)
}

// Principal is the identity asserted by a successful authentication exchange,
// before and after resolution to a persisted account.
type Principal struct {
	AccountID   string
	Login       string
	Role        Role
	Authorities []string
}

// FederatedClaim is an identity vouched for by an external provider. Email is
// the provisioning key; a claim without one cannot be resolved.
type FederatedClaim struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// TokenKind discriminates persisted token rows.
type TokenKind uint8

const (
	// TokenCSRF rows back anti-forgery tokens for authenticated sessions.
	TokenCSRF TokenKind = iota
	// TokenRememberMe rows back long-lived auto-login tokens.
	TokenRememberMe
)

// TokenRecord is one persisted token row. Value is the high-entropy lookup
// key; AccountID is a weak reference, never ownership.
type TokenRecord struct {
	Value     string
	AccountID string
	Kind      TokenKind
	ExpiresAt time.Time
}

// Expired reports whether the record's window has passed as of now.
func (t *TokenRecord) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Cookie is the transport-neutral view of a request cookie. The host owns
// cookie mechanics; authcore only inspects name/value pairs handed to it.
type Cookie struct {
	Name  string
	Value string
}

// Mail is an outbound message produced by recovery flows. Dispatch is the
// host's job.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// AccountStore is the persistence collaborator for accounts. Each call is
// assumed transactional at single-call granularity. A lookup miss returns
// (nil, nil).
type AccountStore interface {
	FindByLogin(ctx context.Context, login string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Save(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id string) error
}

// TokenStore is the persistence collaborator for CSRF and remember-me token
// rows. Find returns (nil, nil) on a miss.
type TokenStore interface {
	Find(ctx context.Context, value string) (*TokenRecord, error)
	Save(ctx context.Context, record *TokenRecord) error
	Delete(ctx context.Context, value string) error
	// DeleteByAccount removes every row of the given kind owned by the
	// account. Used on logout to revoke remember-me state.
	DeleteByAccount(ctx context.Context, accountID string, kind TokenKind) error
}

// Mailer delivers outbound messages. Fire-and-forget from authcore's
// perspective; a delivery error is logged, never surfaced to the client.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}
