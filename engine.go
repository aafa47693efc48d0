package authcore

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine is the process-wide authentication core. Configured through
// [Builder] and immutable afterwards; every method is safe for concurrent
// use.
type Engine struct {
	config   Config
	log      zerolog.Logger
	cipher   Cipher
	ledger   *AttemptLedger
	recovery *RecoveryStore
	csrf     *csrfStore
	remember *rememberMeStore
	accounts AccountStore
	tokens   TokenStore
	hasher   passwordHasher
	events   *eventDispatcher
	mailer   Mailer
	metrics  *Metrics

	// now is swappable for tests.
	now func() time.Time
}

// passwordHasher is the slice of password.Hasher the engine needs; narrowed
// to an interface so tests can substitute a cheap hasher.
type passwordHasher interface {
	Hash(password []byte) (string, error)
	Verify(password []byte, encodedHash string) (bool, error)
}

// Close drains the audit dispatcher. The engine is unusable afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.events.Close()
}

// Ledger exposes the injected attempt ledger, mainly so hosts can render
// lockout state on admin surfaces.
func (e *Engine) Ledger() *AttemptLedger {
	return e.ledger
}

// Metrics exposes the engine counter set.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// EventsDropped reports audit events discarded under backpressure.
func (e *Engine) EventsDropped() uint64 {
	return e.events.Dropped()
}

// StatusFor maps an engine error to the blocking HTTP status the transport
// should answer with. Bans and authorization failures are 403; everything
// else stays 200/302 and is the host's redirect decision.
func StatusFor(err error) int {
	if errors.Is(err, ErrAuthForbidden) {
		return http.StatusForbidden
	}
	return http.StatusOK
}

func (e *Engine) emit(ctx context.Context, eventType EventType, account *Account, origin, message string) {
	event := Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Origin:    origin,
		Message:   message,
	}
	if account != nil {
		event.AccountID = account.ID
		event.Login = account.Login
	}
	e.events.Emit(ctx, event)
}
