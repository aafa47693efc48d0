package authcore

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type recoveryGrant struct {
	accountID string
	mintedAt  time.Time
}

// RecoveryStore holds one-time password-recovery grants. Process-local and
// unpersisted: a restart invalidates outstanding recovery links, which is an
// accepted property of the flow.
//
// Like the attempt ledger it is constructed explicitly and injected by
// handle, never shared through package state. Grants are single-use: a
// successful consumption removes the entry, so a recovery link cannot be
// replayed inside its window.
type RecoveryStore struct {
	mu     sync.Mutex
	grants map[string]recoveryGrant
	ttl    time.Duration

	now func() time.Time
}

// NewRecoveryStore returns an empty store whose grants live for ttl.
func NewRecoveryStore(ttl time.Duration) *RecoveryStore {
	return &RecoveryStore{
		grants: make(map[string]recoveryGrant),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Mint creates a grant for the account and returns its opaque id.
func (s *RecoveryStore) Mint(accountID string) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[id] = recoveryGrant{
		accountID: accountID,
		mintedAt:  s.now(),
	}
	return id
}

// Consume redeems a grant and returns the target account id. The grant is
// removed on every terminal outcome: success, expiry, or (by absence)
// a second consumption attempt.
func (s *RecoveryStore) Consume(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.grants[id]
	if !ok {
		return "", ErrRecoveryInvalid
	}
	delete(s.grants, id)

	if s.now().After(grant.mintedAt.Add(s.ttl)) {
		return "", ErrRecoveryExpired
	}
	return grant.accountID, nil
}

// Len reports the number of outstanding grants.
func (s *RecoveryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.grants)
}
