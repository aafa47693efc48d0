package authcore

import (
	"context"
	"sync"
	"testing"
	"time"
)

// memAccounts is an in-memory AccountStore for engine tests.
type memAccounts struct {
	mu       sync.Mutex
	accounts map[string]*Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: make(map[string]*Account)}
}

func (s *memAccounts) FindByLogin(_ context.Context, login string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.Login == login {
			clone := *account
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memAccounts) FindByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.Email == email {
			clone := *account
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memAccounts) FindByID(_ context.Context, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	clone := *account
	return &clone, nil
}

func (s *memAccounts) Save(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *account
	s.accounts[account.ID] = &clone
	return nil
}

func (s *memAccounts) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	return nil
}

func (s *memAccounts) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

// memTokens is an in-memory TokenStore for engine tests.
type memTokens struct {
	mu      sync.Mutex
	records map[string]*TokenRecord
}

func newMemTokens() *memTokens {
	return &memTokens{records: make(map[string]*TokenRecord)}
}

func (s *memTokens) Find(_ context.Context, value string) (*TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[value]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (s *memTokens) Save(_ context.Context, record *TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *record
	s.records[record.Value] = &clone
	return nil
}

func (s *memTokens) Delete(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, value)
	return nil
}

func (s *memTokens) DeleteByAccount(_ context.Context, accountID string, kind TokenKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for value, record := range s.records {
		if record.AccountID == accountID && record.Kind == kind {
			delete(s.records, value)
		}
	}
	return nil
}

func (s *memTokens) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// testConfig keeps argon2 costs at the validated minimum so test logins stay
// cheap.
func testConfig() Config {
	cfg := defaultConfig()
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

type testEngine struct {
	engine   *Engine
	accounts *memAccounts
	tokens   *memTokens
	sink     *ChannelSink
}

func newTestEngine(t *testing.T, cfg Config) *testEngine {
	t.Helper()

	accounts := newMemAccounts()
	tokens := newMemTokens()
	sink := NewChannelSink(64)

	engine, err := New().
		WithConfig(cfg).
		WithAccounts(accounts).
		WithTokens(tokens).
		WithEventSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEngine{
		engine:   engine,
		accounts: accounts,
		tokens:   tokens,
		sink:     sink,
	}
}

// seedAccount hashes the password and persists a confirmed account.
func (te *testEngine) seedAccount(t *testing.T, id, login, email, password string) *Account {
	t.Helper()

	hash, err := te.engine.hasher.Hash([]byte(password))
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	account := &Account{
		ID:           id,
		Login:        login,
		Name:         login,
		PasswordHash: hash,
		Role:         RoleUser,
		Email:        email,
		Confirmed:    true,
	}
	if err := te.accounts.Save(context.Background(), account); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return account
}

// advance shifts every engine clock by d.
func (te *testEngine) advance(d time.Duration) {
	base := time.Now().Add(d)
	now := func() time.Time { return base }
	te.engine.now = now
	te.engine.ledger.now = now
	te.engine.recovery.now = now
	te.engine.csrf.now = now
	te.engine.remember.now = now
}

// waitEvent blocks until the sink delivers an event or the test times out.
func (te *testEngine) waitEvent(t *testing.T) Event {
	t.Helper()
	select {
	case event := <-te.sink.Events():
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
		return Event{}
	}
}
