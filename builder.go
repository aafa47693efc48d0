package authcore

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/veslund/authcore/password"
)

// Builder assembles an [Engine]. Collaborators the host must supply are the
// account and token stores; everything else has a working default.
type Builder struct {
	config   Config
	registry *CipherRegistry
	accounts AccountStore
	tokens   TokenStore
	sink     EventSink
	mailer   Mailer
	logger   *zerolog.Logger
	ledger   *AttemptLedger
	recovery *RecoveryStore

	built bool
}

// New returns a Builder seeded with defaults.
func New() *Builder {
	return &Builder{
		config:   defaultConfig(),
		registry: NewCipherRegistry(),
	}
}

// WithConfig replaces the default configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithAccounts sets the persistence collaborator for accounts. Required.
func (b *Builder) WithAccounts(store AccountStore) *Builder {
	b.accounts = store
	return b
}

// WithTokens sets the persistence collaborator for CSRF and remember-me
// rows. Required.
func (b *Builder) WithTokens(store TokenStore) *Builder {
	b.tokens = store
	return b
}

// WithEventSink sets the host event log. Defaults to a no-op sink.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	return b
}

// WithMailer sets the outbound mail collaborator. Without one, recovery
// flows still work but produced mail is only returned, never dispatched.
func (b *Builder) WithMailer(mailer Mailer) *Builder {
	b.mailer = mailer
	return b
}

// WithLogger sets the diagnostic logger. Defaults to zerolog.Nop().
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = &logger
	return b
}

// WithLedger injects a pre-built attempt ledger, e.g. one shared across
// engines behind the same address space. Defaults to a fresh ledger.
func (b *Builder) WithLedger(ledger *AttemptLedger) *Builder {
	b.ledger = ledger
	return b
}

// WithRecoveryStore injects a pre-built recovery store. Defaults to a fresh
// store with the configured TTL.
func (b *Builder) WithRecoveryStore(store *RecoveryStore) *Builder {
	b.recovery = store
	return b
}

// Build validates the configuration, resolves the cipher backend, and
// returns an immutable engine. A Builder builds at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.accounts == nil {
		return nil, errors.New("account store is required")
	}
	if b.tokens == nil {
		return nil, errors.New("token store is required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	cipher, err := b.registry.Resolve(b.config.Cipher)
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	csrf, err := newCsrfStore(b.tokens, b.config.Tokens.Validity)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if b.logger != nil {
		logger = *b.logger
	}

	ledger := b.ledger
	if ledger == nil {
		ledger = NewAttemptLedger(b.config.Lockout)
	}
	recovery := b.recovery
	if recovery == nil {
		recovery = NewRecoveryStore(b.config.Recovery.GrantTTL)
	}

	b.built = true
	return &Engine{
		config:   b.config,
		log:      logger,
		cipher:   cipher,
		ledger:   ledger,
		recovery: recovery,
		csrf:     csrf,
		remember: newRememberMeStore(b.tokens, b.config.Tokens.Validity),
		accounts: b.accounts,
		tokens:   b.tokens,
		hasher:   hasher,
		events:   newEventDispatcher(b.config.Audit, b.sink),
		mailer:   b.mailer,
		metrics:  NewMetrics(),
		now:      time.Now,
	}, nil
}
