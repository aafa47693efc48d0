package authcore

import (
	"errors"
	"time"
)

// Config carries every tunable consumed by the engine. Instances are copied
// at Build time and treated as immutable afterwards.
type Config struct {
	Lockout  LockoutConfig
	Cipher   CipherConfig
	Password PasswordConfig
	Tokens   TokenConfig
	Recovery RecoveryConfig
	Audit    AuditConfig
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig tunes the per-origin brute-force policy.
type LockoutConfig struct {
	// FailureThreshold is the consecutive-failure count at which an origin is
	// banned. The failure that reaches the threshold already answers with a
	// blocking status.
	FailureThreshold int
	// BanDuration is how long a ban window stays active. Lapsed windows are
	// cleaned lazily on the origin's next failure, never by a timer.
	BanDuration time.Duration
}

/*
====================================
CIPHER CONFIG
====================================
*/

// CipherConfig selects the credential cipher backend. Algorithm is resolved
// against the registry exactly once, at Build.
type CipherConfig struct {
	// Algorithm is one of the registered names: "plain", "aes-256-gcm",
	// "chacha20-poly1305", "rsa".
	Algorithm string
	// Secret seeds key derivation for the symmetric backends. Ignored by
	// "plain" and "rsa".
	Secret string
	// RSABits sizes the generated keypair for the "rsa" backend.
	RSABits int
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig tunes the argon2id hasher.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig tunes the CSRF and remember-me stores.
type TokenConfig struct {
	// Validity is the expiry window written on issuance and rolled forward on
	// CSRF loads and remember-me replays.
	Validity time.Duration
	// RememberMeCookie is the cookie name scanned for revocable remember-me
	// tokens on logout.
	RememberMeCookie string
}

/*
====================================
RECOVERY CONFIG
====================================
*/

// RecoveryConfig tunes one-time password-recovery grants.
type RecoveryConfig struct {
	// GrantTTL is how long a minted grant may be consumed.
	GrantTTL time.Duration
	// PasswordLength sizes generated replacement passwords.
	PasswordLength int
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking when the buffer is full.
	DropIfFull bool
}

func defaultConfig() Config {
	return Config{
		Lockout: LockoutConfig{
			FailureThreshold: 3,
			BanDuration:      60 * time.Minute,
		},
		Cipher: CipherConfig{
			Algorithm: CipherPlain,
			RSABits:   2048,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Tokens: TokenConfig{
			Validity:         14 * 24 * time.Hour,
			RememberMeCookie: "remember-me",
		},
		Recovery: RecoveryConfig{
			GrantTTL:       24 * time.Hour,
			PasswordLength: 12,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if cfg.Lockout.FailureThreshold < 1 {
		return errors.New("lockout failure threshold must be at least 1")
	}
	if cfg.Lockout.BanDuration <= 0 {
		return errors.New("lockout ban duration must be positive")
	}
	if cfg.Cipher.Algorithm == "" {
		return errors.New("cipher algorithm must be set")
	}
	if cfg.Tokens.Validity <= 0 {
		return errors.New("token validity must be positive")
	}
	if cfg.Tokens.RememberMeCookie == "" {
		return errors.New("remember-me cookie name must be set")
	}
	if cfg.Recovery.GrantTTL <= 0 {
		return errors.New("recovery grant ttl must be positive")
	}
	if cfg.Recovery.PasswordLength < 8 {
		return errors.New("recovery password length must be at least 8")
	}
	return nil
}
