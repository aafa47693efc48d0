package authcore

import (
	"fmt"
	"sync"

	"github.com/veslund/authcore/internal/secure"
)

// Registered cipher algorithm names, resolved through [CipherRegistry].
const (
	// CipherPlain passes credentials through untouched. For deployments that
	// terminate TLS in front and skip the client-side handshake.
	CipherPlain = "plain"
	// CipherAESGCM encrypts the credential field with AES-256-GCM under a
	// per-origin derived key.
	CipherAESGCM = "aes-256-gcm"
	// CipherChaCha20 is the ChaCha20-Poly1305 variant for hosts without AES
	// hardware acceleration.
	CipherChaCha20 = "chacha20-poly1305"
	// CipherRSA hands clients a public key and decrypts submissions with the
	// process keypair.
	CipherRSA = "rsa"
)

// Cipher is the credential-exchange backend. One process-wide instance is
// shared by every concurrently authenticating client.
//
// IssueKey is idempotent for a given origin across one login round-trip.
// Decrypt returns the plaintext in an owned [secure.Buffer]; callers destroy
// it on every exit path. Plaintext never reaches a logger.
type Cipher interface {
	IssueKey(origin string) (string, error)
	Encrypt(plaintext []byte, key string) (string, error)
	Decrypt(ciphertext, key string) (*secure.Buffer, error)
}

type cipherFactory func(cfg CipherConfig) (Cipher, error)

type cipherEntry struct {
	build cipherFactory
	// serialize marks backends that cannot be entered concurrently and need
	// every call guarded by a mutex.
	serialize bool
}

// CipherRegistry maps a configuration string to a cipher constructor. The
// registry is populated once and consulted once, at Build; request paths only
// ever see the resolved instance.
type CipherRegistry struct {
	entries map[string]cipherEntry
}

// NewCipherRegistry returns a registry holding the known algorithm set.
func NewCipherRegistry() *CipherRegistry {
	return &CipherRegistry{
		entries: map[string]cipherEntry{
			CipherPlain:    {build: newPlainCipher},
			CipherAESGCM:   {build: newAESCipher},
			CipherChaCha20: {build: newChaChaCipher},
			CipherRSA:      {build: newRSACipher, serialize: true},
		},
	}
}

// Resolve constructs the backend named by cfg.Algorithm, wrapping it in a
// serializing decorator when the backend is not reentrant.
func (r *CipherRegistry) Resolve(cfg CipherConfig) (Cipher, error) {
	entry, ok := r.entries[cfg.Algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCipherUnknown, cfg.Algorithm)
	}

	cipher, err := entry.build(cfg)
	if err != nil {
		return nil, err
	}
	if entry.serialize {
		cipher = &serializedCipher{inner: cipher}
	}
	return cipher, nil
}

// serializedCipher guards each call into a non-reentrant backend with a
// mutex. The critical section covers only the cipher call itself; it is never
// held across persistence.
type serializedCipher struct {
	mu    sync.Mutex
	inner Cipher
}

func (c *serializedCipher) IssueKey(origin string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.IssueKey(origin)
}

func (c *serializedCipher) Encrypt(plaintext []byte, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Encrypt(plaintext, key)
}

func (c *serializedCipher) Decrypt(ciphertext, key string) (*secure.Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Decrypt(ciphertext, key)
}

// plainCipher is the pass-through backend: the "ciphertext" is the plaintext.
type plainCipher struct{}

func newPlainCipher(CipherConfig) (Cipher, error) {
	return plainCipher{}, nil
}

func (plainCipher) IssueKey(string) (string, error) {
	return CipherPlain, nil
}

func (plainCipher) Encrypt(plaintext []byte, _ string) (string, error) {
	return string(plaintext), nil
}

func (plainCipher) Decrypt(ciphertext, _ string) (*secure.Buffer, error) {
	return secure.NewBufferString(ciphertext), nil
}
