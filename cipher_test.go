package authcore

import (
	"errors"
	"sync"
	"testing"
)

func resolveCipher(t *testing.T, cfg CipherConfig) Cipher {
	t.Helper()
	cipher, err := NewCipherRegistry().Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", cfg.Algorithm, err)
	}
	return cipher
}

func TestCipherRegistryUnknownAlgorithm(t *testing.T) {
	_, err := NewCipherRegistry().Resolve(CipherConfig{Algorithm: "rot13"})
	if !errors.Is(err, ErrCipherUnknown) {
		t.Fatalf("expected ErrCipherUnknown, got %v", err)
	}
}

func TestCipherRoundTripAllAlgorithms(t *testing.T) {
	configs := []CipherConfig{
		{Algorithm: CipherPlain},
		{Algorithm: CipherAESGCM},
		{Algorithm: CipherAESGCM, Secret: "deployment-secret"},
		{Algorithm: CipherChaCha20},
		{Algorithm: CipherRSA, RSABits: 2048},
	}
	plaintexts := []string{
		"hunter2",
		"correct horse battery staple",
		"!\"#$%&'()*+,-./0123456789:;<=>?@ABC~",
	}

	for _, cfg := range configs {
		t.Run(cfg.Algorithm, func(t *testing.T) {
			cipher := resolveCipher(t, cfg)

			key, err := cipher.IssueKey("10.0.0.1")
			if err != nil {
				t.Fatalf("IssueKey failed: %v", err)
			}

			// Idempotent per origin within one round-trip.
			again, err := cipher.IssueKey("10.0.0.1")
			if err != nil {
				t.Fatalf("IssueKey repeat failed: %v", err)
			}
			if key != again {
				t.Fatal("IssueKey must be idempotent for an origin")
			}

			for _, plaintext := range plaintexts {
				ciphertext, err := cipher.Encrypt([]byte(plaintext), key)
				if err != nil {
					t.Fatalf("Encrypt failed: %v", err)
				}

				buf, err := cipher.Decrypt(ciphertext, key)
				if err != nil {
					t.Fatalf("Decrypt failed: %v", err)
				}
				if got := buf.String(); got != plaintext {
					t.Fatalf("round trip mismatch: %q != %q", got, plaintext)
				}
				buf.Destroy()
			}
		})
	}
}

func TestCipherAEADDecryptWithWrongKey(t *testing.T) {
	cipher := resolveCipher(t, CipherConfig{Algorithm: CipherAESGCM})

	key, _ := cipher.IssueKey("10.0.0.1")
	other, _ := cipher.IssueKey("10.0.0.2")
	if key == other {
		t.Fatal("distinct origins should get distinct keys")
	}

	ciphertext, err := cipher.Encrypt([]byte("secret"), key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if _, err := cipher.Decrypt(ciphertext, other); !errors.Is(err, ErrDecryption) {
		t.Fatalf("expected ErrDecryption, got %v", err)
	}
}

func TestCipherAEADDecryptMalformed(t *testing.T) {
	cipher := resolveCipher(t, CipherConfig{Algorithm: CipherChaCha20})
	key, _ := cipher.IssueKey("10.0.0.1")

	for _, ciphertext := range []string{"", "not-base64!!", "AAAA"} {
		if _, err := cipher.Decrypt(ciphertext, key); !errors.Is(err, ErrDecryption) {
			t.Fatalf("ciphertext %q: expected ErrDecryption, got %v", ciphertext, err)
		}
	}
}

func TestCipherAEADKeyStableAcrossRestartWithSecret(t *testing.T) {
	first := resolveCipher(t, CipherConfig{Algorithm: CipherAESGCM, Secret: "s3cr3t"})
	second := resolveCipher(t, CipherConfig{Algorithm: CipherAESGCM, Secret: "s3cr3t"})

	k1, _ := first.IssueKey("10.0.0.1")
	k2, _ := second.IssueKey("10.0.0.1")
	if k1 != k2 {
		t.Fatal("configured secret should derive stable origin keys")
	}
}

func TestCipherRSARejectsSmallKeys(t *testing.T) {
	_, err := NewCipherRegistry().Resolve(CipherConfig{Algorithm: CipherRSA, RSABits: 1024})
	if err == nil {
		t.Fatal("expected an error for a 1024-bit key")
	}
}

func TestCipherRSAIsSerialized(t *testing.T) {
	cipher := resolveCipher(t, CipherConfig{Algorithm: CipherRSA, RSABits: 2048})
	if _, ok := cipher.(*serializedCipher); !ok {
		t.Fatalf("rsa backend should be wrapped, got %T", cipher)
	}

	key, err := cipher.IssueKey("10.0.0.1")
	if err != nil {
		t.Fatalf("IssueKey failed: %v", err)
	}

	// Hammer the wrapper from many goroutines; the race detector flags any
	// unguarded entry.
	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				ciphertext, err := cipher.Encrypt([]byte("parallel"), key)
				if err != nil {
					t.Errorf("Encrypt failed: %v", err)
					return
				}
				buf, err := cipher.Decrypt(ciphertext, key)
				if err != nil {
					t.Errorf("Decrypt failed: %v", err)
					return
				}
				buf.Destroy()
			}
		}()
	}
	wg.Wait()
}

func TestCipherPlainPassThrough(t *testing.T) {
	cipher := resolveCipher(t, CipherConfig{Algorithm: CipherPlain})

	key, _ := cipher.IssueKey("anywhere")
	buf, err := cipher.Decrypt("as-typed", key)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	defer buf.Destroy()
	if buf.String() != "as-typed" {
		t.Fatalf("plain cipher must pass through, got %q", buf.String())
	}
}
