package authcore

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"github.com/veslund/authcore/internal/secure"
)

// rsaCipher is the asymmetric backend: clients receive the process public key
// and submit credentials OAEP-sealed under it. Registered with serialization
// because deployments may swap in provider-backed keys (HSM, PKCS#11) whose
// decrypt contexts are not safe for concurrent entry.
type rsaCipher struct {
	key       *rsa.PrivateKey
	publicKey string
}

func newRSACipher(cfg CipherConfig) (Cipher, error) {
	bits := cfg.RSABits
	if bits == 0 {
		bits = 2048
	}
	if bits < 2048 {
		return nil, fmt.Errorf("rsa key size too small: %d", bits)
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, err
	}

	return &rsaCipher{
		key:       key,
		publicKey: base64.StdEncoding.EncodeToString(der),
	}, nil
}

// IssueKey hands out the public key. The same key serves every origin, which
// trivially satisfies per-origin idempotence.
func (c *rsaCipher) IssueKey(string) (string, error) {
	return c.publicKey, nil
}

func (c *rsaCipher) Encrypt(plaintext []byte, key string) (string, error) {
	if key != c.publicKey {
		return "", fmt.Errorf("%w: key mismatch", ErrDecryption)
	}

	sealed, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, &c.key.PublicKey, plaintext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *rsaCipher) Decrypt(ciphertext, key string) (*secure.Buffer, error) {
	if key != c.publicKey {
		return nil, fmt.Errorf("%w: key mismatch", ErrDecryption)
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed ciphertext", ErrDecryption)
	}

	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, c.key, data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open failed", ErrDecryption)
	}

	buf := secure.NewBuffer(plaintext)
	for i := range plaintext {
		plaintext[i] = 0
	}
	return buf, nil
}
