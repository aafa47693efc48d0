package authcore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/veslund/authcore/internal/secure"
)

// aeadCipher backs the symmetric algorithms. A fresh process key is minted at
// construction; the per-origin challenge key is an HMAC of the origin under
// it, and the AEAD key is derived from that challenge key. Sealing uses a
// random nonce prefix, so the backend carries no per-call state and needs no
// serialization.
type aeadCipher struct {
	processKey [32]byte
	newAEAD    func(key []byte) (cipher.AEAD, error)
}

func newAESCipher(cfg CipherConfig) (Cipher, error) {
	return newAEADCipher(cfg, func(key []byte) (cipher.AEAD, error) {
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	})
}

func newChaChaCipher(cfg CipherConfig) (Cipher, error) {
	return newAEADCipher(cfg, chacha20poly1305.New)
}

func newAEADCipher(cfg CipherConfig, newAEAD func(key []byte) (cipher.AEAD, error)) (Cipher, error) {
	c := &aeadCipher{newAEAD: newAEAD}

	if cfg.Secret != "" {
		c.processKey = sha256.Sum256([]byte(cfg.Secret))
		return c, nil
	}

	key, err := secure.NewProcessKey()
	if err != nil {
		return nil, err
	}
	c.processKey = key
	return c, nil
}

func (c *aeadCipher) IssueKey(origin string) (string, error) {
	return secure.DeriveOriginKey(c.processKey, origin), nil
}

func (c *aeadCipher) aead(key string) (cipher.AEAD, error) {
	derived := sha256.Sum256([]byte(key))
	return c.newAEAD(derived[:])
}

func (c *aeadCipher) Encrypt(plaintext []byte, key string) (string, error) {
	aead, err := c.aead(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *aeadCipher) Decrypt(ciphertext, key string) (*secure.Buffer, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed ciphertext", ErrDecryption)
	}

	aead, err := c.aead(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	if len(data) < aead.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryption)
	}

	nonce, sealed := data[:aead.NonceSize()], data[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open failed", ErrDecryption)
	}

	buf := secure.NewBuffer(plaintext)
	for i := range plaintext {
		plaintext[i] = 0
	}
	return buf, nil
}
