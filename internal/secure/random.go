package secure

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"math/big"
)

const tokenValueSize = 24

// passwordAlphabet deliberately omits ambiguous glyphs (0/O, 1/l/I) since
// generated passwords are delivered over mail and retyped by hand.
const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewTokenValue returns a high-entropy token usable as a store lookup key.
// base64url, no padding, compact.
func NewTokenValue() (string, error) {
	var raw [tokenValueSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// NewProcessKey returns a random 32-byte key minted once per cipher instance.
func NewProcessKey() ([32]byte, error) {
	var key [32]byte
	_, err := rand.Read(key[:])
	return key, err
}

// DeriveOriginKey derives a stable per-origin challenge key from a process
// key. Idempotent for one origin across a login round-trip without any
// per-origin state.
func DeriveOriginKey(processKey [32]byte, origin string) string {
	mac := hmac.New(sha256.New, processKey[:])
	mac.Write([]byte(origin))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// NewPassword generates a printable random password of the given length.
func NewPassword(length int) (string, error) {
	if length < 8 {
		return "", errors.New("password length too short")
	}

	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
