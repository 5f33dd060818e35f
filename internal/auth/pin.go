// Package auth provides offline PIN verification and the per-user lockout
// policy used at the login boundary. No plain PIN is ever stored; only a
// PBKDF2-derived hash with its salt and iteration count.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/pbkdf2"

	apperrors "github.com/panhaneath12/sweet-delights-pos-system/internal/errors"
)

const (
	// DefaultIterations balances derivation cost against login latency on
	// modest terminal hardware.
	DefaultIterations = 120_000

	saltLength = 16
	keyLength  = 32
)

// PinHash holds everything needed to verify a PIN later: the derived key,
// the random salt and the iteration count, all storage-ready.
type PinHash struct {
	Hash       string `json:"pinHash"` // base64
	Salt       string `json:"pinSalt"` // base64
	Iterations int    `json:"pinIter"`
}

// HashPin derives a PinHash from a plaintext PIN with the default iteration
// count.
func HashPin(pin string) (PinHash, error) {
	return HashPinIter(pin, DefaultIterations)
}

// HashPinIter derives a PinHash with an explicit iteration count.
func HashPinIter(pin string, iterations int) (PinHash, error) {
	if iterations < 1 {
		return PinHash{}, apperrors.New(apperrors.ErrInvalid, "iteration count must be at least 1")
	}

	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return PinHash{}, apperrors.Wrap(apperrors.ErrPinCrypto, "salt generation failed", err)
	}

	key := pbkdf2.Key([]byte(pin), salt, iterations, keyLength, sha256.New)

	return PinHash{
		Hash:       base64.StdEncoding.EncodeToString(key),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Iterations: iterations,
	}, nil
}

// VerifyPin recomputes the derivation with the stored salt and iteration
// count and compares in constant time.
func VerifyPin(pin, hash, salt string, iterations int) (bool, error) {
	storedKey, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrPinCrypto, "stored hash is not valid base64", err)
	}
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrPinCrypto, "stored salt is not valid base64", err)
	}

	key := pbkdf2.Key([]byte(pin), saltBytes, iterations, len(storedKey), sha256.New)

	return subtle.ConstantTimeCompare(key, storedKey) == 1, nil
}
