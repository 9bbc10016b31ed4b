// Package security holds the credential vault and the session token service.
package security

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the PBKDF2 round count applied when none is configured.
	DefaultIterations = 28000

	saltBytes = 128
	keyLength = 512
)

// Credential is a derived password hash and the salt it was derived with.
type Credential struct {
	Hash string
	Salt string
}

// Vault salts, hashes and compares local passwords.
type Vault struct {
	iterations int
}

// NewVault returns a Vault running the given number of PBKDF2 rounds.
// If iterations <= 0, DefaultIterations is used.
func NewVault(iterations int) *Vault {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Vault{iterations: iterations}
}

// Derive hashes password with salt. An empty salt is replaced by a freshly
// generated one, which is returned alongside the hash.
func (v *Vault) Derive(password, salt string) (Credential, error) {
	if salt == "" {
		generated, err := newSalt()
		if err != nil {
			return Credential{}, err
		}
		salt = generated
	}

	key := pbkdf2.Key([]byte(password), []byte(salt), v.iterations, keyLength, sha512.New)
	return Credential{Hash: hex.EncodeToString(key), Salt: salt}, nil
}

// Verify reports whether password matches expectedHash under salt. Missing
// input yields false, never an error.
func (v *Vault) Verify(password, salt, expectedHash string) bool {
	if password == "" || salt == "" || expectedHash == "" {
		return false
	}

	derived, err := v.Derive(password, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(derived.Hash), []byte(expectedHash)) == 1
}

func newSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
