// Package cryptox turns typed passwords into the opaque credential stored
// with a user.
package cryptox

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	KeySize  = 32
)

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// DeriveCredential returns salt || argon2id(password, salt) with a fresh
// random salt. The password itself is never part of the result.
func DeriveCredential(password []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.New("empty password")
	}
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return append(salt, deriveKey(password, salt)...), nil
}
