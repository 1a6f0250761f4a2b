package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// pbkdf2Prefix marks hashes imported from the previous deployment:
// pbkdf2_sha256$<iterations>$<salt>$<base64 digest>
const pbkdf2Prefix = "pbkdf2_sha256"

// PasswordHasher hashes passwords for storage and verifies candidates against them
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check reports whether password produced hash.
	Check(password, hash string) bool

	// NeedsRehash reports whether hash should be replaced with a fresh Hash
	// output the next time the plaintext is known.
	NeedsRehash(hash string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a PasswordHasher producing bcrypt hashes with the given
// cost. Legacy PBKDF2-SHA256 hashes are still accepted by Check.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

func (h *bcryptHasher) Check(password, hash string) bool {
	if strings.HasPrefix(hash, pbkdf2Prefix+"$") {
		return checkPBKDF2(password, hash)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *bcryptHasher) NeedsRehash(hash string) bool {
	if strings.HasPrefix(hash, pbkdf2Prefix+"$") {
		return true
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return cost != h.cost
}

func checkPBKDF2(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(want) == 0 {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(parts[2]), iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
