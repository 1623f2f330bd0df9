package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword compares a bcrypt hashed password with a plain text password
func ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// isBcryptHash reports whether a stored credential looks like a bcrypt
// hash. Legacy imported accounts stored bare passwords.
func isBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// VerifyPassword checks a login attempt against the stored credential.
// Bcrypt hashes are compared properly; anything else is treated as a
// legacy plaintext credential and compared in constant time, with legacy
// reported true so the caller can rehash on successful login.
func VerifyPassword(stored, plain string) (ok bool, legacy bool) {
	if isBcryptHash(stored) {
		return ComparePassword(stored, plain) == nil, false
	}
	if stored == "" {
		return false, false
	}
	match := subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
	return match, true
}
