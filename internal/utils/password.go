package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a passcode with bcrypt. Used to produce the
// CLEAR_PASSCODE_HASH value guarding the clear-scores endpoint.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
