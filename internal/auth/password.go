package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const defaultCost = 12

// ErrPasswordTooLong is returned for inputs past bcrypt's 72-byte limit.
// bcrypt silently truncates longer input, so we refuse it outright.
var ErrPasswordTooLong = errors.New("auth: password must be 72 bytes or fewer")

// HashPassword hashes a plaintext password with bcrypt. The salt is
// generated and embedded in the output automatically.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("auth: password must not be empty")
	}
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), defaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
