package userstore

import (
	"errors"
	"fmt"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

// MinPasswordLength is enforced on registration and password changes.
const MinPasswordLength = 8

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", apperr.InvalidInput(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperr.InvalidInput("password is too long")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
