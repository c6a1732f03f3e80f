package auth

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// HashPassword produces the value expected in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", errors.Errorf("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}
