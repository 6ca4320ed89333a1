package util

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	if len(password) > 72 {
		return errors.New("password must be at most 72 characters long")
	}
	return nil
}

func HashPassword(password string) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
}

func VerifyPassword(password string, hash []byte) bool {
	if len(password) == 0 || len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
