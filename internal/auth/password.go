package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher derives and verifies salted password hashes. The cost is
// tunable so tests can trade security for speed.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher clamps cost into bcrypt's supported range.
func NewPasswordHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return PasswordHasher{cost: cost}
}

// Hash derives a salted hash from the plaintext password.
func (h PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares a plaintext password with a stored hash.
func (h PasswordHasher) Verify(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
