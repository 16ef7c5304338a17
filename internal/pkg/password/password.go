package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost factor used for account passwords
const DefaultCost = 12

// ErrEmpty is returned when hashing an empty password
var ErrEmpty = errors.New("password is empty")

// Hash hashes password using bcrypt at DefaultCost
func Hash(password string) (string, error) {
	return HashWithCost(password, DefaultCost)
}

// HashWithCost hashes password with an explicit cost (tests use bcrypt.MinCost)
func HashWithCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrEmpty
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(b), err
}

// Verify compares password with hash
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
