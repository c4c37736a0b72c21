package pins

import (
	"errors"
	"math/rand"

	"golang.org/x/crypto/bcrypt"
)

var (
	letterRunes = []rune("abcdefghijklmnopqrstuvwxyz1234567890")

	ScopeManager = "manager"
	ScopeScorer  = "scorer"
)

// GeneratePin returns a random lowercase alphanumeric pin of length l.
func GeneratePin(l int) string {
	b := make([]rune, l)
	for i := range b {
		b[i] = letterRunes[rand.Intn(len(letterRunes))]
	}
	return string(b)
}

// Hash returns the bcrypt hash of a plaintext pin for storage.
func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Matches checks a plaintext pin against a stored hash.
func Matches(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}
	return true, nil
}
