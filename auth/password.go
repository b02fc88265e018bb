package auth

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const passwordSpecials = `!@#$%^&*()-_=+{};:,<.>`

// HashPassword hashes with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateEmail checks the address shape.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(strings.TrimSpace(email)) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword enforces the account password policy: at least 8
// characters with at least one uppercase letter and one special character.
func ValidatePassword(password string) error {
	if len(password) < 8 || !strings.ContainsFunc(password, isUpper) || !strings.ContainsAny(password, passwordSpecials) {
		return fmt.Errorf("password must be at least 8 characters long and include at least one uppercase letter and one special character")
	}
	return nil
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
