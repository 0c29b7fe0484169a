package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the bcrypt hash stored on the user row.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// ComparePassword checks a login attempt against the stored hash. The error
// is non-nil on mismatch; callers treat any error as bad credentials.
func ComparePassword(stored string, attempt string) error {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(attempt))
}
