package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the salted bcrypt hash of raw.
func HashPassword(raw string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword reports whether raw matches hash. Any malformed hash is
// treated as a mismatch.
func ComparePassword(raw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// BurnCompare spends the same work as ComparePassword against a throwaway
// hash. Used when no account exists so the response time does not reveal it.
func BurnCompare(raw string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(raw))
}
