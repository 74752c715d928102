package postgres

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword creates a bcrypt hash of the client's MD5 password digest.
//
// Precondition: passwordMD5 must be non-empty.
func HashPassword(passwordMD5 string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passwordMD5), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares an MD5 digest against a bcrypt hash.
func CheckPassword(passwordMD5, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(passwordMD5)) == nil
}

// Verifier checks login passwords and remembers hash/digest pairs that
// already verified, so reconnects skip the bcrypt cost.
type Verifier struct {
	cache *gocache.Cache
}

// NewVerifier creates a Verifier whose remembered pairs expire after ttl.
// A zero ttl disables remembering.
func NewVerifier(ttl time.Duration) *Verifier {
	v := &Verifier{}
	if ttl > 0 {
		v.cache = gocache.New(ttl, 2*ttl)
	}
	return v
}

// Verify reports whether passwordMD5 matches hash.
func (v *Verifier) Verify(passwordMD5, hash string) bool {
	if v.cache != nil {
		if known, ok := v.cache.Get(hash); ok {
			return known.(string) == passwordMD5
		}
	}
	if !CheckPassword(passwordMD5, hash) {
		return false
	}
	if v.cache != nil {
		v.cache.SetDefault(hash, passwordMD5)
	}
	return true
}

// Remembered returns the number of cached pairs.
func (v *Verifier) Remembered() int {
	if v.cache == nil {
		return 0
	}
	return v.cache.ItemCount()
}
