package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"github.com/google/uuid"
)

// GetToken returns a random opaque token.
func GetToken() string {
	return uuid.NewString()
}

// GenReferralCode returns a new referral code. Codes are immutable once
// assigned to a user.
func GenReferralCode() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return "ref_" + hex.EncodeToString(buf)
}

// GenAPIKey returns a new REST API credential.
func GenAPIKey() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return "api_" + hex.EncodeToString(buf)
}

// SecureCompare compares two credentials in constant time.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
