package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const shareCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ShareCodeLength is the fixed length of redemption codes.
const ShareCodeLength = 10

// GenShareCode generates a share code from a cryptographically secure source.
// Uniqueness is enforced at insertion time by the store's unique constraint.
func GenShareCode() string {
	code := make([]byte, ShareCodeLength)
	max := big.NewInt(int64(len(shareCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(err)
		}
		code[i] = shareCodeAlphabet[n.Int64()]
	}
	return string(code)
}

// BuildShareLink builds the deep link another user opens to redeem a file.
func BuildShareLink(botUsername, shareCode string) string {
	return fmt.Sprintf("https://t.me/%s?start=file_%s", botUsername, shareCode)
}

// ExtractShareCode inverts BuildShareLink; it also accepts a bare
// "file_<code>" start parameter. Returns "" when no code is present.
func ExtractShareCode(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "?start="); idx >= 0 {
		s = s[idx+len("?start="):]
	}
	if !strings.HasPrefix(s, "file_") {
		return ""
	}
	return strings.TrimPrefix(s, "file_")
}
