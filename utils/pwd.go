package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// GetPwd hashes a file password with bcrypt.
func GetPwd(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPwd verifies a plaintext against a bcrypt hash. bcrypt's comparison
// is constant-time with respect to correctness.
func CheckPwd(pwd string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pwd)) == nil
}
