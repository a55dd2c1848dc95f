package utils

import (
	"TeleVault/config"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type ConsoleClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateConsoleToken creates a JWT session for the admin console.
func GenerateConsoleToken(username string) (string, error) {
	claims := ConsoleClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(config.AppConfig.JWTSecret))
	if err != nil {
		log.Println("Error signing token:", err)
		return "", err
	}
	return tokenString, nil
}

// VerifyConsoleToken parses and validates a console JWT.
func VerifyConsoleToken(tokenString string) (*ConsoleClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ConsoleClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*ConsoleClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
