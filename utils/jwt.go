package utils

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
)

var (
	jwtKeyOnce sync.Once
	jwtKey     []byte
)

// signingKey resolves JWT_SECRET on first use, not at package init, so a
// secret supplied through the .env file is picked up after godotenv runs.
// The resolved value is kept for the lifetime of the process.
func signingKey() []byte {
	jwtKeyOnce.Do(func() {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			secret = "karinderya_secret_key"
		}
		jwtKey = []byte(secret)
	})
	return jwtKey
}

type JWTClaim struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.StandardClaims
}

func GenerateToken(id string, role string) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &JWTClaim{
		ID:   id,
		Role: role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey())
}

func ValidateToken(signedToken string) (*JWTClaim, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&JWTClaim{},
		func(token *jwt.Token) (interface{}, error) {
			return signingKey(), nil
		},
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaim)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
