package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims do token: usuário, empresa (tenant) e flag de admin.
type Claims struct {
	UserID    uint `json:"userId"`
	EmpresaID uint `json:"empresaId"`
	IsAdmin   bool `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Tempo de vida do access token.
const AccessTTL = 8 * time.Hour

func segredo() ([]byte, error) {
	s := os.Getenv("AUTH_JWT_SECRET")
	if s == "" {
		return nil, errors.New("AUTH_JWT_SECRET não configurado")
	}
	return []byte(s), nil
}

// GenerateAccessToken gera um JWT HS256 com usuário e empresa.
func GenerateAccessToken(userID, empresaID uint, isAdmin bool) (string, error) {
	key, err := segredo()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		EmpresaID: empresaID,
		IsAdmin:   isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ParseAndValidate valida assinatura e expiração e devolve as claims.
func ParseAndValidate(tokenStr string) (*Claims, error) {
	key, err := segredo()
	if err != nil {
		return nil, err
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("token inválido")
	}
	return claims, nil
}
