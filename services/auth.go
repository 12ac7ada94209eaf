package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cast-press/models"
)

// ErrInvalidToken is returned for malformed, forged or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// AdminClaims is the JWT payload issued on login.
type AdminClaims struct {
	AdminID      uint   `json:"id"`
	Username     string `json:"username"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	jwt.RegisteredClaims
}

// IssueToken signs a token for the admin, valid for ttl.
func IssueToken(admin *models.Admin, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		AdminID:      admin.ID,
		Username:     admin.Username,
		IsSuperAdmin: admin.IsSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry and returns the claims.
func ParseToken(tokenString, secret string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(secret), nil
		})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
