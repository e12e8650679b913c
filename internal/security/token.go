package security

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken indicates a bearer token that failed parsing or validation.
var ErrInvalidToken = errors.New("invalid or expired token")

// UserClaims are the JWT claims issued on login.
type UserClaims struct {
	UserID uint64 `json:"uid"`
	jwt.RegisteredClaims
}

// IssuedToken describes a freshly signed bearer token.
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// IssueUserToken signs a HS256 JWT for the user with a random token id.
func IssueUserToken(secret string, userID uint64, expiry time.Duration, now time.Time) (IssuedToken, error) {
	if strings.TrimSpace(secret) == "" {
		return IssuedToken{}, errors.New("jwt: empty secret")
	}
	if userID == 0 {
		return IssuedToken{}, errors.New("jwt: missing user id")
	}
	expiresAt := now.Add(expiry).UTC()
	tokenID := uuid.NewString()
	claims := UserClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return IssuedToken{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return IssuedToken{Token: signed, TokenID: tokenID, ExpiresAt: expiresAt}, nil
}

// ParseUserToken validates a user JWT and returns its claims.
func ParseUserToken(secret, token string) (*UserClaims, error) {
	claims := &UserClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
