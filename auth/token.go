package auth

import (
	"errors"
	"fmt"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/golang-jwt/jwt/v5"

	"github.com/hyeonkim-dev/docintake/types"
)

// ErrTokenInvalid covers expired, malformed, badly signed and revoked tokens.
var ErrTokenInvalid = errors.New("invalid token")

// Claims is the token payload: the subject user and their email.
type Claims struct {
	UserID string `json:"userID"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies bearer tokens. This is the single
// credential-verification capability used by the HTTP middleware and every
// handler that needs a principal.
type TokenService struct {
	secret  []byte
	expiry  time.Duration
	revoked *ttlworker.Cache[string, bool]
}

func NewTokenService(cfg types.AuthConfig) *TokenService {
	expiry := time.Duration(cfg.ExpiryMinutes) * time.Minute
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		expiry: expiry,
		// Revoked entries only need to outlive the longest token.
		revoked: ttlworker.NewCache[string, bool](expiry),
	}
}

// Issue signs an HS256 token for the user.
func (s *TokenService) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token, rejecting revoked ones.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if s.revoked.Get(tokenString) {
		return nil, fmt.Errorf("%w: revoked", ErrTokenInvalid)
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

// Revoke adds the token to the denylist until it would have expired anyway.
func (s *TokenService) Revoke(tokenString string) {
	s.revoked.Set(tokenString, true)
}
