package fakeapi

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "recipes-fakeapi"

var ErrInvalidToken = errors.New("invalid or expired token")

// claims mirrors what the client decodes for display: user_id plus the
// registered claims. The ID (jti) is what logout revokes.
type claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

func (s *Server) issueToken(userID int64, username string, expiry time.Duration) (string, string, error) {
	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.signingKey())
	if err != nil {
		return "", "", err
	}
	return signed, c.ID, nil
}

func (s *Server) validateToken(token string) (*claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.signingKey(), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	s.mu.Lock()
	revoked := s.revoked[c.ID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrInvalidToken
	}
	return c, nil
}

func (s *Server) signingKey() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secret
}
