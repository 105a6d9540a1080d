package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL is how long an issued token stays valid. The token is stateless:
// there is no revocation, so validity is purely signature plus this window.
const tokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and verifies the bearer tokens that gate protected
// routes. The signing secret is fixed for the life of the process.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

func NewTokenManager(secret string) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &TokenManager{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// Issue signs a token carrying subjectID, valid from now until now + 24h.
func (m *TokenManager) Issue(subjectID string) (string, error) {
	now := m.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// Verify checks the signature and expiry and returns the embedded subject
// id. Forged, malformed and expired tokens all come back as ErrInvalidToken;
// callers cannot tell the cases apart, so responses leak nothing an attacker
// could use as an oracle.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
