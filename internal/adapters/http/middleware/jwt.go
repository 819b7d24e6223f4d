package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "onda"

// ErrInvalidToken is returned for bearer tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims of an API token.
type Claims struct {
	Email        string `json:"email"`
	NomeCompleto string `json:"nome,omitempty"`
	Permissao    string `json:"permissao"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 API tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer.
// PRE: len(secret) > 0, ttl > 0
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token for the session's usuario.
// POST: returns the compact token and its expiry
func (ti *TokenIssuer) Issue(sess Session) (string, time.Time, error) {
	now := ti.now()
	exp := now.Add(ti.ttl)
	claims := Claims{
		Email:        sess.Email,
		NomeCompleto: sess.NomeCompleto,
		Permissao:    sess.Permissao,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   sess.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses a token and returns the session it carries.
// POST: only HS256 tokens from this issuer, unexpired, with a subject are accepted
func (ti *TokenIssuer) Verify(raw string) (Session, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.Permissao == "" {
		return Session{}, ErrInvalidToken
	}
	sess := Session{
		AccountID:    claims.Subject,
		Email:        claims.Email,
		NomeCompleto: claims.NomeCompleto,
		Permissao:    claims.Permissao,
		ViaToken:     true,
	}
	if claims.IssuedAt != nil {
		sess.CreatedAt = claims.IssuedAt.Time
	}
	return sess, nil
}
