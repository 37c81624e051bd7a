package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	tokenIssuer = "node-wallet"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims carried by access and refresh tokens. The subject is the user id.
// Refresh tokens carry no email or role.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 access and refresh tokens. Refresh tokens are
// signed with their own secret so one kind can never be replayed as the other.
type Issuer struct {
	secret        []byte
	ttl           time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
	now           func() time.Time
}

// IssuerOption customises an Issuer.
type IssuerOption func(*Issuer)

// WithRefreshToken sets the refresh token secret and lifetime. Empty or
// non-positive values keep the defaults.
func WithRefreshToken(secret string, ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		if secret != "" {
			i.refreshSecret = []byte(secret)
		}
		if ttl > 0 {
			i.refreshTTL = ttl
		}
	}
}

// NewIssuer creates a token issuer. Without WithRefreshToken, refresh tokens
// share the access secret and live for a week.
func NewIssuer(secret string, ttl time.Duration, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		secret:        []byte(secret),
		ttl:           ttl,
		refreshSecret: []byte(secret),
		refreshTTL:    defaultRefreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// TTL is the lifetime of issued access tokens.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs an access token for the user.
func (i *Issuer) Issue(userID, email, role string) (string, time.Time, error) {
	return i.sign(&Claims{Email: email, Role: role, Type: tokenTypeAccess}, userID, i.secret, i.ttl)
}

// IssueRefresh signs a refresh token for the user.
func (i *Issuer) IssueRefresh(userID string) (string, time.Time, error) {
	return i.sign(&Claims{Type: tokenTypeRefresh}, userID, i.refreshSecret, i.refreshTTL)
}

// Parse verifies an access token and returns its claims.
func (i *Issuer) Parse(token string) (*Claims, error) {
	return i.parse(token, i.secret, tokenTypeAccess)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (i *Issuer) ParseRefresh(token string) (*Claims, error) {
	return i.parse(token, i.refreshSecret, tokenTypeRefresh)
}

func (i *Issuer) sign(claims *Claims, userID string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (i *Issuer) parse(token string, secret []byte, typ string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.Type != typ {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
