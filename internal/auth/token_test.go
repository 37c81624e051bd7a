package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute)

	token, exp, err := issuer.Issue("user-1", "a@b.co", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expected future expiry, got %s", exp)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@b.co" || claims.Role != "user" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute)

	foreign, _, err := NewIssuer("other", time.Minute).Issue("user-1", "a@b.co", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.Parse(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}

	token, _, err := issuer.Issue("user-1", "a@b.co", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	issuer.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := issuer.Parse(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected expired token, got %v", err)
	}

	if _, err := issuer.Parse("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for garbage, got %v", err)
	}
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: tokenIssuer},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := issuer.Parse(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestRefreshTokensAreSeparateFromAccessTokens(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute, WithRefreshToken("refresh-secret", time.Hour))

	refresh, exp, err := issuer.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	if d := time.Until(exp); d < 59*time.Minute || d > time.Hour {
		t.Fatalf("expected a one hour refresh token, got %s", d)
	}
	claims, err := issuer.ParseRefresh(refresh)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "" {
		t.Fatalf("unexpected refresh claims %+v", claims)
	}
	if _, err := issuer.Parse(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}

	access, _, err := issuer.Issue("user-1", "a@b.co", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.ParseRefresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}

	// Same secret for both kinds still keeps them apart by type.
	shared := NewIssuer("secret", time.Minute)
	refresh, _, err = shared.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	if _, err := shared.Parse(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("shared-secret refresh token accepted as access token: %v", err)
	}
}
