package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/torn-watcher/internal/config"
)

// ScopeAll lets a token invoke every function.
const ScopeAll = "*"

// Claims identifies who triggered a function run and which functions it may call.
type Claims struct {
	Caller string   `json:"caller"`
	Scope  []string `json:"scope"`
	jwt.RegisteredClaims
}

// Allows reports whether the token may invoke function.
func (c *Claims) Allows(function string) bool {
	return slices.Contains(c.Scope, ScopeAll) || slices.Contains(c.Scope, function)
}

// Provider signs and verifies RS256 JWTs. The server only needs the public
// key; the invoke tool only needs the private key.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
}

// NewVerifier loads the public key used to check invocation tokens.
func NewVerifier(cfg *config.Config) (*Provider, error) {
	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &Provider{publicKey: pubKey, expiry: cfg.JWTExpiry}, nil
}

// NewSigner loads the private key used to mint invocation tokens.
func NewSigner(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &Provider{privateKey: privKey, publicKey: &privKey.PublicKey, expiry: cfg.JWTExpiry}, nil
}

func (p *Provider) Sign(caller string, scope ...string) (string, error) {
	if p.privateKey == nil {
		return "", errors.New("provider has no private key")
	}
	now := time.Now()
	claims := Claims{
		Caller: caller,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
