package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoPassSecret is returned when passes are requested without a signing secret.
var ErrNoPassSecret = errors.New("verification pass secret not configured")

// PassClaims is carried by a verification pass.
type PassClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// PassConfig holds verification pass settings.
type PassConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// PassIssuer signs and checks verification passes: short-lived HS256 tokens
// handed out after a successful gate check. A pass only records that someone
// answered the gate questions; it grants no admin rights.
type PassIssuer struct {
	cfg PassConfig
}

// NewPassIssuer creates a pass issuer.
func NewPassIssuer(cfg PassConfig) *PassIssuer {
	return &PassIssuer{cfg: cfg}
}

// Issue creates a pass for name.
func (p *PassIssuer) Issue(name string) (string, error) {
	if len(p.cfg.Secret) == 0 {
		return "", ErrNoPassSecret
	}
	now := time.Now()
	claims := PassClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.cfg.Secret)
}

// Validate parses and validates a pass.
func (p *PassIssuer) Validate(tokenString string) (*PassClaims, error) {
	if len(p.cfg.Secret) == 0 {
		return nil, ErrNoPassSecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &PassClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse pass: %w", err)
	}

	claims, ok := token.Claims.(*PassClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid pass claims")
	}

	if p.cfg.Issuer != "" && claims.Issuer != p.cfg.Issuer {
		return nil, fmt.Errorf("invalid issuer")
	}

	return claims, nil
}
