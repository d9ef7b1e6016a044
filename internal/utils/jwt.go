package utils

import (
	"errors"
	"fmt"
	"time"

	"cargodesk/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type PrincipalKind string

const (
	PrincipalAdmin  PrincipalKind = "admin"
	PrincipalClient PrincipalKind = "client"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	PrincipalID uint64        `json:"pid,string"`
	Kind        PrincipalKind `json:"kind"`
	Role        string        `json:"role,omitempty"`
	Type        TokenType     `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenIssuer signs and verifies HS256 tokens. Access and refresh tokens use
// separate secrets so one can never be replayed as the other.
type TokenIssuer struct {
	cfg config.JWTConfig
	now func() time.Time
}

func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, now: time.Now}
}

func (t *TokenIssuer) IssuePair(kind PrincipalKind, id uint64, role string) (TokenPair, error) {
	access, err := t.issue(kind, id, role, AccessToken)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.issue(kind, id, role, RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) IssueAccess(kind PrincipalKind, id uint64, role string) (string, error) {
	return t.issue(kind, id, role, AccessToken)
}

func (t *TokenIssuer) issue(kind PrincipalKind, id uint64, role string, typ TokenType) (string, error) {
	secret, ttl := t.cfg.AccessSecret, t.cfg.AccessTTL
	if typ == RefreshToken {
		secret, ttl = t.cfg.RefreshSecret, t.cfg.RefreshTTL
	}

	now := t.now()
	claims := Claims{
		PrincipalID: id,
		Kind:        kind,
		Role:        role,
		Type:        typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%s:%d", kind, id),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAccess verifies an access token issued for kind.
func (t *TokenIssuer) ParseAccess(tokenString string, kind PrincipalKind) (*Claims, error) {
	return t.parse(tokenString, kind, AccessToken, t.cfg.AccessSecret)
}

// ParseRefresh verifies a refresh token issued for kind.
func (t *TokenIssuer) ParseRefresh(tokenString string, kind PrincipalKind) (*Claims, error) {
	return t.parse(tokenString, kind, RefreshToken, t.cfg.RefreshSecret)
}

func (t *TokenIssuer) parse(tokenString string, kind PrincipalKind, typ TokenType, secret string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Kind != kind || claims.Type != typ {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
