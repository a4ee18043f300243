// ABOUTME: JWT issuance and verification for the fake backend
// ABOUTME: HS256 tokens scoped to one principal kind, revocable by token ID

package fakebackend

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrRevokedToken = errors.New("token revoked")
	ErrWrongKind    = errors.New("token issued for another kind")
)

// Token types carried in the "typ" claim.
const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

// claims identifies the holder of a verified token.
type claims struct {
	AccountID int64
	Kind      string
	TokenID   string
	Type      string
	Expires   time.Time
}

// issuer signs and verifies tokens, and remembers revoked token IDs.
type issuer struct {
	secret []byte
	ttl    time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

func newIssuer(secret []byte, ttl time.Duration) *issuer {
	return &issuer{secret: secret, ttl: ttl, revoked: make(map[string]time.Time)}
}

// generate creates a signed token for accountID of kind.
func (i *issuer) generate(kind string, accountID int64, typ string) (string, error) {
	now := time.Now()
	ttl := i.ttl
	if typ == tokenRefresh {
		ttl *= 24
	}
	c := jwt.MapClaims{
		"sub":  strconv.FormatInt(accountID, 10),
		"kind": kind,
		"typ":  typ,
		"jti":  uuid.New().String(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(i.secret)
}

// verify validates an access token for kind.
func (i *issuer) verify(tokenString, kind string) (*claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	c := &claims{}
	c.Kind, _ = mc["kind"].(string)
	c.TokenID, _ = mc["jti"].(string)
	c.Type, _ = mc["typ"].(string)
	sub, _ := mc["sub"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.Expires = exp.Time
	}

	c.AccountID, err = strconv.ParseInt(sub, 10, 64)
	if err != nil || c.TokenID == "" {
		return nil, ErrInvalidToken
	}
	if c.Type != tokenAccess {
		return nil, ErrInvalidToken
	}
	if c.Kind != kind {
		return nil, ErrWrongKind
	}
	if i.isRevoked(c.TokenID) {
		return nil, ErrRevokedToken
	}
	return c, nil
}

// revoke invalidates a token ID until exp.
func (i *issuer) revoke(tokenID string, exp time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := time.Now()
	for id, until := range i.revoked {
		if now.After(until) {
			delete(i.revoked, id)
		}
	}
	i.revoked[tokenID] = exp
}

func (i *issuer) isRevoked(tokenID string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.revoked[tokenID]
	return ok
}
