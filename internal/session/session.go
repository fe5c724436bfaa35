// Package session authenticates console requests and owns the saved tenant
// preference. The gateway does not issue credentials itself; it validates
// the bearer token minted by the platform backend and exposes the identity
// to the guard pipeline.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// SuperAdminRole bypasses all permission checks. This is intentional
// platform behavior, not a gap: permission data is never loaded for
// super-admins.
const SuperAdminRole = "super_admin"

var (
	ErrNoToken      = errors.New("session: no bearer token")
	ErrTokenRevoked = errors.New("session: token revoked")
	ErrInvalidToken = errors.New("session: invalid token")
)

// Session is the authenticated identity behind a console request.
type Session struct {
	UserID string
	Roles  []string
	Token  string
}

// SuperAdmin reports whether the session holds the distinguished
// super_admin role.
func (s *Session) SuperAdmin() bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if strings.EqualFold(strings.TrimSpace(r), SuperAdminRole) {
			return true
		}
	}
	return false
}

// HasRole reports whether the session holds the named role
// (case-insensitive).
func (s *Session) HasRole(role string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if strings.EqualFold(strings.TrimSpace(r), role) {
			return true
		}
	}
	return false
}

// Claims is the token payload the backend issues for console users.
type Claims struct {
	UserID string   `json:"uid"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Service validates bearer tokens and tracks revocations.
type Service struct {
	secretKey []byte
	issuer    string
	expiry    time.Duration
	redis     redis.UniversalClient
}

// NewService creates a session service. The redis client is optional; when
// nil, logout revocation degrades to a no-op.
func NewService(secretKey, issuer string, rdb redis.UniversalClient) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		expiry:    2 * time.Hour,
		redis:     rdb,
	}
}

// Parse validates a bearer token and returns the session it represents.
func (s *Service) Parse(ctx context.Context, tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}
	if s.isRevoked(ctx, tokenString) {
		return nil, ErrTokenRevoked
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &Session{
		UserID: claims.UserID,
		Roles:  append([]string{}, claims.Roles...),
		Token:  tokenString,
	}, nil
}

// Issue mints a signed token for the given identity. Used by the dev login
// flow and the test suite; production tokens come from the backend.
func (s *Service) Issue(userID string, roles []string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Revoke blacklists a token for its remaining lifetime. Called on logout so
// the session cannot be replayed.
func (s *Service) Revoke(ctx context.Context, tokenString string) error {
	if s.redis == nil {
		return nil
	}

	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	key := "admingate:revoked:" + tokenString
	if err := s.redis.Set(ctx, key, "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *Service) isRevoked(ctx context.Context, tokenString string) bool {
	if s.redis == nil {
		return false
	}
	exists, err := s.redis.Exists(ctx, "admingate:revoked:"+tokenString).Result()
	if err != nil {
		// Fail open so a redis outage does not lock every user out.
		return false
	}
	return exists > 0
}

// ExtractBearer strips the "Bearer " prefix from an Authorization header.
func ExtractBearer(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return header[len(prefix):]
	}
	return header
}

type sessionKey struct{}

// WithSession attaches the authenticated session to the context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext retrieves the session, if the request is authenticated.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}
