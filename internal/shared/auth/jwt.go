package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	errMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
	ErrRevokedToken  = errors.New("token revoked")
)

// Claims is the session token payload. Subject carries the user id, ID the token id.
type Claims struct {
	jwt.RegisteredClaims
}

// Session is a verified identity.
type Session struct {
	UserID    int64
	TokenID   string
	ExpiresAt time.Time
}

// Sessions issues, verifies and revokes HS256 session tokens.
type Sessions struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

// NewSessions builds a session manager. An empty secret falls back to "dev-secret" outside production.
func NewSessions(secret, env string, ttl time.Duration, revoked RevocationStore) (*Sessions, error) {
	key, err := secretKey(secret, env)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if revoked == nil {
		revoked = NewMemoryRevocations()
	}
	return &Sessions{secret: key, ttl: ttl, revoked: revoked, now: time.Now}, nil
}

// TTL is the lifetime of issued tokens.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue signs a new token for userID.
func (s *Sessions) Issue(userID int64) (string, Session, error) {
	if userID <= 0 {
		return "", Session{}, errors.New("user id is required")
	}
	now := s.now().UTC()
	sess := Session{
		UserID:    userID,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(s.ttl),
	}
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ID:        sess.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign token: %w", err)
	}
	return token, sess, nil
}

// Verify checks signature, expiry and revocation.
func (s *Sessions) Verify(ctx context.Context, token string) (Session, error) {
	sess, err := s.parse(token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, sess.TokenID)
	if err != nil {
		return Session{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Session{}, ErrRevokedToken
	}
	return sess, nil
}

// Revoke marks token unusable until it would have expired. Invalid tokens are ignored.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	sess, err := s.parse(token)
	if err != nil {
		return nil
	}
	return s.revoked.Revoke(ctx, sess.TokenID, sess.ExpiresAt)
}

func (s *Sessions) parse(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrInvalidToken
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || tok == nil || !tok.Valid {
		return Session{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 || claims.ID == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{UserID: userID, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func secretKey(secret, env string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if env == "production" && secret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET required in production", errMissingSecret)
	}
	if secret == "" {
		secret = "dev-secret"
	}
	return []byte(secret), nil
}
