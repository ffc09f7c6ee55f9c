package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
)

func newTestSessions(t *testing.T, store RevocationStore) *Sessions {
	t.Helper()
	s, err := NewSessions("test-secret", "dev", time.Hour, store)
	if err != nil {
		t.Fatalf("new sessions: %v", err)
	}
	return s
}

func TestIssueAndVerify(t *testing.T) {
	s := newTestSessions(t, nil)
	token, issued, err := s.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sess, err := s.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sess.UserID != 42 || sess.TokenID != issued.TokenID {
		t.Fatalf("unexpected session %+v", sess)
	}
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	s := newTestSessions(t, nil)
	token, _, _ := s.Issue(1)
	if _, err := s.Verify(context.Background(), token+"x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}

	other, _ := NewSessions("another-secret", "dev", time.Hour, nil)
	foreign, _, _ := other.Issue(1)
	if _, err := s.Verify(context.Background(), foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign token, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1", ID: "x"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := s.Verify(context.Background(), unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg none, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	s := newTestSessions(t, nil)
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	token, _, _ := s.Issue(1)
	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := s.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejection, got %v", err)
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	if _, err := NewSessions("", "production", time.Hour, nil); !errors.Is(err, errMissingSecret) {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestRevokeWithMemoryStore(t *testing.T) {
	s := newTestSessions(t, NewMemoryRevocations())
	token, _, _ := s.Issue(3)
	if err := s.Revoke(context.Background(), token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := s.Verify(context.Background(), token); !errors.Is(err, ErrRevokedToken) {
		t.Fatalf("expected revoked, got %v", err)
	}
	if err := s.Revoke(context.Background(), "garbage"); err != nil {
		t.Fatalf("revoking garbage should be a no-op, got %v", err)
	}
}

func TestRevokeWithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	s := newTestSessions(t, NewRedisRevocations(rdb))
	token, sess, _ := s.Issue(9)
	if err := s.Revoke(context.Background(), token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := s.Verify(context.Background(), token); !errors.Is(err, ErrRevokedToken) {
		t.Fatalf("expected revoked, got %v", err)
	}
	if ttl := mr.TTL(revokedKeyPrefix + sess.TokenID); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected ttl bounded by token lifetime, got %s", ttl)
	}

	mr.FastForward(2 * time.Hour)
	revoked, err := NewRedisRevocations(rdb).IsRevoked(context.Background(), sess.TokenID)
	if err != nil || revoked {
		t.Fatalf("expired revocation should be gone, got %v %v", revoked, err)
	}
}

func TestMemoryRevocationsExpire(t *testing.T) {
	m := NewMemoryRevocations()
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	_ = m.Revoke(context.Background(), "a", base.Add(time.Minute))
	if ok, _ := m.IsRevoked(context.Background(), "a"); !ok {
		t.Fatalf("expected revoked")
	}
	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	if ok, _ := m.IsRevoked(context.Background(), "a"); ok {
		t.Fatalf("expected expiry")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatalf("hash must not equal the password")
	}
	if err := CheckPassword(hash, "hunter22"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch")
	}
}
