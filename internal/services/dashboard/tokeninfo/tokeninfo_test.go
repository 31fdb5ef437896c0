package tokeninfo

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/louisbranch/chemviz/internal/services/dashboard/platform/errors"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-only-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestInspectReadsAccessClaims(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	token := signedToken(t, jwt.MapClaims{
		"token_type": "access",
		"user_id":    42,
		"iat":        issued.Unix(),
		"exp":        issued.Add(5 * time.Minute).Unix(),
	})

	info, err := Inspect(token)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.UserID != "42" || info.TokenType != "access" {
		t.Fatalf("Inspect() = %+v", info)
	}
	if !info.IssuedAt.Equal(issued) {
		t.Fatalf("IssuedAt = %v, want %v", info.IssuedAt, issued)
	}
	if info.Expired(issued.Add(time.Minute)) {
		t.Fatal("Expired() = true before expiry")
	}
	if !info.Expired(issued.Add(5 * time.Minute)) {
		t.Fatal("Expired() = false at expiry")
	}
	if got := info.Identity(); got != "user 42" {
		t.Fatalf("Identity() = %q", got)
	}
}

func TestInspectSubjectOnly(t *testing.T) {
	t.Parallel()

	info, err := Inspect(signedToken(t, jwt.MapClaims{"sub": "operator"}))
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.Identity() != "operator" {
		t.Fatalf("Identity() = %q, want operator", info.Identity())
	}
	if info.Expired(time.Now()) {
		t.Fatal("Expired() = true without exp claim")
	}
}

func TestInspectRejectsNonJWT(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "  ", "opaque-token", "a.b.c"} {
		_, err := Inspect(raw)
		if got := apperrors.KindOf(err); got != apperrors.KindInvalidInput {
			t.Fatalf("KindOf(Inspect(%q)) = %q, want invalid_input", raw, got)
		}
	}
}
