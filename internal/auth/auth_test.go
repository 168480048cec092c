package auth

import (
	"context"
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("BURNOUT_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	token, err := GenerateToken("user-42", RoleManager, 30*time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if claims.Subject != "user-42" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != string(RoleManager) {
		t.Fatalf("role was not preserved: %v", claims.Role)
	}
}

func TestGenerateTokenRejectsBadInput(t *testing.T) {
	t.Setenv("BURNOUT_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	if _, err := GenerateToken("", RoleAdmin, time.Minute); err == nil {
		t.Fatal("expected error for empty user")
	}
	if _, err := GenerateToken("u1", Role("owner"), time.Minute); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if _, err := GenerateToken("u1", RoleAdmin, 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestParseAndValidateRejectsGarbage(t *testing.T) {
	t.Setenv("BURNOUT_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	if _, err := ParseAndValidate(""); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := ParseAndValidate("not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = ContextWithUser(ctx, "user-7", RoleAdmin)

	id, ok := UserIDFromContext(ctx)
	if !ok || id != "user-7" {
		t.Fatalf("unexpected user id: %s, ok=%v", id, ok)
	}
	role, ok := RoleFromContext(ctx)
	if !ok || role != RoleAdmin {
		t.Fatalf("unexpected role: %s, ok=%v", role, ok)
	}

	if _, ok := UserIDFromContext(context.Background()); ok {
		t.Fatal("expected no user id on fresh context")
	}
	role, ok = RoleFromContext(context.Background())
	if ok || role != RoleEmployee {
		t.Fatalf("expected employee default, got %s ok=%v", role, ok)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword(hash, "s3cret"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}
