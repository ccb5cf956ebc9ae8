package auth

import (
	"testing"
	"time"

	"github.com/docvault/docvault/internal/models"
)

func TestSignAndParseJWT(t *testing.T) {
	token, err := SignJWT("user-123", models.RoleEditor, "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("subject = %q, want user-123", claims.Subject)
	}
	if claims.Role != models.RoleEditor {
		t.Fatalf("role = %q, want editor", claims.Role)
	}
	if claims.ID == "" {
		t.Fatalf("expected a jti to be set")
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, err := SignJWT("user-123", models.RoleViewer, "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Fatalf("expected parse to fail with the wrong secret")
	}
}

func TestParseJWT_Expired(t *testing.T) {
	token, err := SignJWT("user-123", models.RoleViewer, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(token, "secret"); err == nil {
		t.Fatalf("expected parse to fail for an expired token")
	}
}

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "hunter2hunter2") {
		t.Fatalf("expected password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
}
