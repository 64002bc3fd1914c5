package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("asha@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	parsed, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims should be MapClaims")
	}
	if claims["email"] != "asha@example.com" {
		t.Errorf("email claim: got %v", claims["email"])
	}
	if claims["type"] != "access" {
		t.Errorf("type claim: got %v", claims["type"])
	}
}

func TestRefreshTokenCarriesSession(t *testing.T) {
	token, err := GenerateRefreshToken("asha@example.com", "session-123")
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	parsed, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if claims["type"] != "refresh" {
		t.Errorf("type claim: got %v", claims["type"])
	}
	if claims["sessionId"] != "session-123" {
		t.Errorf("sessionId claim: got %v", claims["sessionId"])
	}
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	if _, err := ValidateJWT("not.a.token"); err == nil {
		t.Error("garbage token should not validate")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !ValidatePassword(hash, "s3cret") {
		t.Error("correct password should validate")
	}
	if ValidatePassword(hash, "wrong") {
		t.Error("wrong password should not validate")
	}
}
