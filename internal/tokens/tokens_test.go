package tokens

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/liamneesonsarm/pickemup/internal/account"
	"github.com/liamneesonsarm/pickemup/internal/config"
)

func encodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func TestGenerateAccessToken_ValidAndClaims(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-32-bytes-should-be-long-enough"

	u := &account.User{ID: "user-123", Name: "Test User", Email: "test@example.com"}
	tokenStr, err := GenerateAccessToken(cfg, u, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	sub, err := ParseAccessToken(cfg, tokenStr)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if sub != u.ID {
		t.Fatalf("unexpected sub claim: got=%v want=%v", sub, u.ID)
	}
}

func TestGenerateAccessToken_Expiry(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "another-secret-32-bytes-longgggg"
	u := &account.User{ID: "u2", Name: "X", Email: "x@x"}
	tokenStr, err := GenerateAccessToken(cfg, u, 1*time.Second)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	// wait for expiry
	time.Sleep(2 * time.Second)
	if _, err := ParseAccessToken(cfg, tokenStr); err == nil {
		t.Fatalf("expected token parse to fail after expiry")
	}
}

func TestParseAccessToken_WrongSecretFails(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "secret-one-32-bytes-xxxxxxxxxxxxxxxx"
	u := &account.User{ID: "u3", Name: "Bob", Email: "bob@example.com"}
	tokenStr, err := GenerateAccessToken(cfg, u, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	other := &config.Config{}
	other.JWT.Secret = "different-secret-xxxxxxxxxxxxxxxx"
	if _, err := ParseAccessToken(other, tokenStr); err == nil {
		t.Fatalf("expected parse to fail with wrong secret")
	}
}

func TestParseAccessToken_Malformed(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "x"
	if _, err := ParseAccessToken(cfg, "not.a.jwt"); err == nil {
		t.Fatalf("expected parse to fail for malformed token")
	}
}

// Rejected when alg=none (unsigned token)
func TestParseAccessToken_AlgNoneRejected(t *testing.T) {
	payload := `{"sub":"u-none","exp":9999999999}`
	headerEnc := encodeSegment([]byte(`{"alg":"none"}`))
	payloadEnc := encodeSegment([]byte(payload))
	tok := headerEnc + "." + payloadEnc + "."
	cfg := &config.Config{}
	cfg.JWT.Secret = "x"
	if _, err := ParseAccessToken(cfg, tok); err == nil {
		t.Fatalf("expected parse to reject alg=none token")
	}
}

// Tampering with payload must fail signature verification
func TestParseAccessToken_TamperedPayload(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "tamper-test-secret-32-bytes-xxxxxxx"
	u := &account.User{ID: "user-t", Name: "Tamper", Email: "t@example.com"}
	tokenStr, err := GenerateAccessToken(cfg, u, 5*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token parts")
	}
	payloadBytes, _ := base64.RawURLEncoding.DecodeString(parts[1])
	payloadStr := string(payloadBytes)
	payloadStr = strings.Replace(payloadStr, "user-t", "attacker", 1)
	parts[1] = encodeSegment([]byte(payloadStr))
	tampered := strings.Join(parts, ".")
	if _, err := ParseAccessToken(cfg, tampered); err == nil {
		t.Fatalf("expected signature verification to fail for tampered token")
	}
}
