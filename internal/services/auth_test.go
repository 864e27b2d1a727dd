package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
)

func newAuthFixture(t *testing.T) AuthService {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	auth, err := NewAuthService(log)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	return auth
}

func signToken(t *testing.T, secret, subject, companyID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if companyID != "" {
		claims["companyId"] = companyID
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestParseTokenExtractsIdentity(t *testing.T) {
	auth := newAuthFixture(t)
	userID := uuid.New()
	companyID := uuid.New()

	rd, err := auth.ParseToken(signToken(t, "test-secret", userID.String(), companyID.String()))
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if rd.UserID != userID || rd.CompanyID != companyID {
		t.Fatalf("identity = %+v", rd)
	}
}

func TestParseTokenWithoutCompany(t *testing.T) {
	auth := newAuthFixture(t)
	userID := uuid.New()

	rd, err := auth.ParseToken(signToken(t, "test-secret", userID.String(), ""))
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if rd.CompanyID != uuid.Nil {
		t.Errorf("CompanyID = %v, want nil", rd.CompanyID)
	}
}

func TestParseTokenRejections(t *testing.T) {
	auth := newAuthFixture(t)
	userID := uuid.New()

	cases := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, "other-secret", userID.String(), "")},
		{"garbage", "not-a-token"},
		{"missing subject", signToken(t, "test-secret", "", "")},
		{"non uuid subject", signToken(t, "test-secret", "user-42", "")},
		{"bad company claim", signToken(t, "test-secret", userID.String(), "co-1")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := auth.ParseToken(tc.token); err == nil {
				t.Error("expected rejection")
			}
		})
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	auth := newAuthFixture(t)
	claims := jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.ParseToken(token); err == nil {
		t.Error("expired token must be rejected")
	}
}
