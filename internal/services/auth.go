package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/splitcpg/splitcpg-backend/internal/pkg/ctxutil"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
)

type identityClaims struct {
	CompanyID string `json:"companyId"`
	jwt.RegisteredClaims
}

// AuthService verifies bearer tokens and extracts the request identity.
type AuthService interface {
	ParseToken(token string) (*ctxutil.RequestData, error)
}

type authService struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthService(baseLog *logger.Logger) (AuthService, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}
	return &authService{
		log:    baseLog.With("service", "AuthService"),
		secret: []byte(secret),
	}, nil
}

func (s *authService) ParseToken(token string) (*ctxutil.RequestData, error) {
	claims := &identityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim")
	}
	rd := &ctxutil.RequestData{UserID: userID}
	if claims.CompanyID != "" {
		companyID, err := uuid.Parse(claims.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("invalid companyId claim")
		}
		rd.CompanyID = companyID
	}
	return rd, nil
}
