// API 인증 서비스
// 사용자/조직 CRUD는 외부 모듈 소유. 여기서는 서비스 간 호출에 쓰는
// HMAC 액세스 토큰의 발급/검증만 담당한다.

package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pulsewatch/backend/internal/config"
	"github.com/pulsewatch/backend/internal/model"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMisconfigured = errors.New("auth config invalid")
)

type AuthService struct {
	jwtSecret []byte
	accessTTL time.Duration
}

type authClaims struct {
	OrgID string `json:"orgId"`
	jwt.RegisteredClaims
}

func NewAuthService(cfg config.AuthConfig) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}
	accessTTL, err := time.ParseDuration(cfg.JWTAccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}
	return &AuthService{
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: accessTTL,
	}, nil
}

// IssueAccessToken - subject(호출 주체)와 조직 id로 토큰 발급
func (s *AuthService) IssueAccessToken(subject, orgID string) (string, error) {
	now := time.Now()
	claims := authClaims{
		OrgID: orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ParseAccessToken - 토큰 검증 후 호출 주체 복원
func (s *AuthService) ParseAccessToken(tokenStr string) (*model.AuthUser, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	return &model.AuthUser{
		Subject: claims.Subject,
		OrgID:   claims.OrgID,
	}, nil
}
