package service

import (
	"time"

	"github.com/fuguang-next/internal/config"
	"github.com/fuguang-next/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenExpireHours = 24

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// AdminJWTClaims 运营后台 JWT 声明
type AdminJWTClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService 令牌签发与校验
type AuthService struct {
	userJWT  config.JWTConfig
	adminJWT config.JWTConfig
}

// NewAuthService 创建鉴权服务
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{userJWT: cfg.UserJWT, adminJWT: cfg.JWT}
}

// GenerateUserJWT 生成用户 Token
func (s *AuthService) GenerateUserJWT(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(expireHours(s.userJWT))
	claims := UserJWTClaims{
		UserID:           user.ID,
		Username:         user.Username,
		TokenVersion:     user.TokenVersion,
		RegisteredClaims: registeredClaims(expiresAt),
	}
	return sign(claims, s.userJWT.SecretKey, expiresAt)
}

// ParseUserJWT 解析用户 Token
func (s *AuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	claims := &UserJWTClaims{}
	if err := parse(tokenString, s.userJWT.SecretKey, claims); err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateAdminJWT 生成运营 Token
func (s *AuthService) GenerateAdminJWT(adminID uint, username string) (string, time.Time, error) {
	expiresAt := time.Now().Add(expireHours(s.adminJWT))
	claims := AdminJWTClaims{
		AdminID:          adminID,
		Username:         username,
		RegisteredClaims: registeredClaims(expiresAt),
	}
	return sign(claims, s.adminJWT.SecretKey, expiresAt)
}

// ParseAdminJWT 解析运营 Token
func (s *AuthService) ParseAdminJWT(tokenString string) (*AdminJWTClaims, error) {
	claims := &AdminJWTClaims{}
	if err := parse(tokenString, s.adminJWT.SecretKey, claims); err != nil {
		return nil, err
	}
	if claims.AdminID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func registeredClaims(expiresAt time.Time) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

func sign(claims jwt.Claims, secret string, expiresAt time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, ErrInvalidToken
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func parse(tokenString, secret string, claims jwt.Claims) error {
	if secret == "" || tokenString == "" {
		return ErrInvalidToken
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func expireHours(cfg config.JWTConfig) time.Duration {
	hours := cfg.ExpireHours
	if hours <= 0 {
		hours = defaultTokenExpireHours
	}
	return time.Duration(hours) * time.Hour
}
