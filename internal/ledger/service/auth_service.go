package service

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/kosu/internal/config"
	"github.com/bitfantasy/kosu/internal/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials 登录口令错误
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService 单一登录门。没有用户表：口令与配置中的 bcrypt 哈希
// 比对，通过后签发 access/refresh 令牌对，refresh 的 jti 存 redis。
type AuthService struct {
	rdb *redis.Client
	cfg *config.Config
}

func NewAuthService(rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{rdb: rdb, cfg: cfg}
}

// TokenPair Token对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login 校验口令并签发令牌对
func (s *AuthService) Login(ctx context.Context, password string) (*TokenPair, error) {
	if password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.Auth.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issuePair(ctx)
}

// Refresh 校验 refresh 令牌并轮换令牌对
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := jwt.ParseWithClaims(refreshToken, &middleware.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	claims, ok := token.Claims.(*middleware.JWTClaims)
	if !ok || claims.ID == "" {
		return nil, ErrInvalidCredentials
	}

	if err := s.rdb.Get(ctx, "token:refresh:"+claims.ID).Err(); err != nil {
		return nil, ErrInvalidCredentials
	}
	s.rdb.Del(ctx, "token:refresh:"+claims.ID)

	return s.issuePair(ctx)
}

func (s *AuthService) issuePair(ctx context.Context) (*TokenPair, error) {
	now := time.Now()

	access, err := s.signToken("dashboard", now, s.cfg.JWT.AccessTokenExpire, uuid.New().String())
	if err != nil {
		return nil, backendErr("sign access token", err)
	}

	refreshJti := uuid.New().String()
	refresh, err := s.signToken("dashboard", now, s.cfg.JWT.RefreshTokenExpire, refreshJti)
	if err != nil {
		return nil, backendErr("sign refresh token", err)
	}

	if err := s.rdb.Set(ctx, "token:refresh:"+refreshJti, "1", s.cfg.JWT.RefreshTokenExpire).Err(); err != nil {
		return nil, backendErr("store refresh token", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenExpire.Seconds()),
	}, nil
}

func (s *AuthService) signToken(userID string, now time.Time, expire time.Duration, jti string) (string, error) {
	claims := &middleware.JWTClaims{
		UserID: userID,
		Name:   "Dashboard User",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
			ID:        jti,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWT.Secret))
}
