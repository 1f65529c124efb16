package service

import (
	"context"
	"crypto/subtle"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"schoolfest/backend/config"
	"schoolfest/backend/internal/dto"
	pkgerrors "schoolfest/backend/pkg/errors"
	"schoolfest/backend/pkg/jwt"
)

// RoleAdmin 管理员角色
const RoleAdmin = "admin"

var ErrInvalidCredentials = pkgerrors.New(pkgerrors.KindInvalidCredentials, "用户名或密码错误")

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
}

type authService struct {
	cfg    *config.AuthConfig
	jwtMgr *jwt.Manager
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
// 管理员账号来自配置（用户名 + bcrypt 哈希），不落库
func NewAuthService(cfg *config.AuthConfig, jwtMgr *jwt.Manager, logger *zap.Logger) AuthService {
	return &authService{cfg: cfg, jwtMgr: jwtMgr, logger: logger}
}

func (s *authService) Login(_ context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 校验用户名
	if s.cfg.AdminPasswordHash == "" ||
		subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.AdminUsername)) != 1 {
		return nil, ErrInvalidCredentials
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("管理员登录失败", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token
	token, err := s.jwtMgr.GenerateAccessToken(req.Username, RoleAdmin)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Role:        RoleAdmin,
	}, nil
}
