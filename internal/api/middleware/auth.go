package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"schoolfest/backend/pkg/jwt"
	"schoolfest/backend/pkg/response"
)

// 上下文键，Handler 通过 MustGetUsername 读取
const (
	ctxUsername = "username"
	ctxRole     = "role"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "認証ヘッダーがありません")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "認証ヘッダーの形式が正しくありません")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "トークンが無効または期限切れです")
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			response.Unauthorized(c, "トークンの種類が正しくありません")
			c.Abort()
			return
		}

		c.Set(ctxUsername, claims.Username)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxRole)
		if !exists {
			response.Unauthorized(c, "認証が必要です")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "この操作を行う権限がありません")
		c.Abort()
	}
}
