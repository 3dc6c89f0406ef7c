package middleware

import (
	"mini_lms_backend/internal/config"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/util"
	"mini_lms_backend/pkg/logger"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 解析 Bearer Token，把身份以 model.Caller 形式放入上下文
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT parse failed", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		util.SetCaller(c, claims.Caller())
		c.Next()
	}
}

// RoleMiddleware 角色校验，管理员默认放行
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := util.GetCaller(c)
		if !ok {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := caller.Role == model.Admin
		for _, role := range roles {
			if caller.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// StrictRoleMiddleware 只允许列出的角色，管理员不例外
func StrictRoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := util.GetCaller(c)
		if !ok {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		for _, role := range roles {
			if caller.Role == role {
				c.Next()
				return
			}
		}
		util.Forbidden(c)
		c.Abort()
	}
}

type UserStatusRepo interface {
	AccessState(userID uint) (bool, model.UserRole, error)
}

// ActiveUserMiddleware 按数据库当前状态校验令牌：账号停用返回 403，
// 角色已被管理员修改则返回 401，要求重新登录取得新令牌
func ActiveUserMiddleware(repo UserStatusRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := util.GetCaller(c)
		if !ok {
			c.Next()
			return
		}
		active, role, err := repo.AccessState(caller.UserID)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !active {
			util.Error(c, http.StatusForbidden, util.ErrAccountDisabled.Error())
			c.Abort()
			return
		}
		if role != caller.Role {
			util.Error(c, http.StatusUnauthorized, "role changed, please log in again")
			c.Abort()
			return
		}
		c.Next()
	}
}
