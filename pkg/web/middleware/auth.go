package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	weberrors "github.com/lk2023060901/petlink/pkg/web/errors"
)

const (
	// UserIDHeader 网关注入的用户标识头
	UserIDHeader = "X-User-ID"
	// UserIDKey Context 中存储用户 ID 的 key
	UserIDKey = "user_id"

	maxUserIDLength = 64
)

// Identity 从请求头读取用户 ID，缺失或超长时返回 401
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if uid == "" || len(uid) > maxUserIDLength {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    weberrors.CodeUnAuthorized,
				"message": "missing or invalid " + UserIDHeader,
				"data":    nil,
			})
			return
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}

// GetUserID 获取 Identity 写入的用户 ID
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
