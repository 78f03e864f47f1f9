package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ttech-shop/internal/auth"
	resp "ttech-shop/internal/transport/http/response"
)

const (
	KeyUserID = "userId"
	KeyUser   = "user"

	// SessionCookie 浏览器端用 cookie，API 客户端用 Bearer，两者等价
	SessionCookie = "session"
)

// TokenFromRequest 先看 Authorization: Bearer，再看 session cookie
func TokenFromRequest(c *gin.Context) string {
	if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
		return strings.TrimPrefix(ah, "Bearer ")
	}
	if tok, err := c.Cookie(SessionCookie); err == nil {
		return tok
	}
	return ""
}

// AuthSession 校验会话并把当前用户放入上下文；requireRole 非空时按角色拦截
func AuthSession(svc *auth.Service, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Fail("missing token"))
			return
		}
		u, ok, err := svc.CurrentUser(token)
		if err != nil {
			status, body := resp.FromError(err)
			c.AbortWithStatusJSON(status, body)
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Fail("invalid or expired session"))
			return
		}
		if requireRole != "" {
			if err := svc.RequireRole(&u, requireRole); err != nil {
				status, body := resp.FromError(err)
				c.AbortWithStatusJSON(status, body)
				return
			}
		}
		// 角色不单独进上下文，要用从 KeyUser 的投影里取
		c.Set(KeyUserID, u.ID)
		c.Set(KeyUser, u)
		c.Next()
	}
}
