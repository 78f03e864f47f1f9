package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "ttech-shop/internal/transport/http/response"
)

func SimpleRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Fail("internal server error"))
			}
		}()
		c.Next()
	}
}
