// Package ez 非 CRUD 接口的一行注册：泛型绑定入参、统一错误映射、统一信封。
package ez

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	resp "ttech-shop/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON body 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.Query 取
)

// Action I 入参，O 出参。Handler 返回的 error 走 response.FromError 统一翻译，
// handler 里只管抛领域错误，不碰状态码
type Action[I any, O any] struct {
	Method    string
	Path      string
	Binder    Binder
	OKMessage string // 可选：成功时附带的 message
	Handler   func(c *gin.Context, in *I) (O, error)
}

func Register[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone
		}
		if bindErr != nil {
			c.JSON(http.StatusBadRequest, resp.Fail(bindErr.Error()))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			status, body := resp.FromError(err)
			c.JSON(status, body)
			return
		}
		if a.OKMessage != "" {
			c.JSON(http.StatusOK, resp.OKMsg(out, a.OKMessage))
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}
