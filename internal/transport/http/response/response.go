package response

import (
	"errors"
	"net/http"

	"ttech-shop/internal/domain"
)

// Resp 统一响应信封：{success, data|error, message?}
type Resp struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK(data any) Resp { return Resp{Success: true, Data: data} }

func OKMsg(data any, msg string) Resp { return Resp{Success: true, Data: data, Message: msg} }

func Fail(msg string) Resp { return Resp{Success: false, Error: msg} }

// FromError 领域错误 → HTTP 状态码 + 信封。
// 非领域错误一律 500 + 笼统文案，内部细节只进日志不进响应
func FromError(err error) (int, Resp) {
	var app domain.AppError
	if errors.As(err, &app) {
		msg := app.Error()
		if app.HTTPStatus() >= http.StatusInternalServerError {
			msg = "internal server error"
		}
		return app.HTTPStatus(), Fail(msg)
	}
	return http.StatusInternalServerError, Fail("internal server error")
}
