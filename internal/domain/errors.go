package domain

import (
	"fmt"
	"net/http"
)

// AppError 统一错误接口：路由层只认这个，翻译成 HTTP 状态码，不泄露内部细节
type AppError interface {
	error
	Category() string
	HTTPStatus() int
}

// ValidationError 入参错误 / 重复数据（如邮箱已存在）
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string    { return e.Msg }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AuthError 凭证错误。刻意同一文案：不区分“邮箱不存在”和“密码错误”，防枚举
type AuthError struct{ Msg string }

func (e *AuthError) Error() string    { return e.Msg }
func (e *AuthError) Category() string { return "AUTH_ERROR" }
func (e *AuthError) HTTPStatus() int  { return http.StatusUnauthorized }

func NewAuthError(msg string) *AuthError { return &AuthError{Msg: msg} }

// ForbiddenError 角色不匹配（非 admin 访问管理接口等）
type ForbiddenError struct{ Msg string }

func (e *ForbiddenError) Error() string    { return e.Msg }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden }

func NewForbiddenError(msg string) *ForbiddenError { return &ForbiddenError{Msg: msg} }

// NotFoundError 按 id 找不到记录
type NotFoundError struct{ Msg string }

func (e *NotFoundError) Error() string    { return e.Msg }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound }

func NewNotFoundError(format string, args ...any) *NotFoundError {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// FormatError 存储的哈希/令牌格式损坏，属于服务端数据问题
type FormatError struct {
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}
func (e *FormatError) Category() string { return "FORMAT_ERROR" }
func (e *FormatError) HTTPStatus() int  { return http.StatusInternalServerError }
func (e *FormatError) Unwrap() error    { return e.Err }

func NewFormatError(msg string, err error) *FormatError { return &FormatError{Msg: msg, Err: err} }
