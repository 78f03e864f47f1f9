package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ttech-shop/internal/auth"
	"ttech-shop/internal/domain"
	httpez "ttech-shop/internal/transport/http/ez"
	mdw "ttech-shop/internal/transport/http/middleware"
)

type AuthHandler struct {
	Svc *auth.Service
	// cookie 的 Secure 标记，本地开发关
	SecureCookie bool
}

func NewAuthHandler(svc *auth.Service, secureCookie bool) *AuthHandler {
	return &AuthHandler{Svc: svc, SecureCookie: secureCookie}
}

// 与会话 TTL 对齐：7 天
const sessionCookieMaxAge = 7 * 24 * 60 * 60

func (h *AuthHandler) MountAPI(public, authed *gin.RouterGroup) {
	ezPublic := httpez.New(public)
	ezAuthed := httpez.New(authed)

	type registerIn struct {
		Name     string `json:"name"     binding:"required,max=64"`
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	httpez.Register[registerIn, domain.PublicUser](ezPublic, httpez.Action[registerIn, domain.PublicUser]{
		Method:    http.MethodPost,
		Path:      "/auth/register",
		Binder:    httpez.BindJSON,
		OKMessage: "Registration successful",
		Handler: func(c *gin.Context, in *registerIn) (domain.PublicUser, error) {
			return h.Svc.Register(in.Name, in.Email, in.Password)
		},
	})

	type loginIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	type loginOut struct {
		Token string            `json:"token"`
		User  domain.PublicUser `json:"user"`
	}
	httpez.Register[loginIn, loginOut](ezPublic, httpez.Action[loginIn, loginOut]{
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Binder:    httpez.BindJSON,
		OKMessage: "Login successful",
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			token, u, err := h.Svc.Login(in.Email, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			// 同时下发 cookie，浏览器端不用自己管 token
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(mdw.SessionCookie, token, sessionCookieMaxAge, "/", "", h.SecureCookie, true)
			return loginOut{Token: token, User: u}, nil
		},
	})

	httpez.Register[struct{}, gin.H](ezAuthed, httpez.Action[struct{}, gin.H]{
		Method:    http.MethodPost,
		Path:      "/auth/logout",
		Binder:    httpez.BindNone,
		OKMessage: "Logged out",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := h.Svc.Logout(mdw.TokenFromRequest(c)); err != nil {
				return nil, err
			}
			c.SetCookie(mdw.SessionCookie, "", -1, "/", "", h.SecureCookie, true)
			return gin.H{}, nil
		},
	})

	httpez.Register[struct{}, domain.PublicUser](ezAuthed, httpez.Action[struct{}, domain.PublicUser]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (domain.PublicUser, error) {
			u, ok := c.MustGet(mdw.KeyUser).(domain.PublicUser)
			if !ok {
				return domain.PublicUser{}, domain.NewAuthError("unauthorized")
			}
			return u, nil
		},
	})
}
