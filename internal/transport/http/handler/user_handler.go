package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ttech-shop/internal/domain"
	"ttech-shop/internal/store"
	httpez "ttech-shop/internal/transport/http/ez"
)

// UserHandler 管理端的用户运营接口，只吐 PublicUser 投影。
type UserHandler struct {
	Store store.Store
}

func NewUserHandler(s store.Store) *UserHandler { return &UserHandler{Store: s} }

func (h *UserHandler) MountAdmin(admin *gin.RouterGroup) {
	ezAdmin := httpez.New(admin)

	type listOut struct {
		Users []domain.PublicUser `json:"users"`
		Total int                 `json:"total"`
	}
	httpez.Register[struct{}, listOut](ezAdmin, httpez.Action[struct{}, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (listOut, error) {
			us, err := h.Store.ListUsers()
			if err != nil {
				return listOut{}, err
			}
			out := make([]domain.PublicUser, 0, len(us))
			for _, u := range us {
				out = append(out, u.Public())
			}
			return listOut{Users: out, Total: len(out)}, nil
		},
	})

	// 封禁即删号，已发会话靠校验时查 user 兜底失效
	httpez.Register[struct{}, struct{}](ezAdmin, httpez.Action[struct{}, struct{}]{
		Method:    http.MethodPost,
		Path:      "/users/:id/ban",
		Binder:    httpez.BindNone,
		OKMessage: "User banned",
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			ok, err := h.Store.DeleteUser(c.Param("id"))
			if err != nil {
				return struct{}{}, err
			}
			if !ok {
				return struct{}{}, domain.NewNotFoundError("user not found")
			}
			return struct{}{}, nil
		},
	})
}
