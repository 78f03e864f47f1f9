package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ttech-shop/internal/domain"
	"ttech-shop/internal/store"
	httpez "ttech-shop/internal/transport/http/ez"
	mdw "ttech-shop/internal/transport/http/middleware"
)

type CartHandler struct {
	Store store.Store
}

func NewCartHandler(s store.Store) *CartHandler { return &CartHandler{Store: s} }

func (h *CartHandler) MountAPI(_, authed *gin.RouterGroup) {
	ezAuthed := httpez.New(authed)

	type cartOut struct {
		Items []domain.CartItem `json:"items"`
		Total int               `json:"total"`
	}
	httpez.Register[struct{}, cartOut](ezAuthed, httpez.Action[struct{}, cartOut]{
		Method: http.MethodGet,
		Path:   "/cart",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (cartOut, error) {
			items, err := h.Store.ListCartByUser(c.GetString(mdw.KeyUserID))
			if err != nil {
				return cartOut{}, err
			}
			return cartOut{Items: items, Total: len(items)}, nil
		},
	})

	type addIn struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity"  binding:"required,gt=0"`
	}
	httpez.Register[addIn, domain.CartItem](ezAuthed, httpez.Action[addIn, domain.CartItem]{
		Method: http.MethodPost,
		Path:   "/cart",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *addIn) (domain.CartItem, error) {
			// 商品存在性由存储层在写入的临界区内校验
			return h.Store.UpsertCartItem(c.GetString(mdw.KeyUserID), in.ProductID, in.Quantity)
		},
	})

	httpez.Register[struct{}, gin.H](ezAuthed, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/cart/:productId",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			ok, err := h.Store.RemoveCartItem(c.GetString(mdw.KeyUserID), c.Param("productId"))
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, domain.NewNotFoundError("cart item not found")
			}
			return gin.H{"productId": c.Param("productId")}, nil
		},
	})

	httpez.Register[struct{}, gin.H](ezAuthed, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/cart",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := h.Store.ClearCart(c.GetString(mdw.KeyUserID)); err != nil {
				return nil, err
			}
			return gin.H{}, nil
		},
	})
}
