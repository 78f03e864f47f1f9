package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ttech-shop/internal/domain"
	"ttech-shop/internal/store"
	httpez "ttech-shop/internal/transport/http/ez"
	mdw "ttech-shop/internal/transport/http/middleware"
)

type OrderHandler struct {
	Store store.Store
}

func NewOrderHandler(s store.Store) *OrderHandler { return &OrderHandler{Store: s} }

func (h *OrderHandler) MountAPI(_, authed *gin.RouterGroup) {
	ezAuthed := httpez.New(authed)

	// 下单 = 从购物车结算：校验库存、快照单价、扣库存、清车，存储层原子完成
	httpez.Register[struct{}, domain.Order](ezAuthed, httpez.Action[struct{}, domain.Order]{
		Method:    http.MethodPost,
		Path:      "/orders",
		Binder:    httpez.BindNone,
		OKMessage: "Order placed",
		Handler: func(c *gin.Context, _ *struct{}) (domain.Order, error) {
			return h.Store.CheckoutCart(c.GetString(mdw.KeyUserID))
		},
	})

	type listOut struct {
		Orders []domain.Order `json:"orders"`
		Total  int            `json:"total"`
	}
	httpez.Register[struct{}, listOut](ezAuthed, httpez.Action[struct{}, listOut]{
		Method: http.MethodGet,
		Path:   "/orders",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (listOut, error) {
			os, err := h.Store.ListOrdersByUser(c.GetString(mdw.KeyUserID))
			if err != nil {
				return listOut{}, err
			}
			return listOut{Orders: os, Total: len(os)}, nil
		},
	})

	httpez.Register[struct{}, domain.Order](ezAuthed, httpez.Action[struct{}, domain.Order]{
		Method: http.MethodGet,
		Path:   "/orders/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (domain.Order, error) {
			o, ok, err := h.Store.GetOrderByID(c.Param("id"))
			if err != nil {
				return domain.Order{}, err
			}
			// 别人的订单当不存在处理，不暴露订单 id 是否有效
			if !ok || o.UserID != c.GetString(mdw.KeyUserID) {
				return domain.Order{}, domain.NewNotFoundError("order not found")
			}
			return o, nil
		},
	})
}

func (h *OrderHandler) MountAdmin(admin *gin.RouterGroup) {
	ezAdmin := httpez.New(admin)

	type listOut struct {
		Orders []domain.Order `json:"orders"`
		Total  int            `json:"total"`
	}
	httpez.Register[struct{}, listOut](ezAdmin, httpez.Action[struct{}, listOut]{
		Method: http.MethodGet,
		Path:   "/orders",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (listOut, error) {
			os, err := h.Store.ListOrders()
			if err != nil {
				return listOut{}, err
			}
			return listOut{Orders: os, Total: len(os)}, nil
		},
	})

	type statusIn struct {
		Status domain.OrderStatus `json:"status" binding:"required"`
	}
	httpez.Register[statusIn, domain.Order](ezAdmin, httpez.Action[statusIn, domain.Order]{
		Method: http.MethodPost,
		Path:   "/orders/:id/status",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *statusIn) (domain.Order, error) {
			o, ok, err := h.Store.UpdateOrder(c.Param("id"), domain.OrderPatch{Status: &in.Status})
			if err != nil {
				return domain.Order{}, err
			}
			if !ok {
				return domain.Order{}, domain.NewNotFoundError("order not found")
			}
			return o, nil
		},
	})
}
