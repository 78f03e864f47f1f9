package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ttech-shop/internal/core/cache"
	"ttech-shop/internal/domain"
	"ttech-shop/internal/store"
	httpez "ttech-shop/internal/transport/http/ez"
)

const catalogCacheKey = "catalog:all"

// ProductHandler 公开目录 + 管理端商品维护。
// Cache 可为 nil（未启用 Redis），此时全部直读存储
type ProductHandler struct {
	Store    store.Store
	Cache    *cache.Cache
	CacheTTL time.Duration
}

func NewProductHandler(s store.Store, c *cache.Cache, ttl time.Duration) *ProductHandler {
	return &ProductHandler{Store: s, Cache: c, CacheTTL: ttl}
}

func (h *ProductHandler) listProducts(ctx context.Context, category string) ([]domain.Product, error) {
	// 只缓存全量列表；带分类过滤的请求量小，直读
	if h.Cache == nil || category != "" {
		return h.Store.ListProducts(category)
	}
	return cache.GetOrLoadJSON[[]domain.Product](h.Cache, ctx, catalogCacheKey, h.CacheTTL,
		func(context.Context) ([]domain.Product, error) {
			return h.Store.ListProducts("")
		})
}

func (h *ProductHandler) invalidateCatalog(ctx context.Context) {
	if h.Cache != nil {
		h.Cache.Invalidate(ctx, catalogCacheKey)
	}
}

func (h *ProductHandler) MountAPI(public, _ *gin.RouterGroup) {
	ezPublic := httpez.New(public)

	type listQ struct {
		Category string `form:"category"`
	}
	type listOut struct {
		Products []domain.Product `json:"products"`
		Total    int              `json:"total"`
	}
	httpez.Register[listQ, listOut](ezPublic, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/products",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			ps, err := h.listProducts(c.Request.Context(), in.Category)
			if err != nil {
				return listOut{}, err
			}
			return listOut{Products: ps, Total: len(ps)}, nil
		},
	})

	httpez.Register[struct{}, domain.Product](ezPublic, httpez.Action[struct{}, domain.Product]{
		Method: http.MethodGet,
		Path:   "/products/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (domain.Product, error) {
			p, ok, err := h.Store.GetProductByID(c.Param("id"))
			if err != nil {
				return domain.Product{}, err
			}
			if !ok {
				return domain.Product{}, domain.NewNotFoundError("product not found")
			}
			return p, nil
		},
	})
}

func (h *ProductHandler) MountAdmin(admin *gin.RouterGroup) {
	ezAdmin := httpez.New(admin)

	type createIn struct {
		Name         string  `json:"name"         binding:"required,max=191"`
		Description  string  `json:"description"`
		Price        float64 `json:"price"        binding:"required,gt=0"`
		Currency     string  `json:"currency"     binding:"required,len=3"`
		Category     string  `json:"category"     binding:"required,max=64"`
		Image        string  `json:"image"`
		CountInStock int     `json:"countInStock" binding:"gte=0"`
	}
	httpez.Register[createIn, domain.Product](ezAdmin, httpez.Action[createIn, domain.Product]{
		Method: http.MethodPost,
		Path:   "/products",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *createIn) (domain.Product, error) {
			p, err := h.Store.CreateProduct(domain.Product{
				Name:         in.Name,
				Description:  in.Description,
				Price:        in.Price,
				Currency:     in.Currency,
				Category:     in.Category,
				Image:        in.Image,
				CountInStock: in.CountInStock,
			})
			if err != nil {
				return domain.Product{}, err
			}
			h.invalidateCatalog(c.Request.Context())
			return p, nil
		},
	})

	httpez.Register[domain.ProductPatch, domain.Product](ezAdmin, httpez.Action[domain.ProductPatch, domain.Product]{
		Method: http.MethodPut,
		Path:   "/products/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *domain.ProductPatch) (domain.Product, error) {
			p, ok, err := h.Store.UpdateProduct(c.Param("id"), *in)
			if err != nil {
				return domain.Product{}, err
			}
			if !ok {
				return domain.Product{}, domain.NewNotFoundError("product not found")
			}
			h.invalidateCatalog(c.Request.Context())
			return p, nil
		},
	})

	httpez.Register[struct{}, gin.H](ezAdmin, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/products/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			ok, err := h.Store.DeleteProduct(c.Param("id"))
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, domain.NewNotFoundError("product not found")
			}
			h.invalidateCatalog(c.Request.Context())
			return gin.H{"id": c.Param("id")}, nil
		},
	})
}
