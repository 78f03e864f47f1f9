// Package router 组装用户端 / 管理端两套引擎，中间件链与路由分组在这里统一定型。
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ttech-shop/internal/auth"
	"ttech-shop/internal/core/cache"
	"ttech-shop/internal/store"
	"ttech-shop/internal/transport/http/handler"
	mdw "ttech-shop/internal/transport/http/middleware"
)

// APIModule 用户端模块：public 免登录，authed 挂了会话校验。
type APIModule interface {
	MountAPI(public, authed *gin.RouterGroup)
}

// AdminModule 管理端模块，分组整体要求 admin 角色。
type AdminModule interface {
	MountAdmin(admin *gin.RouterGroup)
}

// Deps 两套引擎共享的依赖。Cache 可为 nil（不启用目录缓存）。
type Deps struct {
	Log          *zap.Logger
	Store        store.Store
	Auth         *auth.Service
	Cache        *cache.Cache
	CacheTTL     time.Duration
	SecureCookie bool
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := gin.New()
	metrics := mdw.NewMetrics()

	r.Use(
		mdw.RequestID(),
		cors.Default(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(d.Log, true),
		metrics.Handler(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(metrics.Exporter()))

	public := r.Group("/api/v1")
	authed := public.Group("")
	authed.Use(mdw.AuthSession(d.Auth, ""))

	modules := []APIModule{
		handler.NewAuthHandler(d.Auth, d.SecureCookie),
		handler.NewProductHandler(d.Store, d.Cache, d.CacheTTL),
		handler.NewCartHandler(d.Store),
		handler.NewOrderHandler(d.Store),
	}
	for _, m := range modules {
		m.MountAPI(public, authed)
	}

	return r
}

func NewAdminEngine(d Deps) *gin.Engine {
	r := gin.New()
	metrics := mdw.NewMetrics()

	r.Use(
		mdw.RequestID(),
		cors.Default(),
		// 管理端按来源 IP 限速，单个运营工具刷不垮别人
		mdw.RateLimitPerIP(50, 100),
		mdw.ConcurrencyLimit(100),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		metrics.Handler(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(metrics.Exporter()))

	// 管理端 v1，分组统一要求 admin 角色
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthSession(d.Auth, "admin"))

	modules := []AdminModule{
		handler.NewUserHandler(d.Store),
		handler.NewProductHandler(d.Store, d.Cache, d.CacheTTL),
		handler.NewOrderHandler(d.Store),
	}
	for _, m := range modules {
		m.MountAdmin(admin)
	}

	return r
}
