package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ttech-shop/internal/auth"
	"ttech-shop/internal/domain"
	"ttech-shop/internal/store"
	"ttech-shop/internal/transport/http/router"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type testEnv struct {
	api   *gin.Engine
	admin *gin.Engine
	svc   *auth.Service
	store store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(st, "Admin User", "admin@ttech.com", "admin123", zap.NewNop()))
	svc := auth.NewService(st, store.NewMemorySessions(7*24*time.Hour), zap.NewNop())

	deps := router.Deps{Log: zap.NewNop(), Store: st, Auth: svc}
	return &testEnv{
		api:   router.NewAPIEngine(deps),
		admin: router.NewAdminEngine(deps),
		svc:   svc,
		store: st,
	}
}

func (e *testEnv) do(t *testing.T, engine *gin.Engine, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w.Code, env
}

func (e *testEnv) loginToken(t *testing.T, email, password string) string {
	t.Helper()
	token, _, err := e.svc.Login(email, password)
	require.NoError(t, err)
	return token
}

func TestAPI_Health(t *testing.T) {
	e := newTestEnv(t)
	w := httptest.NewRecorder()
	e.api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_RegisterLoginMe(t *testing.T) {
	e := newTestEnv(t)

	code, env := e.do(t, e.api, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, "Registration successful", env.Message)
	// 响应里不能出现密码相关字段
	assert.NotContains(t, strings.ToLower(string(env.Data)), "password")

	// 错密码：401 + 不可枚举的统一文案
	code, env = e.do(t, e.api, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid email or password", env.Error)

	code, env = e.do(t, e.api, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "ALICE@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code)
	var out struct {
		Token string            `json:"token"`
		User  domain.PublicUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	assert.Equal(t, "alice@example.com", out.User.Email)

	code, env = e.do(t, e.api, http.MethodGet, "/api/v1/me", out.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var me domain.PublicUser
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, out.User.ID, me.ID)

	// 无 token
	code, _ = e.do(t, e.api, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	// 登出后会话失效
	code, _ = e.do(t, e.api, http.MethodPost, "/api/v1/auth/logout", out.Token, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = e.do(t, e.api, http.MethodGet, "/api/v1/me", out.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAPI_ProductsPublic(t *testing.T) {
	e := newTestEnv(t)

	code, env := e.do(t, e.api, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, code)
	var out struct {
		Products []domain.Product `json:"products"`
		Total    int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 6, out.Total)

	code, env = e.do(t, e.api, http.MethodGet, "/api/v1/products?category=Phones", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 2, out.Total)
	for _, p := range out.Products {
		assert.Equal(t, "Phones", p.Category)
	}

	code, _ = e.do(t, e.api, http.MethodGet, "/api/v1/products/no-such-id", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAPI_CartAndCheckout(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.svc.Register("Buyer", "buyer@example.com", "secret123")
	require.NoError(t, err)
	token := e.loginToken(t, "buyer@example.com", "secret123")

	products, err := e.store.ListProducts("")
	require.NoError(t, err)
	p := products[0]

	// 未登录不能动购物车
	code, _ := e.do(t, e.api, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	// 不存在的商品
	code, _ = e.do(t, e.api, http.MethodPost, "/api/v1/cart", token, gin.H{
		"productId": "no-such-id", "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = e.do(t, e.api, http.MethodPost, "/api/v1/cart", token, gin.H{
		"productId": p.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, code)

	code, env := e.do(t, e.api, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, code)
	var cartOut struct {
		Items []domain.CartItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cartOut))
	require.Len(t, cartOut.Items, 1)
	assert.Equal(t, 2, cartOut.Items[0].Quantity)

	code, env = e.do(t, e.api, http.MethodPost, "/api/v1/orders", token, nil)
	require.Equal(t, http.StatusOK, code)
	var order domain.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, domain.OrderPending, order.Status)
	assert.InDelta(t, 2*p.Price, order.Total, 1e-9)

	// 下单后购物车清空、库存扣减
	code, env = e.do(t, e.api, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &cartOut))
	assert.Empty(t, cartOut.Items)
	got, _, err := e.store.GetProductByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.CountInStock-2, got.CountInStock)

	// 空车再下单
	code, _ = e.do(t, e.api, http.MethodPost, "/api/v1/orders", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = e.do(t, e.api, http.MethodGet, "/api/v1/orders/"+order.ID, token, nil)
	require.Equal(t, http.StatusOK, code)

	// 别人的订单按不存在处理
	_, err = e.svc.Register("Other", "other@example.com", "secret123")
	require.NoError(t, err)
	otherToken := e.loginToken(t, "other@example.com", "secret123")
	code, _ = e.do(t, e.api, http.MethodGet, "/api/v1/orders/"+order.ID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdmin_RoleGate(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.svc.Register("Plain", "plain@example.com", "secret123")
	require.NoError(t, err)

	userToken := e.loginToken(t, "plain@example.com", "secret123")
	adminToken := e.loginToken(t, "admin@ttech.com", "admin123")

	// 普通用户 403
	code, _ := e.do(t, e.admin, http.MethodGet, "/admin/v1/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	// 未认证 401
	code, _ = e.do(t, e.admin, http.MethodGet, "/admin/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := e.do(t, e.admin, http.MethodGet, "/admin/v1/users", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	var out struct {
		Users []domain.PublicUser `json:"users"`
		Total int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 2, out.Total)
	assert.NotContains(t, strings.ToLower(string(env.Data)), "password")
}

func TestAdmin_ProductAndOrderOps(t *testing.T) {
	e := newTestEnv(t)
	adminToken := e.loginToken(t, "admin@ttech.com", "admin123")

	code, env := e.do(t, e.admin, http.MethodPost, "/admin/v1/products", adminToken, gin.H{
		"name": "Pixel 9", "price": 999.0, "currency": "GHS", "category": "Phones", "countInStock": 5,
	})
	require.Equal(t, http.StatusOK, code)
	var created domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	// 局部更新：只动价格
	code, env = e.do(t, e.admin, http.MethodPut, "/admin/v1/products/"+created.ID, adminToken, gin.H{
		"price": 899.0,
	})
	require.Equal(t, http.StatusOK, code)
	var updated domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 899.0, updated.Price)
	assert.Equal(t, "Pixel 9", updated.Name)

	code, _ = e.do(t, e.admin, http.MethodDelete, "/admin/v1/products/"+created.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = e.do(t, e.admin, http.MethodDelete, "/admin/v1/products/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// 订单状态流转
	_, err := e.svc.Register("Buyer", "buyer@example.com", "secret123")
	require.NoError(t, err)
	buyer, _, err := e.store.GetUserByEmail("buyer@example.com")
	require.NoError(t, err)
	products, err := e.store.ListProducts("")
	require.NoError(t, err)
	_, err = e.store.UpsertCartItem(buyer.ID, products[0].ID, 1)
	require.NoError(t, err)
	order, err := e.store.CheckoutCart(buyer.ID)
	require.NoError(t, err)

	code, env = e.do(t, e.admin, http.MethodPost, "/admin/v1/orders/"+order.ID+"/status", adminToken, gin.H{
		"status": "shipped",
	})
	require.Equal(t, http.StatusOK, code)
	var shipped domain.Order
	require.NoError(t, json.Unmarshal(env.Data, &shipped))
	assert.Equal(t, domain.OrderShipped, shipped.Status)

	code, _ = e.do(t, e.admin, http.MethodPost, "/admin/v1/orders/"+order.ID+"/status", adminToken, gin.H{
		"status": "teleported",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}
