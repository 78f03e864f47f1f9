// Package store 是易失的记录存储层：按 id 主键 + 自然键二级索引。
// 默认用内存实现，需要持久化时切 GormStore，契约不变。
package store

import "ttech-shop/internal/domain"

// Store 各实体集合的统一契约。
// 按 id 的读写对不存在的记录返回 found=false 而不是错误，由调用方翻译成 NotFound。
type Store interface {
	// users：邮箱为自然键，实现方必须按规范化（小写+trim）形式索引
	CreateUser(u domain.User) (domain.User, error)
	GetUserByID(id string) (domain.User, bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	UpdateUser(id string, p domain.UserPatch) (domain.User, bool, error)
	DeleteUser(id string) (bool, error)
	ListUsers() ([]domain.User, error)

	// products
	CreateProduct(p domain.Product) (domain.Product, error)
	GetProductByID(id string) (domain.Product, bool, error)
	UpdateProduct(id string, p domain.ProductPatch) (domain.Product, bool, error)
	DeleteProduct(id string) (bool, error)
	ListProducts(category string) ([]domain.Product, error)

	// orders：行项目创建后只读，仅状态可通过 Patch 流转
	CreateOrder(o domain.Order) (domain.Order, error)
	GetOrderByID(id string) (domain.Order, bool, error)
	UpdateOrder(id string, p domain.OrderPatch) (domain.Order, bool, error)
	ListOrders() ([]domain.Order, error)
	ListOrdersByUser(userID string) ([]domain.Order, error)

	// cart：同 (userID, productID) 重复加购为整条替换，必须对该键原子；
	// Upsert 在写入的同一临界区校验商品存在，不存在返回 NotFound
	UpsertCartItem(userID, productID string, qty int) (domain.CartItem, error)
	ListCartByUser(userID string) ([]domain.CartItem, error)
	RemoveCartItem(userID, productID string) (bool, error)
	ClearCart(userID string) error

	// CheckoutCart 复合操作：校验库存、按当前价快照行项目、扣库存、建订单、清购物车。
	// 整体必须原子（内存实现单写锁，gorm 实现走事务）
	CheckoutCart(userID string) (domain.Order, error)
}

// SessionStore 会话令牌的签发与校验。
type SessionStore interface {
	// Create 签发绑定 userID 的不透明 token
	Create(userID string) (string, error)
	// Validate 未知/过期 token 返回 ok=false（不报错）；过期即惰性清除
	Validate(token string) (userID string, ok bool, err error)
	// Invalidate 显式登出
	Invalidate(token string) error
	// CleanupExpired 批量清理过期会话，返回清理条数。只为限制内存占用，正确性不依赖它
	CleanupExpired() int
}
