package store

import (
	"sort"
	"sync"
	"time"

	"ttech-shop/internal/domain"
	"ttech-shop/pkg/utils"
)

// MemoryStore 进程内 map 存储：id 主键 map + 规范化邮箱 -> id 二级索引。
// 单把 RWMutex 保证所有变更（含加购替换、下单扣库存这类复合操作）原子。
// 进程重启数据即丢，这是该层的定位，不是缺陷。
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	emails   map[string]string // 规范化 email -> user id，与 users 在同一临界区内维护
	products map[string]domain.Product
	orders   map[string]domain.Order
	cart     map[string]domain.CartItem // key: userID + "\x00" + productID，结构上保证唯一
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		emails:   make(map[string]string),
		products: make(map[string]domain.Product),
		orders:   make(map[string]domain.Order),
		cart:     make(map[string]domain.CartItem),
	}
}

func cartKey(userID, productID string) string { return userID + "\x00" + productID }

// ---------- users ----------

func (m *MemoryStore) CreateUser(u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := domain.NormalizeEmail(u.Email)
	if _, exists := m.emails[email]; exists {
		return domain.User{}, domain.NewValidationError("email already registered")
	}
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	u.Email = email
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now

	m.users[u.ID] = u
	m.emails[email] = u.ID
	return u, nil
}

func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[domain.NormalizeEmail(email)]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) UpdateUser(id string, p domain.UserPatch) (domain.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return domain.User{}, false, nil
	}
	if p.Email != nil {
		email := domain.NormalizeEmail(*p.Email)
		if owner, exists := m.emails[email]; exists && owner != id {
			return domain.User{}, false, domain.NewValidationError("email already registered")
		}
		delete(m.emails, u.Email)
		u.Email = email
		m.emails[email] = id
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	u.UpdatedAt = time.Now()
	m.users[id] = u
	return u, true, nil
}

// DeleteUser 不级联删除该用户的订单/购物车（弱引用，按 id 关联），需要时由调用方处理
func (m *MemoryStore) DeleteUser(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	delete(m.users, id)
	delete(m.emails, u.Email)
	return true, nil
}

func (m *MemoryStore) ListUsers() ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sortByCreatedDesc(out, func(u domain.User) time.Time { return u.CreatedAt })
	return out, nil
}

// ---------- products ----------

func (m *MemoryStore) CreateProduct(p domain.Product) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.CountInStock < 0 {
		return domain.Product{}, domain.NewValidationError("stock count must be >= 0")
	}
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	m.products[p.ID] = p
	return p, nil
}

func (m *MemoryStore) GetProductByID(id string) (domain.Product, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	return p, ok, nil
}

func (m *MemoryStore) UpdateProduct(id string, patch domain.ProductPatch) (domain.Product, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, false, nil
	}
	if patch.CountInStock != nil && *patch.CountInStock < 0 {
		return domain.Product{}, false, domain.NewValidationError("stock count must be >= 0")
	}
	applyProductPatch(&p, patch)
	p.UpdatedAt = time.Now()
	m.products[id] = p
	return p, true, nil
}

func (m *MemoryStore) DeleteProduct(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return false, nil
	}
	delete(m.products, id)
	return true, nil
}

func (m *MemoryStore) ListProducts(category string) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	sortByCreatedDesc(out, func(p domain.Product) time.Time { return p.CreatedAt })
	return out, nil
}

// ---------- orders ----------

func (m *MemoryStore) CreateOrder(o domain.Order) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createOrderLocked(o)
}

// 创建时校验 userId 指向存在的用户（弱引用不变式）
func (m *MemoryStore) createOrderLocked(o domain.Order) (domain.Order, error) {
	if _, ok := m.users[o.UserID]; !ok {
		return domain.Order{}, domain.NewNotFoundError("user %s not found", o.UserID)
	}
	if len(o.Items) == 0 {
		return domain.Order{}, domain.NewValidationError("order has no items")
	}
	if o.ID == "" {
		o.ID = utils.NewID()
	}
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	m.orders[o.ID] = o
	return o, nil
}

func (m *MemoryStore) GetOrderByID(id string) (domain.Order, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	return o, ok, nil
}

func (m *MemoryStore) UpdateOrder(id string, patch domain.OrderPatch) (domain.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, false, nil
	}
	if patch.Status != nil {
		if !domain.ValidOrderStatus(*patch.Status) {
			return domain.Order{}, false, domain.NewValidationError("unknown order status %q", *patch.Status)
		}
		o.Status = *patch.Status
	}
	o.UpdatedAt = time.Now()
	m.orders[id] = o
	return o, true, nil
}

func (m *MemoryStore) ListOrders() ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sortByCreatedDesc(out, func(o domain.Order) time.Time { return o.CreatedAt })
	return out, nil
}

func (m *MemoryStore) ListOrdersByUser(userID string) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Order, 0, 4)
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sortByCreatedDesc(out, func(o domain.Order) time.Time { return o.CreatedAt })
	return out, nil
}

// ---------- cart ----------

// UpsertCartItem 整条替换旧记录；并发对同一 (user, product) 加购最终只留最后一次写入。
// 商品存在性与写入在同一临界区校验，与删商品并发时不会留下指向空商品的行
func (m *MemoryStore) UpsertCartItem(userID, productID string, qty int) (domain.CartItem, error) {
	if qty <= 0 {
		return domain.CartItem{}, domain.NewValidationError("quantity must be > 0")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[productID]; !ok {
		return domain.CartItem{}, domain.NewNotFoundError("product %s not found", productID)
	}
	now := time.Now()
	item := domain.CartItem{
		ID:        utils.NewID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.cart[cartKey(userID, productID)] = item
	return item, nil
}

func (m *MemoryStore) ListCartByUser(userID string) ([]domain.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCartLocked(userID), nil
}

func (m *MemoryStore) listCartLocked(userID string) []domain.CartItem {
	out := make([]domain.CartItem, 0, 4)
	for _, it := range m.cart {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *MemoryStore) RemoveCartItem(userID, productID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := cartKey(userID, productID)
	if _, ok := m.cart[key]; !ok {
		return false, nil
	}
	delete(m.cart, key)
	return true, nil
}

func (m *MemoryStore) ClearCart(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCartLocked(userID)
	return nil
}

func (m *MemoryStore) clearCartLocked(userID string) {
	for key, it := range m.cart {
		if it.UserID == userID {
			delete(m.cart, key)
		}
	}
}

// ---------- checkout ----------

// CheckoutCart 单临界区内完成校验+扣库存+建单+清车，避免超卖和丢更新
func (m *MemoryStore) CheckoutCart(userID string) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return domain.Order{}, domain.NewNotFoundError("user %s not found", userID)
	}
	items := m.listCartLocked(userID)
	if len(items) == 0 {
		return domain.Order{}, domain.NewValidationError("cart is empty")
	}

	// 先整体校验库存，再统一扣减，保证失败时不留半扣状态
	lines := make([]domain.OrderItem, 0, len(items))
	var total float64
	currency := ""
	for _, it := range items {
		p, ok := m.products[it.ProductID]
		if !ok {
			return domain.Order{}, domain.NewNotFoundError("product %s not found", it.ProductID)
		}
		if p.CountInStock < it.Quantity {
			return domain.Order{}, domain.NewValidationError("insufficient stock for %s", p.Name)
		}
		// 订单单币种：Total 是同一货币下的合计，混币直接拒单
		if currency == "" {
			currency = p.Currency
		} else if p.Currency != currency {
			return domain.Order{}, domain.NewValidationError("cart mixes currencies %s and %s", currency, p.Currency)
		}
		lines = append(lines, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: p.Price, // 快照价
		})
		total += p.Price * float64(it.Quantity)
	}
	for _, line := range lines {
		p := m.products[line.ProductID]
		p.CountInStock -= line.Quantity
		p.UpdatedAt = time.Now()
		m.products[line.ProductID] = p
	}

	order, err := m.createOrderLocked(domain.Order{
		UserID:   userID,
		Items:    lines,
		Status:   domain.OrderPending,
		Total:    total,
		Currency: currency,
	})
	if err != nil {
		return domain.Order{}, err
	}
	m.clearCartLocked(userID)
	return order, nil
}

func sortByCreatedDesc[T any](s []T, at func(T) time.Time) {
	sort.Slice(s, func(i, j int) bool { return at(s[i]).After(at(s[j])) })
}

// 浅合并：nil 字段不动；ID/CreatedAt 不在 Patch 里，结构上就改不了
func applyProductPatch(p *domain.Product, patch domain.ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Currency != nil {
		p.Currency = *patch.Currency
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.NumReviews != nil {
		p.NumReviews = *patch.NumReviews
	}
	if patch.CountInStock != nil {
		p.CountInStock = *patch.CountInStock
	}
}
