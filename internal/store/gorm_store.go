package store

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ttech-shop/internal/domain"
	"ttech-shop/pkg/utils"
)

// gorm 模型与领域实体分开，库表细节不外漏

type UserModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	Name         string `gorm:"size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:191;not null"` // 存规范化后的邮箱
	PasswordHash string `gorm:"size:100;not null"`
	Role         string `gorm:"size:16;not null;default:user"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

type ProductModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	Name         string `gorm:"size:191;not null"`
	Description  string `gorm:"type:text"`
	Price        float64
	Currency     string `gorm:"size:8"`
	Category     string `gorm:"size:64;index"`
	Image        string `gorm:"size:255"`
	Rating       float64
	NumReviews   int
	CountInStock int `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ProductModel) TableName() string { return "products" }

type OrderModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"size:36;index;not null"`
	Status    string `gorm:"size:16;not null"`
	Total     float64
	Currency  string           `gorm:"size:8"`
	Items     []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OrderModel) TableName() string { return "orders" }

type OrderItemModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"size:36;index;not null"`
	ProductID string `gorm:"size:36;not null"`
	Name      string `gorm:"size:191"`
	Quantity  int    `gorm:"not null"`
	UnitPrice float64
}

func (OrderItemModel) TableName() string { return "order_items" }

type CartItemModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"size:36;not null;uniqueIndex:idx_cart_user_product,priority:1"`
	ProductID string `gorm:"size:36;not null;uniqueIndex:idx_cart_user_product,priority:2"`
	Quantity  int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartItemModel) TableName() string { return "cart_items" }

// GormStore 持久化实现，契约与 MemoryStore 完全一致
type GormStore struct{ db *gorm.DB }

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&UserModel{}, &ProductModel{}, &OrderModel{}, &OrderItemModel{}, &CartItemModel{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// ---------- users ----------

func (g *GormStore) CreateUser(u domain.User) (domain.User, error) {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	m := UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        domain.NormalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
	}
	if err := g.db.Create(&m).Error; err != nil {
		if isDupKey(err) {
			return domain.User{}, domain.NewValidationError("email already registered")
		}
		return domain.User{}, err
	}
	return userFromModel(m), nil
}

func (g *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var m UserModel
	err := g.db.First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return userFromModel(m), true, nil
}

func (g *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var m UserModel
	err := g.db.First(&m, "email = ?", domain.NormalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return userFromModel(m), true, nil
}

func (g *GormStore) UpdateUser(id string, p domain.UserPatch) (domain.User, bool, error) {
	updates := map[string]any{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Email != nil {
		updates["email"] = domain.NormalizeEmail(*p.Email)
	}
	if p.PasswordHash != nil {
		updates["password_hash"] = *p.PasswordHash
	}
	if p.Role != nil {
		updates["role"] = *p.Role
	}
	if len(updates) > 0 {
		res := g.db.Model(&UserModel{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			if isDupKey(res.Error) {
				return domain.User{}, false, domain.NewValidationError("email already registered")
			}
			return domain.User{}, false, res.Error
		}
		if res.RowsAffected == 0 {
			return domain.User{}, false, nil
		}
	}
	return g.GetUserByID(id)
}

func (g *GormStore) DeleteUser(id string) (bool, error) {
	res := g.db.Where("id = ?", id).Delete(&UserModel{})
	return res.RowsAffected > 0, res.Error
}

func (g *GormStore) ListUsers() ([]domain.User, error) {
	var ms []UserModel
	if err := g.db.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, userFromModel(m))
	}
	return out, nil
}

// ---------- products ----------

func (g *GormStore) CreateProduct(p domain.Product) (domain.Product, error) {
	if p.CountInStock < 0 {
		return domain.Product{}, domain.NewValidationError("stock count must be >= 0")
	}
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	m := productToModel(p)
	if err := g.db.Create(&m).Error; err != nil {
		return domain.Product{}, err
	}
	return productFromModel(m), nil
}

func (g *GormStore) GetProductByID(id string) (domain.Product, bool, error) {
	var m ProductModel
	err := g.db.First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, err
	}
	return productFromModel(m), true, nil
}

func (g *GormStore) UpdateProduct(id string, patch domain.ProductPatch) (domain.Product, bool, error) {
	if patch.CountInStock != nil && *patch.CountInStock < 0 {
		return domain.Product{}, false, domain.NewValidationError("stock count must be >= 0")
	}
	updates := productPatchUpdates(patch)
	if len(updates) > 0 {
		res := g.db.Model(&ProductModel{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return domain.Product{}, false, res.Error
		}
		if res.RowsAffected == 0 {
			return domain.Product{}, false, nil
		}
	}
	return g.GetProductByID(id)
}

func (g *GormStore) DeleteProduct(id string) (bool, error) {
	res := g.db.Where("id = ?", id).Delete(&ProductModel{})
	return res.RowsAffected > 0, res.Error
}

func (g *GormStore) ListProducts(category string) ([]domain.Product, error) {
	q := g.db.Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var ms []ProductModel
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(ms))
	for _, m := range ms {
		out = append(out, productFromModel(m))
	}
	return out, nil
}

// ---------- orders ----------

func (g *GormStore) CreateOrder(o domain.Order) (domain.Order, error) {
	var created domain.Order
	err := g.db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = createOrderTx(tx, o)
		return err
	})
	return created, err
}

func createOrderTx(tx *gorm.DB, o domain.Order) (domain.Order, error) {
	var cnt int64
	if err := tx.Model(&UserModel{}).Where("id = ?", o.UserID).Count(&cnt).Error; err != nil {
		return domain.Order{}, err
	}
	if cnt == 0 {
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
	m := orderToModel(o)
	if err := tx.Create(&m).Error; err != nil {
		return domain.Order{}, err
	}
	return orderFromModel(m), nil
}

func (g *GormStore) GetOrderByID(id string) (domain.Order, bool, error) {
	var m OrderModel
	err := g.db.Preload("Items").First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, err
	}
	return orderFromModel(m), true, nil
}

func (g *GormStore) UpdateOrder(id string, patch domain.OrderPatch) (domain.Order, bool, error) {
	if patch.Status != nil {
		if !domain.ValidOrderStatus(*patch.Status) {
			return domain.Order{}, false, domain.NewValidationError("unknown order status %q", *patch.Status)
		}
		res := g.db.Model(&OrderModel{}).Where("id = ?", id).Update("status", string(*patch.Status))
		if res.Error != nil {
			return domain.Order{}, false, res.Error
		}
		if res.RowsAffected == 0 {
			return domain.Order{}, false, nil
		}
	}
	return g.GetOrderByID(id)
}

func (g *GormStore) ListOrders() ([]domain.Order, error) {
	return g.listOrders(g.db)
}

func (g *GormStore) ListOrdersByUser(userID string) ([]domain.Order, error) {
	return g.listOrders(g.db.Where("user_id = ?", userID))
}

func (g *GormStore) listOrders(q *gorm.DB) ([]domain.Order, error) {
	var ms []OrderModel
	if err := q.Preload("Items").Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(ms))
	for _, m := range ms {
		out = append(out, orderFromModel(m))
	}
	return out, nil
}

// ---------- cart ----------

func (g *GormStore) UpsertCartItem(userID, productID string, qty int) (domain.CartItem, error) {
	if qty <= 0 {
		return domain.CartItem{}, domain.NewValidationError("quantity must be > 0")
	}
	var saved CartItemModel
	err := g.db.Transaction(func(tx *gorm.DB) error {
		// 商品存在性在同一事务里校验，与删商品并发时不会留下指向空商品的行
		var cnt int64
		if err := tx.Model(&ProductModel{}).Where("id = ?", productID).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return domain.NewNotFoundError("product %s not found", productID)
		}
		m := CartItemModel{
			ID:        utils.NewID(),
			UserID:    userID,
			ProductID: productID,
			Quantity:  qty,
		}
		// 唯一索引 + ON CONFLICT：同 (user, product) 并发加购由数据库保证只留一条
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).Create(&m).Error; err != nil {
			return err
		}
		return tx.First(&saved, "user_id = ? AND product_id = ?", userID, productID).Error
	})
	if err != nil {
		return domain.CartItem{}, err
	}
	return cartItemFromModel(saved), nil
}

func (g *GormStore) ListCartByUser(userID string) ([]domain.CartItem, error) {
	var ms []CartItemModel
	if err := g.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.CartItem, 0, len(ms))
	for _, m := range ms {
		out = append(out, cartItemFromModel(m))
	}
	return out, nil
}

func (g *GormStore) RemoveCartItem(userID, productID string) (bool, error) {
	res := g.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&CartItemModel{})
	return res.RowsAffected > 0, res.Error
}

func (g *GormStore) ClearCart(userID string) error {
	return g.db.Where("user_id = ?", userID).Delete(&CartItemModel{}).Error
}

// ---------- checkout ----------

func (g *GormStore) CheckoutCart(userID string) (domain.Order, error) {
	var created domain.Order
	err := g.db.Transaction(func(tx *gorm.DB) error {
		var items []CartItemModel
		if err := tx.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.NewValidationError("cart is empty")
		}

		lines := make([]domain.OrderItem, 0, len(items))
		var total float64
		currency := ""
		for _, it := range items {
			var p ProductModel
			// 行锁防止并发下单超卖
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", it.ProductID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("product %s not found", it.ProductID)
			}
			if err != nil {
				return err
			}
			if p.CountInStock < it.Quantity {
				return domain.NewValidationError("insufficient stock for %s", p.Name)
			}
			// 订单单币种，混币拒单（回滚整个事务）
			if currency == "" {
				currency = p.Currency
			} else if p.Currency != currency {
				return domain.NewValidationError("cart mixes currencies %s and %s", currency, p.Currency)
			}
			if err := tx.Model(&ProductModel{}).Where("id = ?", p.ID).
				Update("count_in_stock", gorm.Expr("count_in_stock - ?", it.Quantity)).Error; err != nil {
				return err
			}
			lines = append(lines, domain.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Quantity:  it.Quantity,
				UnitPrice: p.Price,
			})
			total += p.Price * float64(it.Quantity)
		}

		o, err := createOrderTx(tx, domain.Order{
			UserID:   userID,
			Items:    lines,
			Status:   domain.OrderPending,
			Total:    total,
			Currency: currency,
		})
		if err != nil {
			return err
		}
		created = o
		return tx.Where("user_id = ?", userID).Delete(&CartItemModel{}).Error
	})
	return created, err
}

// ---------- 转换 ----------

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID: m.ID, Name: m.Name, Email: m.Email, PasswordHash: m.PasswordHash,
		Role: m.Role, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

func productToModel(p domain.Product) ProductModel {
	return ProductModel{
		ID: p.ID, Name: p.Name, Description: p.Description, Price: p.Price,
		Currency: p.Currency, Category: p.Category, Image: p.Image,
		Rating: p.Rating, NumReviews: p.NumReviews, CountInStock: p.CountInStock,
	}
}

func productFromModel(m ProductModel) domain.Product {
	return domain.Product{
		ID: m.ID, Name: m.Name, Description: m.Description, Price: m.Price,
		Currency: m.Currency, Category: m.Category, Image: m.Image,
		Rating: m.Rating, NumReviews: m.NumReviews, CountInStock: m.CountInStock,
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

func orderToModel(o domain.Order) OrderModel {
	items := make([]OrderItemModel, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemModel{
			ProductID: it.ProductID, Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice,
		})
	}
	return OrderModel{
		ID: o.ID, UserID: o.UserID, Status: string(o.Status),
		Total: o.Total, Currency: o.Currency, Items: items,
	}
}

func orderFromModel(m OrderModel) domain.Order {
	items := make([]domain.OrderItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID, Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice,
		})
	}
	return domain.Order{
		ID: m.ID, UserID: m.UserID, Status: domain.OrderStatus(m.Status),
		Total: m.Total, Currency: m.Currency, Items: items,
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

func cartItemFromModel(m CartItemModel) domain.CartItem {
	return domain.CartItem{
		ID: m.ID, UserID: m.UserID, ProductID: m.ProductID, Quantity: m.Quantity,
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

func productPatchUpdates(p domain.ProductPatch) map[string]any {
	updates := map[string]any{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Price != nil {
		updates["price"] = *p.Price
	}
	if p.Currency != nil {
		updates["currency"] = *p.Currency
	}
	if p.Category != nil {
		updates["category"] = *p.Category
	}
	if p.Image != nil {
		updates["image"] = *p.Image
	}
	if p.Rating != nil {
		updates["rating"] = *p.Rating
	}
	if p.NumReviews != nil {
		updates["num_reviews"] = *p.NumReviews
	}
	if p.CountInStock != nil {
		updates["count_in_stock"] = *p.CountInStock
	}
	return updates
}

// 不依赖 gorm.ErrDuplicatedKey，避免驱动差异
func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "unique failed")
}
