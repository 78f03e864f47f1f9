package store

import (
	"go.uber.org/zap"

	"ttech-shop/internal/domain"
	"ttech-shop/pkg/utils"
)

// Seed 进程启动时灌一次引导数据：管理员账号 + 示例商品目录。
// 幂等：管理员邮箱已存在就整体跳过，重启/多实例下不会重复插入
func Seed(s Store, adminName, adminEmail, adminPassword string, log *zap.Logger) error {
	if _, ok, err := s.GetUserByEmail(adminEmail); err != nil {
		return err
	} else if ok {
		log.Debug("seed skipped, admin already present", zap.String("email", adminEmail))
		return nil
	}

	hash, err := utils.HashPassword(adminPassword)
	if err != nil {
		return err
	}
	admin, err := s.CreateUser(domain.User{
		Name:         adminName,
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		return err
	}
	log.Info("seed admin created", zap.String("email", admin.Email))

	if products, err := s.ListProducts(""); err != nil {
		return err
	} else if len(products) > 0 {
		return nil
	}
	for _, p := range sampleCatalog() {
		if _, err := s.CreateProduct(p); err != nil {
			return err
		}
	}
	log.Info("seed catalog created", zap.Int("products", len(sampleCatalog())))
	return nil
}

// 示例目录（加纳市场，GHS 计价）
func sampleCatalog() []domain.Product {
	return []domain.Product{
		{
			Name:         "Active Noise Cancelling Wireless Headphones",
			Description:  "Latest smartphone with excellent camera and long battery life. Perfect for capturing memories and staying connected.",
			Price:        800.00,
			Currency:     "GHS",
			Category:     "Headphones",
			Image:        "/images/headphones-1.jpg",
			Rating:       4.5,
			NumReviews:   128,
			CountInStock: 15,
		},
		{
			Name:         "HP Laptop 15-dw3000",
			Description:  "Reliable laptop for work and entertainment. Intel Core i5, 8GB RAM, 256GB SSD.",
			Price:        4200.00,
			Currency:     "GHS",
			Category:     "Laptops",
			Image:        "/images/laptop-1.webp",
			Rating:       4.3,
			NumReviews:   89,
			CountInStock: 8,
		},
		{
			Name:         "JBL Flip 6",
			Description:  "JBL Flip 6 is IP67 waterproof and dustproof, so you can bring your speaker anywhere.",
			Price:        180.00,
			Currency:     "GHS",
			Category:     "Speakers",
			Image:        "/images/speaker-4.webp",
			Rating:       4.8,
			NumReviews:   95,
			CountInStock: 25,
		},
		{
			Name:         "iPhone 16",
			Description:  "Innovative design for ultimate performance and battery",
			Price:        320.00,
			Currency:     "GHS",
			Category:     "Phones",
			Image:        "/images/phone-1.webp",
			Rating:       4.6,
			NumReviews:   42,
			CountInStock: 12,
		},
		{
			Name:         "3D Thudercloud LED",
			Description:  "Cloud Light Multicolor Lightning Changing, 3D Thundercloud LED Light Cotton Lightning Cloud Colorful Atmosphere Night Light, DIY Creative Cloud Lights for Bedroom Gaming Room Indoor, 16 Feet",
			Price:        95.00,
			Currency:     "GHS",
			Category:     "LED Lights",
			Image:        "/images/led-1.jpg",
			Rating:       4.9,
			NumReviews:   203,
			CountInStock: 50,
		},
		{
			Name:         "Samsung Galaxy S8",
			Description:  "128GB, Expandable up to 1.5TB via microSD card",
			Price:        850.00,
			Currency:     "GHS",
			Category:     "Phones",
			Image:        "/images/phone-5.webp",
			Rating:       4.7,
			NumReviews:   156,
			CountInStock: 30,
		},
	}
}
