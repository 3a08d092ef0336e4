package main

import (
	"errors"
	"time"

	"github.com/greencart/internal/config"
	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedProduct struct {
	Name        string
	Description string
	Price       string
	Stock       int
	Category    string
	Image       string
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	categories := []models.Category{
		{Name: "Vegetables", Description: "Fresh seasonal vegetables"},
		{Name: "Fruits", Description: "Locally sourced fruit"},
		{Name: "Pantry", Description: "Grains, oils and dry goods"},
	}
	categoryIDs := map[string]uint{}
	for _, cat := range categories {
		var existing models.Category
		err := models.DB.Where("name = ?", cat.Name).First(&existing).Error
		switch {
		case err == nil:
			stdLog.Printf("Category already exists: %s", cat.Name)
			categoryIDs[cat.Name] = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Name, err)
				continue
			}
			stdLog.Printf("Created category: %s", cat.Name)
			categoryIDs[cat.Name] = cat.ID
		default:
			stdLog.Printf("Failed to load category %s: %v", cat.Name, err)
		}
	}

	products := []seedProduct{
		{Name: "Organic Carrots 1kg", Description: "Crunchy carrots from nearby farms", Price: "3.20", Stock: 120, Category: "Vegetables"},
		{Name: "Baby Spinach 250g", Description: "Washed and ready to eat", Price: "2.75", Stock: 80, Category: "Vegetables"},
		{Name: "Gala Apples 1kg", Description: "Sweet and crisp", Price: "4.10", Stock: 150, Category: "Fruits"},
		{Name: "Bananas 1kg", Description: "Fair trade bananas", Price: "1.95", Stock: 200, Category: "Fruits"},
		{Name: "Brown Rice 2kg", Description: "Whole grain long rice", Price: "6.50", Stock: 60, Category: "Pantry"},
		{Name: "Extra Virgin Olive Oil 1L", Description: "Cold pressed", Price: "11.90", Stock: 40, Category: "Pantry"},
	}
	productIDs := map[string]uint{}
	for _, item := range products {
		var existing models.Product
		if err := models.DB.Where("name = ?", item.Name).First(&existing).Error; err == nil {
			stdLog.Printf("Product already exists: %s", item.Name)
			productIDs[item.Name] = existing.ID
			continue
		}
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			stdLog.Printf("Invalid price for %s: %v", item.Name, err)
			continue
		}
		product := models.Product{
			Name:        item.Name,
			Description: item.Description,
			Price:       models.NewMoneyFromDecimal(price),
			Stock:       item.Stock,
			Image:       item.Image,
		}
		if id, ok := categoryIDs[item.Category]; ok {
			product.CategoryID = &id
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", item.Name, err)
			continue
		}
		stdLog.Printf("Created product: %s", item.Name)
		productIDs[item.Name] = product.ID
	}

	pairs := [][2]string{
		{"Organic Carrots 1kg", "Baby Spinach 250g"},
		{"Gala Apples 1kg", "Bananas 1kg"},
		{"Brown Rice 2kg", "Extra Virgin Olive Oil 1L"},
	}
	for _, pair := range pairs {
		productID, ok1 := productIDs[pair[0]]
		recommendedID, ok2 := productIDs[pair[1]]
		if !ok1 || !ok2 {
			continue
		}
		rec := models.ProductRecommendation{ProductID: productID, RecommendedProductID: recommendedID}
		if err := models.DB.Where(&rec).FirstOrCreate(&rec).Error; err != nil {
			stdLog.Printf("Failed to create recommendation %s -> %s: %v", pair[0], pair[1], err)
		}
	}

	now := time.Now()
	coupons := []models.Coupon{
		{Code: "WELCOME5", DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(5)), ValidFrom: now, ValidTo: now.AddDate(0, 3, 0), Active: true},
		{Code: "GREEN10", DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)), ValidFrom: now, ValidTo: now.AddDate(0, 1, 0), Active: true},
	}
	for _, coupon := range coupons {
		var existing models.Coupon
		if err := models.DB.Where("code = ?", coupon.Code).First(&existing).Error; err == nil {
			stdLog.Printf("Coupon already exists: %s", coupon.Code)
			continue
		}
		if err := models.DB.Create(&coupon).Error; err != nil {
			stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
			continue
		}
		stdLog.Printf("Created coupon: %s", coupon.Code)
	}

	stdLog.Printf("Seed finished")
}
