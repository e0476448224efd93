package main

import (
	"errors"
	"flag"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/shopspring/decimal"
)

type seedVariant struct {
	Label string
	Price string
}

type seedProduct struct {
	Slug        string
	Name        string
	Description string
	ImageURL    string
	Variants    []seedVariant
}

// 演示商品：每个商品按容量拆分规格，规格各自定价
var demoCatalog = []seedProduct{
	{
		Slug:        "amber-noir",
		Name:        "Amber Noir",
		Description: "Warm amber, smoked vanilla and a dry cedar base.",
		ImageURL:    "/images/products/amber-noir.jpg",
		Variants: []seedVariant{
			{Label: "5ml", Price: "18.00"},
			{Label: "10ml", Price: "32.00"},
			{Label: "50ml", Price: "129.00"},
		},
	},
	{
		Slug:        "citrus-vetiver",
		Name:        "Citrus Vetiver",
		Description: "Bergamot and grapefruit over earthy Haitian vetiver.",
		ImageURL:    "/images/products/citrus-vetiver.jpg",
		Variants: []seedVariant{
			{Label: "5ml", Price: "15.00"},
			{Label: "10ml", Price: "27.00"},
			{Label: "50ml", Price: "110.00"},
		},
	},
	{
		Slug:        "rose-oud",
		Name:        "Rose Oud",
		Description: "Damask rose layered on dark oud and saffron.",
		ImageURL:    "/images/products/rose-oud.jpg",
		Variants: []seedVariant{
			{Label: "5ml", Price: "24.00"},
			{Label: "10ml", Price: "45.00"},
			{Label: "100ml", Price: "260.00"},
		},
	},
	{
		Slug:        "discovery-set",
		Name:        "Discovery Set",
		Description: "Six 2ml samples of the house collection.",
		ImageURL:    "/images/products/discovery-set.jpg",
		Variants: []seedVariant{
			{Label: "6 x 2ml", Price: "35.00"},
		},
	},
}

func main() {
	var withAdmin bool
	flag.BoolVar(&withAdmin, "admin", true, "同时初始化默认管理员")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(models.DB); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if withAdmin {
		seed := models.AdminSeed{Username: cfg.Admin.Username, Password: cfg.Admin.Password, Email: cfg.Admin.Email}
		if created, err := models.EnsureDefaultAdmin(models.DB, seed); err != nil {
			stdLog.Printf("Failed to init default admin: %v", err)
		} else if created {
			stdLog.Printf("Created default admin: %s", seed.Username)
		}
	}

	productService := service.NewProductService(repository.NewProductRepository(models.DB))
	created := 0
	for i, item := range demoCatalog {
		input := service.CreateProductInput{
			Slug:        item.Slug,
			Name:        item.Name,
			Description: item.Description,
			ImageURL:    item.ImageURL,
			SortOrder:   len(demoCatalog) - i,
		}
		for j, variant := range item.Variants {
			input.Variants = append(input.Variants, service.ProductVariantInput{
				SizeLabel: variant.Label,
				Price:     decimal.RequireFromString(variant.Price),
				SortOrder: j,
			})
		}
		if _, err := productService.Create(input); err != nil {
			if errors.Is(err, service.ErrSlugExists) {
				stdLog.Printf("Product already exists: %s", item.Slug)
				continue
			}
			stdLog.Printf("Failed to create product %s: %v", item.Slug, err)
			continue
		}
		created++
		stdLog.Printf("Created product: %s (%d variants)", item.Slug, len(item.Variants))
	}

	stdLog.Printf("Seed finished: %d products created", created)
}
