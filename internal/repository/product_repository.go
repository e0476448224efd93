package repository

import (
	"errors"
	"strings"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetBySlug(slug string, onlyActive bool) (*models.Product, error)
	GetByID(id uint) (*models.Product, error)
	GetVariant(productID, variantID uint) (*models.ProductVariant, error)
	CountBySlug(slug string, excludeID uint) (int64, error)
	Create(product *models.Product) error
	Update(product *models.Product, variants []models.ProductVariant) error
	SetActive(id uint, active bool) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func preloadActiveVariants(query *gorm.DB, onlyActive bool) *gorm.DB {
	return query.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		if onlyActive {
			db = db.Where("is_active = ?", true)
		}
		return db.Order("sort_order DESC, id ASC")
	})
}

// List 商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	var products []models.Product
	query := r.db.Model(&models.Product{})

	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"name", "slug", "description"})
		query = query.Where(condition, repeatLikeArgs("%"+strings.ToLower(search)+"%", argCount)...)
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}
	if filter.WithVariants {
		query = preloadActiveVariants(query, filter.OnlyActive)
	}
	if err := query.Order("sort_order DESC, id ASC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetBySlug 根据 slug 获取商品
func (r *GormProductRepository) GetBySlug(slug string, onlyActive bool) (*models.Product, error) {
	var product models.Product
	query := preloadActiveVariants(r.db.Where("slug = ?", slug), onlyActive)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByID 根据 ID 获取商品（含全部规格）
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := preloadActiveVariants(r.db, false).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetVariant 获取商品下的规格
func (r *GormProductRepository) GetVariant(productID, variantID uint) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.Where("id = ? AND product_id = ?", variantID, productID).First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// CountBySlug 统计 slug 数量
func (r *GormProductRepository) CountBySlug(slug string, excludeID uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建商品（连同规格）
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		active := product.IsActive
		inactive := make([]int, 0)
		for i := range product.Variants {
			if !product.Variants[i].IsActive {
				inactive = append(inactive, i)
			}
		}
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		// default:true 会忽略零值，需单独写回下架状态
		if !active {
			if err := tx.Model(product).Update("is_active", false).Error; err != nil {
				return err
			}
			product.IsActive = false
		}
		for _, idx := range inactive {
			variant := &product.Variants[idx]
			if err := tx.Model(variant).Update("is_active", false).Error; err != nil {
				return err
			}
			variant.IsActive = false
		}
		return nil
	})
}

// Update 更新商品并整体替换规格列表
func (r *GormProductRepository) Update(product *models.Product, variants []models.ProductVariant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(product).Omit("Variants").Select("slug", "name", "description", "image_url", "base_price", "is_active", "sort_order").Updates(product).Error; err != nil {
			return err
		}
		keep := make([]uint, 0, len(variants))
		for i := range variants {
			variants[i].ProductID = product.ID
			if variants[i].ID != 0 {
				if err := tx.Model(&models.ProductVariant{}).
					Where("id = ? AND product_id = ?", variants[i].ID, product.ID).
					Select("size_label", "price", "is_active", "sort_order").
					Updates(&variants[i]).Error; err != nil {
					return err
				}
			} else {
				active := variants[i].IsActive
				if err := tx.Create(&variants[i]).Error; err != nil {
					return err
				}
				// default:true 会忽略零值，需单独写回下架状态
				if !active {
					if err := tx.Model(&variants[i]).Update("is_active", false).Error; err != nil {
						return err
					}
					variants[i].IsActive = false
				}
			}
			keep = append(keep, variants[i].ID)
		}
		cleanup := tx.Where("product_id = ?", product.ID)
		if len(keep) > 0 {
			cleanup = cleanup.Where("id NOT IN ?", keep)
		}
		if err := cleanup.Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		product.Variants = variants
		return nil
	})
}

// SetActive 上下架
func (r *GormProductRepository) SetActive(id uint, active bool) error {
	result := r.db.Model(&models.Product{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
