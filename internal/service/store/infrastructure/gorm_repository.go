// internal/service/store/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"obsidianwear/internal/service/store/domain"
)

const mysqlDuplicateEntry = 1062

// GormProductRepository 是 ProductRepository 的 GORM 实现。
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository 创建一个新的 GORM 仓储实例
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID 查找商品并组装它的库存矩阵视图。软删除的商品视为不存在。
func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var model ProductModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, &domain.PersistenceError{Op: "product lookup", Err: err}
	}

	matrix, err := loadMatrix(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return ToDomainProduct(&model, matrix), nil
}

// FindAll 返回所有未删除的商品及各自的库存视图。
func (r *GormProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, &domain.PersistenceError{Op: "product list", Err: err}
	}

	// 一次查询取回全部库存条目，按商品分组，避免 N+1
	var entries []StockEntryModel
	if err := r.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, &domain.PersistenceError{Op: "stock entries list", Err: err}
	}
	matrices := make(map[string]domain.StockMatrix)
	for _, entry := range entries {
		matrix, ok := matrices[entry.ProductID]
		if !ok {
			matrix = domain.StockMatrix{}
			matrices[entry.ProductID] = matrix
		}
		if matrix[entry.Size] == nil {
			matrix[entry.Size] = map[string]int{}
		}
		matrix[entry.Size][entry.Color] = entry.Quantity
	}

	products := make([]*domain.Product, 0, len(models))
	for i := range models {
		products = append(products, ToDomainProduct(&models[i], matrices[models[i].ID]))
	}
	return products, nil
}

// Save 创建或更新商品属性，并为声明的每个 (size, color) 变体
// 确保存在一条库存条目（数量不动，新变体从 0 开始）。
// 更新走显式列清单：in_stock 只属于库存变更事务，created_at 不可变，
// 全字段 UPDATE 会把它们覆盖掉。
func (r *GormProductRepository) Save(ctx context.Context, product *domain.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ProductModel{}).Where("id = ?", product.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := tx.Create(ToProductModel(product)).Error; err != nil {
				return err
			}
		} else if err := tx.Model(&ProductModel{}).Where("id = ?", product.ID).
			Updates(productUpdateColumns(product)).Error; err != nil {
			return err
		}
		if !product.TracksStock {
			return nil
		}
		for _, size := range product.Sizes {
			for _, color := range product.Colors {
				entry := StockEntryModel{ProductID: product.ID, Size: size, Color: color}
				if err := tx.Where(
					"product_id = ? AND size = ? AND color = ?", product.ID, size, color,
				).FirstOrCreate(&entry).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return &domain.PersistenceError{Op: "product save", Err: err}
	}
	return nil
}

// Delete 软删除商品。
func (r *GormProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ProductModel{})
	if res.Error != nil {
		return &domain.PersistenceError{Op: "product delete", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// GormOrderRepository 是 OrderRepository 的 GORM 实现。
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的 GORM 仓储实例
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create 在一个事务里落库订单和所有明细行。
func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model := ToOrderModel(order)
	err := r.db.WithContext(ctx).Create(model).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return domain.ErrDuplicateOrder
		}
		return &domain.PersistenceError{Op: "order insert", Err: err}
	}
	return nil
}

// FindByID 根据订单号查找订单。
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, &domain.PersistenceError{Op: "order lookup", Err: err}
	}
	return ToDomainOrder(&model), nil
}

// FindAll 返回全部订单，按创建时间倒序。
func (r *GormOrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&models).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: "order list", Err: err}
	}
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, ToDomainOrder(&models[i]))
	}
	return orders, nil
}

// Update 保存状态流转或取消后的订单头，明细行不可变。
func (r *GormOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	updateData := map[string]interface{}{
		"status":       string(order.Status),
		"cancelled_at": nil,
		"updated_at":   order.UpdatedAt,
	}
	if order.CancelledAt != nil {
		updateData["cancelled_at"] = *order.CancelledAt
	}
	res := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", order.ID).Updates(updateData)
	if res.Error != nil {
		return &domain.PersistenceError{Op: "order update", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// productUpdateColumns 列出管理端可编辑的列。
// in_stock 与 created_at 故意不在其中。
func productUpdateColumns(product *domain.Product) map[string]interface{} {
	return map[string]interface{}{
		"name":         product.Name,
		"description":  product.Description,
		"price":        product.Price,
		"category":     product.Category,
		"sizes":        encodeList(product.Sizes),
		"colors":       encodeList(product.Colors),
		"tracks_stock": product.TracksStock,
	}
}

// loadMatrix 把一个商品的库存条目组装成矩阵视图。
func loadMatrix(db *gorm.DB, productID string) (domain.StockMatrix, error) {
	var entries []StockEntryModel
	if err := db.Where("product_id = ?", productID).Find(&entries).Error; err != nil {
		return nil, &domain.PersistenceError{Op: "stock entries lookup", Err: err}
	}
	matrix := domain.StockMatrix{}
	for _, entry := range entries {
		if matrix[entry.Size] == nil {
			matrix[entry.Size] = map[string]int{}
		}
		matrix[entry.Size][entry.Color] = entry.Quantity
	}
	return matrix, nil
}
