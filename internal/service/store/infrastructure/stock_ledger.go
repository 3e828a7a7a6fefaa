// internal/service/store/infrastructure/stock_ledger.go
package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"obsidianwear/internal/service/store/domain"
)

// GormStockLedger 是 StockLedger 的 MySQL 实现。
// 扣减的串行化点是数据库的条件 UPDATE:
//
//	UPDATE stock_entries SET quantity = quantity - ? WHERE ... AND quantity >= ?
//
// 两个并发订单抢最后一件库存时，数据库保证恰好一个 UPDATE 命中。
// 应用层没有任何锁，也不做读-改-写。
type GormStockLedger struct {
	db *gorm.DB
}

// NewGormStockLedger 创建一个新的台账实例。
func NewGormStockLedger(db *gorm.DB) *GormStockLedger {
	return &GormStockLedger{db: db}
}

// GetAvailable 返回当前可售数量。
func (l *GormStockLedger) GetAvailable(ctx context.Context, productID, size, color string) (int, error) {
	var entry StockEntryModel
	err := l.db.WithContext(ctx).
		Where("product_id = ? AND size = ? AND color = ?", productID, size, color).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: %s %s/%s", domain.ErrStockEntryNotFound, productID, size, color)
		}
		return 0, &domain.PersistenceError{Op: "stock lookup", Err: err}
	}
	return entry.Quantity, nil
}

// Decrement 原子扣减。数量不足时以此刻的判定为准返回 InsufficientStockError，
// 并在同一个事务里重算商品的 in_stock 派生列。
func (l *GormStockLedger) Decrement(ctx context.Context, productID, size, color string, qty int) (int, error) {
	var newQty int
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&StockEntryModel{}).
			Where("product_id = ? AND size = ? AND color = ? AND quantity >= ?",
				productID, size, color, qty).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
		if res.Error != nil {
			return &domain.PersistenceError{Op: "stock decrement", Err: res.Error}
		}

		if res.RowsAffected == 0 {
			// 区分"条目不存在"与"数量不足"
			var entry StockEntryModel
			err := tx.Where("product_id = ? AND size = ? AND color = ?", productID, size, color).
				First(&entry).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s %s/%s", domain.ErrStockEntryNotFound, productID, size, color)
				}
				return &domain.PersistenceError{Op: "stock decrement recheck", Err: err}
			}
			return &domain.InsufficientStockError{
				ProductID:   productID,
				ProductName: productName(tx, productID),
				Size:        size,
				Color:       color,
				Requested:   qty,
				Available:   entry.Quantity,
			}
		}

		var entry StockEntryModel
		if err := tx.Where("product_id = ? AND size = ? AND color = ?", productID, size, color).
			First(&entry).Error; err != nil {
			return &domain.PersistenceError{Op: "stock decrement readback", Err: err}
		}
		newQty = entry.Quantity

		return recomputeInStock(tx, productID)
	})
	if err != nil {
		return 0, err
	}
	return newQty, nil
}

// Increment 补货或取消补偿，不设上限，同样重算 in_stock。
func (l *GormStockLedger) Increment(ctx context.Context, productID, size, color string, qty int) (int, error) {
	var newQty int
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&StockEntryModel{}).
			Where("product_id = ? AND size = ? AND color = ?", productID, size, color).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
		if res.Error != nil {
			return &domain.PersistenceError{Op: "stock increment", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s %s/%s", domain.ErrStockEntryNotFound, productID, size, color)
		}

		var entry StockEntryModel
		if err := tx.Where("product_id = ? AND size = ? AND color = ?", productID, size, color).
			First(&entry).Error; err != nil {
			return &domain.PersistenceError{Op: "stock increment readback", Err: err}
		}
		newQty = entry.Quantity

		return recomputeInStock(tx, productID)
	})
	if err != nil {
		return 0, err
	}
	return newQty, nil
}

// Matrix 组装商品的完整库存视图。
func (l *GormStockLedger) Matrix(ctx context.Context, productID string) (domain.StockMatrix, error) {
	var count int64
	if err := l.db.WithContext(ctx).Model(&ProductModel{}).
		Where("id = ?", productID).Count(&count).Error; err != nil {
		return nil, &domain.PersistenceError{Op: "product existence check", Err: err}
	}
	if count == 0 {
		return nil, domain.ErrProductNotFound
	}
	return loadMatrix(l.db.WithContext(ctx), productID)
}

// recomputeInStock 在库存变更事务内重算派生标志，
// 保证 in_stock == (sum(quantity) > 0) 在每次变更后立即成立。
func recomputeInStock(tx *gorm.DB, productID string) error {
	var total int64
	err := tx.Model(&StockEntryModel{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return &domain.PersistenceError{Op: "in_stock recompute", Err: err}
	}
	err = tx.Model(&ProductModel{}).
		Where("id = ?", productID).
		UpdateColumn("in_stock", total > 0).Error
	if err != nil {
		return &domain.PersistenceError{Op: "in_stock update", Err: err}
	}
	return nil
}

func productName(tx *gorm.DB, productID string) string {
	var name string
	tx.Model(&ProductModel{}).Where("id = ?", productID).Select("name").Scan(&name)
	if name == "" {
		return productID
	}
	return name
}
