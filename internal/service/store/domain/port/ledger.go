// internal/service/store/domain/port/ledger.go
package port

import (
	"context"

	"obsidianwear/internal/service/store/domain"
)

// StockLedger 是库存账本的出站端口：每个 (product, size, color) 键上
// 唯一的可售数量权威。Decrement 是全系统库存变更的唯一串行化点，
// 实现必须使用存储层的条件更新 (check-and-set)，绝不允许应用层读-改-写。
type StockLedger interface {
	// GetAvailable 返回当前可售数量；组合不存在时返回 ErrStockEntryNotFound。
	GetAvailable(ctx context.Context, productID, size, color string) (int, error)

	// Decrement 原子地扣减库存并返回新数量。
	// 扣减瞬间数量不足时返回 *InsufficientStockError，以扣减时的判定为准。
	// 副作用：重算并持久化商品的 InStock 派生标志。
	Decrement(ctx context.Context, productID, size, color string, qty int) (int, error)

	// Increment 用于补货和取消订单的补偿，不设上限。
	// 同样重算 InStock。
	Increment(ctx context.Context, productID, size, color string, qty int) (int, error)

	// Matrix 组装商品的完整库存视图，供读路径和缓存填充使用。
	Matrix(ctx context.Context, productID string) (domain.StockMatrix, error)
}
