// internal/service/store/domain/repository.go
package domain

import "context"

// ProductRepository 定义了商品聚合的持久化接口。
// 它位于领域层，但由基础设施层实现。
type ProductRepository interface {
	// FindByID 返回一个商品及其库存视图；软删除的商品视为不存在。
	FindByID(ctx context.Context, id string) (*Product, error)

	// FindAll 返回所有未删除的商品。
	FindAll(ctx context.Context) ([]*Product, error)

	// Save 保存一个商品聚合（用于创建或更新商品属性，不含库存数量）。
	// 已有商品的 InStock 派生标志和创建时间保持不变，
	// InStock 只由 StockLedger 在库存变更事务里更新。
	Save(ctx context.Context, product *Product) error

	// Delete 软删除一个商品，历史订单的引用保持有效。
	Delete(ctx context.Context, id string) error
}

// OrderRepository 定义了订单聚合的持久化接口。
type OrderRepository interface {
	// Create 落库一个新订单；订单号冲突时返回 ErrDuplicateOrder。
	Create(ctx context.Context, order *Order) error

	// FindByID 根据订单号查找订单。
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindAll 返回全部订单，按创建时间倒序。
	FindAll(ctx context.Context) ([]*Order, error)

	// Update 保存状态流转或取消后的订单。
	Update(ctx context.Context, order *Order) error
}
