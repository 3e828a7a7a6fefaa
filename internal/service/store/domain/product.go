// internal/service/store/domain/product.go
package domain

import "time"

// StockMatrix 是单个商品全部可售库存的二级映射: size -> color -> 数量。
type StockMatrix map[string]map[string]int

// Total 返回矩阵中所有库存数量之和。
func (m StockMatrix) Total() int {
	total := 0
	for _, colors := range m {
		for _, qty := range colors {
			total += qty
		}
	}
	return total
}

// InStock 是派生的"有货"标志: 当且仅当库存总量大于零。
func (m StockMatrix) InStock() bool {
	return m.Total() > 0
}

// Get 返回 (size, color) 组合的数量，组合不存在时返回 (0, false)。
func (m StockMatrix) Get(size, color string) (int, bool) {
	colors, ok := m[size]
	if !ok {
		return 0, false
	}
	qty, ok := colors[color]
	return qty, ok
}

// Product 是商品聚合的根实体。
// 库存的权威数据在 StockLedger 的 (product, size, color) 条目上，
// 这里的 Stock 只是一个用于读路径的视图。
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Category    string
	Sizes       []string // 有序
	Colors      []string // 有序
	TracksStock bool     // 预售/定制商品为 false，下单时跳过库存校验
	InStock     bool     // 派生字段，每次库存变更后重算
	Stock       StockMatrix
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time // 软删除，历史订单仍会引用商品
}

// HasVariant 判断商品是否声明了给定的 (size, color) 组合。
func (p *Product) HasVariant(size, color string) bool {
	return contains(p.Sizes, size) && contains(p.Colors, color)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
