// internal/service/store/infrastructure/memory_ledger.go
package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"obsidianwear/internal/service/store/domain"
)

// MemoryLedger 是 StockLedger 的进程内实现，语义与 GormStockLedger 一致：
// 检查与扣减在同一把锁里完成，是单实例部署和测试的后端。
type MemoryLedger struct {
	mu       sync.Mutex
	stocks   map[string]domain.StockMatrix // productID -> matrix
	names    map[string]string             // productID -> 展示名，用于报错
	inStock  map[string]bool
	onChange func(productID string, inStock bool) // 可选：派生标志变更回调
}

// NewMemoryLedger 创建一个空的进程内台账。
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		stocks:  make(map[string]domain.StockMatrix),
		names:   make(map[string]string),
		inStock: make(map[string]bool),
	}
}

// Seed 初始化一个商品的库存矩阵（覆盖已有条目）。
func (l *MemoryLedger) Seed(productID, name string, matrix domain.StockMatrix) {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := domain.StockMatrix{}
	for size, colors := range matrix {
		copied[size] = map[string]int{}
		for color, qty := range colors {
			copied[size][color] = qty
		}
	}
	l.stocks[productID] = copied
	l.names[productID] = name
	l.recompute(productID)
}

// SetOnChange 注册派生标志变更回调（例如回写商品仓储）。
func (l *MemoryLedger) SetOnChange(fn func(productID string, inStock bool)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// InStock 返回商品当前的派生标志。
func (l *MemoryLedger) InStock(productID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inStock[productID]
}

func (l *MemoryLedger) GetAvailable(_ context.Context, productID, size, color string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	qty, ok := l.lookup(productID, size, color)
	if !ok {
		return 0, fmt.Errorf("%w: %s %s/%s", domain.ErrStockEntryNotFound, productID, size, color)
	}
	return qty, nil
}

func (l *MemoryLedger) Decrement(_ context.Context, productID, size, color string, qty int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	available, ok := l.lookup(productID, size, color)
	if !ok {
		return 0, fmt.Errorf("%w: %s %s/%s", domain.ErrStockEntryNotFound, productID, size, color)
	}
	if available < qty {
		name := l.names[productID]
		if name == "" {
			name = productID
		}
		return 0, &domain.InsufficientStockError{
			ProductID:   productID,
			ProductName: name,
			Size:        size,
			Color:       color,
			Requested:   qty,
			Available:   available,
		}
	}
	l.stocks[productID][size][color] = available - qty
	l.recompute(productID)
	return available - qty, nil
}

func (l *MemoryLedger) Increment(_ context.Context, productID, size, color string, qty int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	available, ok := l.lookup(productID, size, color)
	if !ok {
		return 0, fmt.Errorf("%w: %s %s/%s", domain.ErrStockEntryNotFound, productID, size, color)
	}
	l.stocks[productID][size][color] = available + qty
	l.recompute(productID)
	return available + qty, nil
}

func (l *MemoryLedger) Matrix(_ context.Context, productID string) (domain.StockMatrix, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	matrix, ok := l.stocks[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	copied := domain.StockMatrix{}
	for size, colors := range matrix {
		copied[size] = map[string]int{}
		for color, qty := range colors {
			copied[size][color] = qty
		}
	}
	return copied, nil
}

// lookup 与 recompute 由持锁的调用方使用。

func (l *MemoryLedger) lookup(productID, size, color string) (int, bool) {
	matrix, ok := l.stocks[productID]
	if !ok {
		return 0, false
	}
	colors, ok := matrix[size]
	if !ok {
		return 0, false
	}
	qty, ok := colors[color]
	return qty, ok
}

func (l *MemoryLedger) recompute(productID string) {
	current := l.stocks[productID].InStock()
	changed := l.inStock[productID] != current
	l.inStock[productID] = current
	if changed && l.onChange != nil {
		l.onChange(productID, current)
	}
}
