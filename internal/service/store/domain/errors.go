// internal/service/store/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrStockEntryNotFound    = errors.New("stock entry not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyCancelled = errors.New("order already cancelled")
	ErrDuplicateOrder        = errors.New("order id already exists")
	ErrInvalidTransition     = errors.New("illegal order status transition")

	// ErrValidation 与 ErrInsufficientStock 是哨兵，
	// 带上下文的具体错误通过 Unwrap 关联到它们，方便 errors.Is 判断。
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPersistence       = errors.New("persistence failure")
)

// ValidationError 携带具体的校验失败原因，客户端可据此修正后重试。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError 是面向用户的库存不足错误。
// 必须精确到具体哪个商品的哪个 (size, color) 缺多少，客户端才能调整购物车。
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Size        string
	Color       string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s/%s): requested %d, available %d",
		e.ProductName, e.Size, e.Color, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PersistenceError 包装存储层的非库存类失败 (连接中断等)，对调用方可重试。
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

// Unwrap 同时暴露哨兵和底层错误，errors.Is 两边都能命中。
func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }
