// internal/service/store/domain/order.go
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// PaymentCOD 是当前唯一支持的支付方式：货到付款。
const PaymentCOD = "CASH_ON_DELIVERY"

// LineItem 是订单中的一行，记录下单时刻商定的单价。
type LineItem struct {
	ProductID   string
	ProductName string
	Size        string
	Color       string
	Quantity    int
	UnitPrice   float64
}

// Order 是订单聚合的根实体。
// 订单一经创建就是一次库存扣减的永久凭证：
// 取消订单必须恰好一次地把扣减的数量还回去，CancelledAt 是幂等护栏。
type Order struct {
	ID            string
	CustomerName  string
	Phone         string
	Email         string // 可选
	Address       string
	Wilaya        string
	Items         []LineItem
	Subtotal      float64
	ShippingCost  float64
	Total         float64
	PaymentMethod string
	Status        Status
	CancelledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrderID 生成一个按创建时间可排序的订单号。
// 毫秒时间戳保证排序，4 字节随机后缀保证并发创建下的唯一性。
func NewOrderID(now time.Time) string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand 失败意味着运行环境已不可信
		panic(fmt.Sprintf("failed to read random bytes for order id: %v", err))
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), hex.EncodeToString(suffix))
}

// NewOrder 是订单的工厂函数。入参假定已通过应用层边界校验，
// 这里只守住聚合自身的不变量。
func NewOrder(id, customerName, phone, email, address, wilaya string, items []LineItem, shippingCost float64, now time.Time) (*Order, error) {
	if id == "" || customerName == "" || phone == "" || len(items) == 0 {
		return nil, errors.New("cannot create order with empty required fields")
	}

	subtotal := 0.0
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("line item %s has non-positive quantity %d", item.ProductID, item.Quantity)
		}
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	return &Order{
		ID:            id,
		CustomerName:  customerName,
		Phone:         phone,
		Email:         email,
		Address:       address,
		Wilaya:        wilaya,
		Items:         items,
		Subtotal:      subtotal,
		ShippingCost:  shippingCost,
		Total:         subtotal + shippingCost,
		PaymentMethod: PaymentCOD,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// TransitionTo 执行一次管理端驱动的状态流转。
func (o *Order) TransitionTo(next Status, now time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = now
	return nil
}

// Cancel 取消订单。对已取消的订单返回 ErrOrderAlreadyCancelled，
// 调用方以此保证库存补偿不会执行第二次。
func (o *Order) Cancel(now time.Time) error {
	if o.CancelledAt != nil {
		return ErrOrderAlreadyCancelled
	}
	if o.Status == StatusDelivered {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusCancelled)
	}
	o.Status = StatusCancelled
	t := now
	o.CancelledAt = &t
	o.UpdatedAt = now
	return nil
}

// IsCancelled 报告补偿是否已经发生过。
func (o *Order) IsCancelled() bool {
	return o.CancelledAt != nil
}
