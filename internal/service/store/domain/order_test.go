package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []LineItem {
	return []LineItem{
		{ProductID: "p1", ProductName: "Hoodie", Size: "M", Color: "Black", Quantity: 2, UnitPrice: 3500},
		{ProductID: "p2", ProductName: "Tee", Size: "L", Color: "White", Quantity: 1, UnitPrice: 1800},
	}
}

func TestNewOrderID_SortableAndUnique(t *testing.T) {
	earlier := NewOrderID(time.UnixMilli(1700000000000))
	later := NewOrderID(time.UnixMilli(1700000001000))

	assert.True(t, strings.HasPrefix(earlier, "ORD-1700000000000-"))
	// 毫秒时间戳在前，字符串排序即创建时间排序
	assert.Less(t, earlier, later)

	seen := make(map[string]bool)
	now := time.Now()
	for i := 0; i < 1000; i++ {
		id := NewOrderID(now)
		assert.False(t, seen[id], "duplicate order id generated: %s", id)
		seen[id] = true
	}
}

func TestNewOrder_ComputesTotals(t *testing.T) {
	now := time.Now()
	order, err := NewOrder("ORD-1", "Amine", "0551234567", "", "Rue X", "Alger", testItems(), 400, now)
	require.NoError(t, err)

	assert.Equal(t, 2*3500.0+1800.0, order.Subtotal)
	assert.Equal(t, 400.0, order.ShippingCost)
	assert.Equal(t, order.Subtotal+400, order.Total)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, PaymentCOD, order.PaymentMethod)
	assert.Nil(t, order.CancelledAt)
}

func TestNewOrder_RejectsEmptyAndNonPositive(t *testing.T) {
	now := time.Now()

	_, err := NewOrder("", "Amine", "0551234567", "", "Rue X", "Alger", testItems(), 400, now)
	assert.Error(t, err)

	_, err = NewOrder("ORD-1", "Amine", "0551234567", "", "Rue X", "Alger", nil, 400, now)
	assert.Error(t, err)

	bad := testItems()
	bad[0].Quantity = 0
	_, err = NewOrder("ORD-1", "Amine", "0551234567", "", "Rue X", "Alger", bad, 400, now)
	assert.Error(t, err)
}

func TestOrder_TransitionTo(t *testing.T) {
	now := time.Now()
	order, err := NewOrder("ORD-1", "Amine", "0551234567", "", "Rue X", "Alger", testItems(), 400, now)
	require.NoError(t, err)

	require.NoError(t, order.TransitionTo(StatusConfirmed, now))
	require.NoError(t, order.TransitionTo(StatusShipped, now))
	require.NoError(t, order.TransitionTo(StatusDelivered, now))

	// 已送达不允许再流转
	err = order.TransitionTo(StatusConfirmed, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrder_TransitionTo_RejectsSkips(t *testing.T) {
	now := time.Now()
	order, err := NewOrder("ORD-1", "Amine", "0551234567", "", "Rue X", "Alger", testItems(), 400, now)
	require.NoError(t, err)

	err = order.TransitionTo(StatusShipped, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrder_CancelIsIdempotentGuarded(t *testing.T) {
	now := time.Now()
	order, err := NewOrder("ORD-1", "Amine", "0551234567", "", "Rue X", "Alger", testItems(), 400, now)
	require.NoError(t, err)

	require.NoError(t, order.Cancel(now))
	assert.Equal(t, StatusCancelled, order.Status)
	require.NotNil(t, order.CancelledAt)
	assert.True(t, order.IsCancelled())

	// 第二次取消必须显式失败，调用方以此避免二次归还库存
	err = order.Cancel(now)
	assert.ErrorIs(t, err, ErrOrderAlreadyCancelled)
}

func TestOrder_CancelRejectedAfterDelivery(t *testing.T) {
	now := time.Now()
	order, err := NewOrder("ORD-1", "Amine", "0551234567", "", "Rue X", "Alger", testItems(), 400, now)
	require.NoError(t, err)

	require.NoError(t, order.TransitionTo(StatusConfirmed, now))
	require.NoError(t, order.TransitionTo(StatusShipped, now))
	require.NoError(t, order.TransitionTo(StatusDelivered, now))

	err = order.Cancel(now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestShippingCost(t *testing.T) {
	assert.Equal(t, 400.0, ShippingCost("Alger"))
	assert.Equal(t, float64(DefaultShippingRate), ShippingCost("Unknown Wilaya"))
}
