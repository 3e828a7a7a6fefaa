// internal/service/store/domain/state.go
package domain

// Status 定义了订单的生命周期状态
type Status string

const (
	StatusPending   Status = "PENDING"   // 订单已落库，等待确认
	StatusConfirmed Status = "CONFIRMED" // 已电话确认 (货到付款流程)
	StatusShipped   Status = "SHIPPED"   // 已发货
	StatusDelivered Status = "DELIVERED" // 已送达
	StatusCancelled Status = "CANCELLED" // 已取消，库存已归还
)

// CanTransitionTo 判断状态机是否允许给定的流转。
// 取消不走这里，见 Order.Cancel。
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed
	case StatusConfirmed:
		return next == StatusShipped
	case StatusShipped:
		return next == StatusDelivered
	default:
		return false
	}
}
