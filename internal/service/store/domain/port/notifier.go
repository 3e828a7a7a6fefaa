// internal/service/store/domain/port/notifier.go
package port

import (
	"context"

	"obsidianwear/internal/service/store/domain"
)

// NotificationProducer 是通知的出站端口。
// 调用方把它当成尽力而为的副作用：失败只记日志，绝不回滚订单。
type NotificationProducer interface {
	// SendOrderConfirmation 发送下单确认通知。
	SendOrderConfirmation(ctx context.Context, order *domain.Order) error

	// SendOrderCancelled 发送订单取消通知。
	SendOrderCancelled(ctx context.Context, order *domain.Order) error

	// Close 释放底层资源。
	Close() error
}
