// internal/service/store/infrastructure/adapter/notification_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"obsidianwear/internal/pkg/mq"
	"obsidianwear/internal/service/store/domain"
)

// NotificationKafkaAdapter 实现了 port.NotificationProducer 接口。
// 事件进入通知 topic，由下游的邮件 worker 渲染并发送确认邮件。
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

// NewNotificationKafkaAdapter 创建一个新的通知生产者适配器。
func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

// SendOrderConfirmation 发送下单确认事件。
func (a *NotificationKafkaAdapter) SendOrderConfirmation(ctx context.Context, order *domain.Order) error {
	return a.produce(ctx, domain.NotificationOrderPlaced, order)
}

// SendOrderCancelled 发送订单取消事件。
func (a *NotificationKafkaAdapter) SendOrderCancelled(ctx context.Context, order *domain.Order) error {
	return a.produce(ctx, domain.NotificationOrderCancelled, order)
}

func (a *NotificationKafkaAdapter) produce(ctx context.Context, kind string, order *domain.Order) error {
	event := domain.NotificationEvent{
		EventID:      uuid.New().String(),
		Kind:         kind,
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		Email:        order.Email,
		Phone:        order.Phone,
		Total:        order.Total,
		Items:        order.Items,
		At:           time.Now(),
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	// 调用通用的 mq.ProduceMessage，它会自动处理追踪上下文注入
	return mq.ProduceMessage(ctx, a.writer, []byte(order.ID), eventBytes)
}

// Close 关闭底层的Kafka writer。
func (a *NotificationKafkaAdapter) Close() error {
	return a.writer.Close()
}
