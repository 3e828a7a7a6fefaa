// internal/service/store/infrastructure/adapter/mailer_http_adapter.go
package adapter

import (
	"context"
	"fmt"

	"obsidianwear/internal/pkg/httpclient"
	"obsidianwear/internal/service/store/domain"
)

// MailerHTTPAdapter 实现了 port.NotificationProducer 接口，
// 直接调用外部邮件 API。没有 Kafka 的小规模部署用这条路。
type MailerHTTPAdapter struct {
	client   *httpclient.Client
	endpoint string
}

// NewMailerHTTPAdapter 创建一个新的邮件适配器实例。
func NewMailerHTTPAdapter(client *httpclient.Client, endpoint string) *MailerHTTPAdapter {
	return &MailerHTTPAdapter{client: client, endpoint: endpoint}
}

type mailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendOrderConfirmation 调用邮件 API 发送确认邮件。
// 邮箱是可选字段，没有邮箱的订单直接视为发送成功。
func (a *MailerHTTPAdapter) SendOrderConfirmation(ctx context.Context, order *domain.Order) error {
	if order.Email == "" {
		return nil
	}
	return a.client.PostJSON(ctx, a.endpoint, mailPayload{
		To:      order.Email,
		Subject: fmt.Sprintf("Order %s confirmed", order.ID),
		Body: fmt.Sprintf("Hi %s, your order %s (%.2f DZD, cash on delivery) has been received.",
			order.CustomerName, order.ID, order.Total),
	})
}

// SendOrderCancelled 调用邮件 API 发送取消通知。
func (a *MailerHTTPAdapter) SendOrderCancelled(ctx context.Context, order *domain.Order) error {
	if order.Email == "" {
		return nil
	}
	return a.client.PostJSON(ctx, a.endpoint, mailPayload{
		To:      order.Email,
		Subject: fmt.Sprintf("Order %s cancelled", order.ID),
		Body: fmt.Sprintf("Hi %s, your order %s has been cancelled.",
			order.CustomerName, order.ID),
	})
}

// Close 无资源可释放。
func (a *MailerHTTPAdapter) Close() error { return nil }

// NoopNotifier 在没有任何通知通道配置时使用，只满足端口契约。
type NoopNotifier struct{}

func (NoopNotifier) SendOrderConfirmation(context.Context, *domain.Order) error { return nil }
func (NoopNotifier) SendOrderCancelled(context.Context, *domain.Order) error    { return nil }
func (NoopNotifier) Close() error                                               { return nil }
