// internal/service/store/domain/event.go
package domain

import "time"

// NotificationEvent 是发往通知管道的载体，
// 由消费端 (邮件 worker) 渲染成确认邮件。发送是尽力而为的。
type NotificationEvent struct {
	EventID      string     `json:"eventId"`
	Kind         string     `json:"kind"` // ORDER_PLACED | ORDER_CANCELLED
	OrderID      string     `json:"orderId"`
	CustomerName string     `json:"customerName"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone"`
	Total        float64    `json:"total"`
	Items        []LineItem `json:"items"`
	At           time.Time  `json:"at"`
}

const (
	NotificationOrderPlaced    = "ORDER_PLACED"
	NotificationOrderCancelled = "ORDER_CANCELLED"
)
