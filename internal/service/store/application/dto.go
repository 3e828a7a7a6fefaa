// internal/service/store/application/dto.go
package application

import (
	"regexp"
	"strconv"

	"obsidianwear/internal/service/store/domain"
)

// 阿尔及利亚手机号：10 位数字且以 0 开头。
var phonePattern = regexp.MustCompile(`^0\d{9}$`)

// OrderItemRequest 是下单请求中的一行。
// DeclaredUnitPrice 是客户端在购物车里看到的单价，仅用于一致性校验；
// 落库价格始终以服务端商品记录为准。
type OrderItemRequest struct {
	ProductID         string  `json:"productId"`
	Size              string  `json:"size"`
	Color             string  `json:"color"`
	Quantity          int     `json:"quantity"`
	DeclaredUnitPrice float64 `json:"unitPrice,omitempty"`
}

// PlaceOrderRequest 是创建订单用例的输入数据。
type PlaceOrderRequest struct {
	CustomerName string             `json:"customerName"`
	Phone        string             `json:"phone"`
	Email        string             `json:"email,omitempty"`
	Address      string             `json:"address"`
	Wilaya       string             `json:"wilaya"`
	Items        []OrderItemRequest `json:"items"`
}

// Validate 执行边界校验。整单要么全部通过要么整体拒绝，
// 不存在部分行生效的情况。
func (r *PlaceOrderRequest) Validate() error {
	if r.CustomerName == "" {
		return domain.NewValidationError("customerName", "required")
	}
	if r.Phone == "" {
		return domain.NewValidationError("phone", "required")
	}
	if !phonePattern.MatchString(r.Phone) {
		return domain.NewValidationError("phone", "must be exactly 10 digits starting with 0")
	}
	if r.Address == "" {
		return domain.NewValidationError("address", "required")
	}
	if len(r.Items) == 0 {
		return domain.NewValidationError("items", "at least one line item is required")
	}
	for i, item := range r.Items {
		if item.ProductID == "" {
			return domain.NewValidationError("items", "missing productId at index "+strconv.Itoa(i))
		}
		if item.Quantity <= 0 {
			return domain.NewValidationError("items", "non-positive quantity for product "+item.ProductID)
		}
	}
	return nil
}

// PlaceOrderResponse 是创建订单用例的输出数据。
type PlaceOrderResponse struct {
	OrderID string        `json:"orderId"`
	Status  domain.Status `json:"status"`
	Total   float64       `json:"total"`
	Message string        `json:"message"`
}
