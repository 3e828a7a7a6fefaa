// internal/service/store/infrastructure/mapper.go
package infrastructure

import (
	"database/sql"
	"encoding/json"
	"time"

	"obsidianwear/internal/service/store/domain"
)

// 有序列表在 MySQL 里存成 JSON 文本，这里做两个方向的转换。

func encodeList(list []string) string {
	data, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}

// ToDomainProduct 将数据库模型和已组装的库存矩阵转换为领域模型。
func ToDomainProduct(model *ProductModel, stock domain.StockMatrix) *domain.Product {
	var deletedAt *time.Time
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		deletedAt = &t
	}
	return &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Price:       model.Price,
		Category:    model.Category,
		Sizes:       decodeList(model.Sizes),
		Colors:      decodeList(model.Colors),
		TracksStock: model.TracksStock,
		InStock:     model.InStock,
		Stock:       stock,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		DeletedAt:   deletedAt,
	}
}

// ToProductModel 将领域模型转换回数据库模型，仅用于新建。
// InStock 不在这里回写——它只属于库存变更事务，
// 新商品的库存条目从 0 开始，in_stock 为 false 正确。
func ToProductModel(product *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		Sizes:       encodeList(product.Sizes),
		Colors:      encodeList(product.Colors),
		TracksStock: product.TracksStock,
	}
}

// ToDomainOrder 将订单数据库模型转换为领域模型。
func ToDomainOrder(model *OrderModel) *domain.Order {
	items := make([]domain.LineItem, 0, len(model.Items))
	for _, item := range model.Items {
		items = append(items, domain.LineItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			Color:       item.Color,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	var cancelledAt *time.Time
	if model.CancelledAt.Valid {
		t := model.CancelledAt.Time
		cancelledAt = &t
	}
	return &domain.Order{
		ID:            model.ID,
		CustomerName:  model.CustomerName,
		Phone:         model.Phone,
		Email:         model.Email,
		Address:       model.Address,
		Wilaya:        model.Wilaya,
		Items:         items,
		Subtotal:      model.Subtotal,
		ShippingCost:  model.ShippingCost,
		Total:         model.Total,
		PaymentMethod: model.PaymentMethod,
		Status:        domain.Status(model.Status),
		CancelledAt:   cancelledAt,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// ToOrderModel 将订单领域模型转换为数据库模型。
func ToOrderModel(order *domain.Order) *OrderModel {
	items := make([]OrderItemModel, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemModel{
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			Color:       item.Color,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	cancelledAt := sql.NullTime{}
	if order.CancelledAt != nil {
		cancelledAt = sql.NullTime{Time: *order.CancelledAt, Valid: true}
	}
	return &OrderModel{
		ID:            order.ID,
		CustomerName:  order.CustomerName,
		Phone:         order.Phone,
		Email:         order.Email,
		Address:       order.Address,
		Wilaya:        order.Wilaya,
		Subtotal:      order.Subtotal,
		ShippingCost:  order.ShippingCost,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		Status:        string(order.Status),
		CancelledAt:   cancelledAt,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
		Items:         items,
	}
}
