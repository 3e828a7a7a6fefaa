// internal/service/store/infrastructure/gorm_model.go
package infrastructure

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// ProductModel 对应数据库中的 products 表。
// 注意 in_stock 是派生列，只由 StockLedger 在库存变更事务里更新。
type ProductModel struct {
	ID          string  `gorm:"primaryKey;size:64"`
	Name        string  `gorm:"size:255;not null"`
	Description string  `gorm:"type:text"`
	Price       float64 `gorm:"type:decimal(10,2)"`
	Category    string  `gorm:"size:64;index"`
	Sizes       string  `gorm:"type:text"` // JSON 编码的有序列表
	Colors      string  `gorm:"type:text"` // JSON 编码的有序列表
	TracksStock bool    `gorm:"default:true"`
	InStock     bool    `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName 指定 GORM 应该使用的表名
func (ProductModel) TableName() string {
	return "products"
}

// StockEntryModel 对应 stock_entries 表：每个 (product, size, color) 一行，
// 是全系统唯一的库存权威。(product_id, size, color) 上的唯一索引
// 保证条件 UPDATE 恰好命中一行。
type StockEntryModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	ProductID string `gorm:"size:64;not null;uniqueIndex:idx_stock_variant"`
	Size      string `gorm:"size:16;not null;uniqueIndex:idx_stock_variant"`
	Color     string `gorm:"size:32;not null;uniqueIndex:idx_stock_variant"`
	Quantity  int    `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (StockEntryModel) TableName() string {
	return "stock_entries"
}

// OrderModel 对应 orders 表。
type OrderModel struct {
	ID            string  `gorm:"primaryKey;size:64"`
	CustomerName  string  `gorm:"size:255;not null"`
	Phone         string  `gorm:"size:10;not null"`
	Email         string  `gorm:"size:255"`
	Address       string  `gorm:"type:text"`
	Wilaya        string  `gorm:"size:64"`
	Subtotal      float64 `gorm:"type:decimal(10,2)"`
	ShippingCost  float64 `gorm:"type:decimal(10,2)"`
	Total         float64 `gorm:"type:decimal(10,2)"`
	PaymentMethod string  `gorm:"size:32"`
	Status        string  `gorm:"size:16;index"`
	CancelledAt   sql.NullTime
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time

	Items []OrderItemModel `gorm:"foreignKey:OrderID"`
}

// TableName 指定 GORM 应该使用的表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel 对应 order_items 表，固化下单时刻的单价。
type OrderItemModel struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	OrderID     string  `gorm:"size:64;not null;index"`
	ProductID   string  `gorm:"size:64;not null"`
	ProductName string  `gorm:"size:255"`
	Size        string  `gorm:"size:16"`
	Color       string  `gorm:"size:32"`
	Quantity    int     `gorm:"not null"`
	UnitPrice   float64 `gorm:"type:decimal(10,2)"`
}

// TableName 指定 GORM 应该使用的表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

// Models 返回 AutoMigrate 需要的全部模型。
func Models() []interface{} {
	return []interface{}{
		&ProductModel{},
		&StockEntryModel{},
		&OrderModel{},
		&OrderItemModel{},
	}
}
