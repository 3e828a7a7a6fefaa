package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"obsidianwear/internal/service/store/domain"
)

func editedHoodie() *domain.Product {
	return &domain.Product{
		ID:          "hoodie",
		Name:        "Obsidian Hoodie v2",
		Description: "heavyweight fleece",
		Price:       3900,
		Category:    "hoodies",
		Sizes:       []string{"S", "M", "L"},
		Colors:      []string{"Black"},
		TracksStock: true,
		InStock:     true, // 客户端送什么都不能影响派生列
		CreatedAt:   time.UnixMilli(1700000000000),
	}
}

func TestProductUpdateColumns_OnlyEditableColumns(t *testing.T) {
	cols := productUpdateColumns(editedHoodie())

	// 派生列和不可变列绝不出现在更新清单里
	assert.NotContains(t, cols, "in_stock")
	assert.NotContains(t, cols, "created_at")
	assert.NotContains(t, cols, "id")

	assert.Equal(t, "Obsidian Hoodie v2", cols["name"])
	assert.Equal(t, "heavyweight fleece", cols["description"])
	assert.Equal(t, 3900.0, cols["price"])
	assert.Equal(t, "hoodies", cols["category"])
	assert.Equal(t, `["S","M","L"]`, cols["sizes"])
	assert.Equal(t, `["Black"]`, cols["colors"])
	assert.Equal(t, true, cols["tracks_stock"])
}

func TestToProductModel_NeverCarriesInStock(t *testing.T) {
	model := ToProductModel(editedHoodie())

	// 新建商品的库存条目从 0 开始，in_stock 必须是 false
	assert.False(t, model.InStock)
	assert.Equal(t, "hoodie", model.ID)
	assert.True(t, model.TracksStock)
}
