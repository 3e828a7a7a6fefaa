package infrastructure

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obsidianwear/internal/service/store/domain"
)

func seededLedger(matrix domain.StockMatrix) *MemoryLedger {
	ledger := NewMemoryLedger()
	ledger.Seed("hoodie", "Obsidian Hoodie", matrix)
	return ledger
}

func TestMemoryLedger_DecrementAndIncrement(t *testing.T) {
	ledger := seededLedger(domain.StockMatrix{"M": {"Black": 5}})
	ctx := context.Background()

	newQty, err := ledger.Decrement(ctx, "hoodie", "M", "Black", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, newQty)

	newQty, err = ledger.Increment(ctx, "hoodie", "M", "Black", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, newQty)

	qty, err := ledger.GetAvailable(ctx, "hoodie", "M", "Black")
	require.NoError(t, err)
	assert.Equal(t, 4, qty)
}

func TestMemoryLedger_DecrementInsufficient(t *testing.T) {
	ledger := seededLedger(domain.StockMatrix{"M": {"Black": 1}})

	_, err := ledger.Decrement(context.Background(), "hoodie", "M", "Black", 2)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Requested)
	assert.Equal(t, 1, insufficient.Available)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// 失败的扣减不改变台账
	qty, _ := ledger.GetAvailable(context.Background(), "hoodie", "M", "Black")
	assert.Equal(t, 1, qty)
}

func TestMemoryLedger_UnknownEntry(t *testing.T) {
	ledger := seededLedger(domain.StockMatrix{"M": {"Black": 1}})
	ctx := context.Background()

	_, err := ledger.Decrement(ctx, "hoodie", "XL", "Black", 1)
	assert.ErrorIs(t, err, domain.ErrStockEntryNotFound)

	_, err = ledger.Increment(ctx, "ghost", "M", "Black", 1)
	assert.ErrorIs(t, err, domain.ErrStockEntryNotFound)

	_, err = ledger.Matrix(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestMemoryLedger_MatrixReturnsCopy(t *testing.T) {
	ledger := seededLedger(domain.StockMatrix{"M": {"Black": 5}})

	matrix, err := ledger.Matrix(context.Background(), "hoodie")
	require.NoError(t, err)

	matrix["M"]["Black"] = 0
	qty, _ := ledger.GetAvailable(context.Background(), "hoodie", "M", "Black")
	assert.Equal(t, 5, qty, "mutating the returned matrix must not affect the ledger")
}

func TestMemoryLedger_InStockFlag(t *testing.T) {
	ledger := seededLedger(domain.StockMatrix{"M": {"Black": 1}})
	ctx := context.Background()

	var changes []bool
	ledger.SetOnChange(func(productID string, inStock bool) {
		changes = append(changes, inStock)
	})
	assert.True(t, ledger.InStock("hoodie"))

	_, err := ledger.Decrement(ctx, "hoodie", "M", "Black", 1)
	require.NoError(t, err)
	assert.False(t, ledger.InStock("hoodie"))

	_, err = ledger.Increment(ctx, "hoodie", "M", "Black", 3)
	require.NoError(t, err)
	assert.True(t, ledger.InStock("hoodie"))

	// 只有标志翻转时才触发回调
	assert.Equal(t, []bool{false, true}, changes)
}

func TestMemoryLedger_NeverOversellsUnderContention(t *testing.T) {
	const stock = 50
	const workers = 200

	ledger := seededLedger(domain.StockMatrix{"M": {"Black": stock}})
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Decrement(ctx, "hoodie", "M", "Black", 1)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			var insufficient *domain.InsufficientStockError
			if !errors.As(err, &insufficient) {
				t.Errorf("unexpected decrement error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, succeeded)
	qty, err := ledger.GetAvailable(ctx, "hoodie", "M", "Black")
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
	assert.False(t, ledger.InStock("hoodie"))
}
