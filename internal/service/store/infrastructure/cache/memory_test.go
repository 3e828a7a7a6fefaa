package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock 让 TTL 行为可以确定性推进。
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestMemory() (*Memory, *fakeClock) {
	clock := &fakeClock{now: time.UnixMilli(1700000000000)}
	return NewMemory(clock.Now), clock
}

func TestMemory_GetSet(t *testing.T) {
	m, _ := newTestMemory()
	ctx := context.Background()

	_, ok := m.Get(ctx, "product:p1")
	assert.False(t, ok)

	m.Set(ctx, "product:p1", []byte("v1"), time.Minute)
	value, ok := m.Get(ctx, "product:p1")
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), value)

	// 覆盖写
	m.Set(ctx, "product:p1", []byte("v2"), time.Minute)
	value, _ = m.Get(ctx, "product:p1")
	assert.Equal(t, []byte("v2"), value)
}

func TestMemory_TTLExpiry(t *testing.T) {
	m, clock := newTestMemory()
	ctx := context.Background()

	m.Set(ctx, "product:p1", []byte("v1"), time.Minute)

	clock.Advance(59 * time.Second)
	_, ok := m.Get(ctx, "product:p1")
	assert.True(t, ok)

	// TTL 边界：恰好到期即为 miss
	clock.Advance(time.Second)
	_, ok = m.Get(ctx, "product:p1")
	assert.False(t, ok)

	// 过期条目被惰性删除
	assert.Equal(t, 0, m.Len())
}

func TestMemory_InvalidateNamespace(t *testing.T) {
	m, _ := newTestMemory()
	ctx := context.Background()

	m.Set(ctx, "product:p1", []byte("a"), time.Minute)
	m.Set(ctx, "product:p2", []byte("b"), time.Minute)
	m.Set(ctx, "products:all", []byte("c"), time.Minute)

	m.Invalidate(ctx, "product")

	_, ok := m.Get(ctx, "product:p1")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "product:p2")
	assert.False(t, ok)
	// "products" 是另一个命名空间
	_, ok = m.Get(ctx, "products:all")
	assert.True(t, ok)
}

func TestMemory_InvalidateMatchesWholeSegments(t *testing.T) {
	m, _ := newTestMemory()
	ctx := context.Background()

	m.Set(ctx, "product:p1", []byte("a"), time.Minute)
	m.Set(ctx, "product:p10", []byte("b"), time.Minute)
	m.Set(ctx, "product:p1:variants", []byte("c"), time.Minute)

	m.Invalidate(ctx, "product:p1")

	_, ok := m.Get(ctx, "product:p1")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "product:p1:variants")
	assert.False(t, ok)
	// "p10" 只是共享字符前缀，不是 "p1" 的子键
	_, ok = m.Get(ctx, "product:p10")
	assert.True(t, ok)
}

func TestMemory_InvalidateExactKey(t *testing.T) {
	m, _ := newTestMemory()
	ctx := context.Background()

	m.Set(ctx, "products:all", []byte("c"), time.Minute)
	m.Invalidate(ctx, "products:all")

	_, ok := m.Get(ctx, "products:all")
	assert.False(t, ok)
}

func TestMemory_PurgeExpired(t *testing.T) {
	m, clock := newTestMemory()
	ctx := context.Background()

	m.Set(ctx, "product:p1", []byte("a"), time.Minute)
	m.Set(ctx, "product:p2", []byte("b"), time.Hour)

	clock.Advance(2 * time.Minute)
	m.purgeExpired()

	assert.Equal(t, 1, m.Len())
	_, ok := m.Get(ctx, "product:p2")
	assert.True(t, ok)
}

func TestMemory_SetRefreshesTTL(t *testing.T) {
	m, clock := newTestMemory()
	ctx := context.Background()

	m.Set(ctx, "product:p1", []byte("a"), time.Minute)
	clock.Advance(50 * time.Second)
	m.Set(ctx, "product:p1", []byte("b"), time.Minute)
	clock.Advance(50 * time.Second)

	value, ok := m.Get(ctx, "product:p1")
	assert.True(t, ok)
	assert.Equal(t, []byte("b"), value)
}
