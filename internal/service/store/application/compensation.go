// internal/service/store/application/compensation.go
package application

import (
	"context"
	"sync"

	"obsidianwear/internal/pkg/logger"
)

// compensationStack 收集已经生效的库存变更的逆操作。
// 编排失败时按 LIFO 顺序执行，保证调用方观察不到
// "库存扣了但订单不存在"的悬挂状态。
type compensationStack struct {
	orderID string

	mu    sync.Mutex
	comps []func(ctx context.Context)
}

func newCompensationStack(orderID string) *compensationStack {
	return &compensationStack{orderID: orderID}
}

// push 将一个补偿函数推入栈中，后注册的补偿先执行。
func (c *compensationStack) push(comp func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.comps = append([]func(context.Context){comp}, c.comps...)
}

// trigger 执行所有已注册的补偿函数。
func (c *compensationStack) trigger(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	logger.Ctx(ctx).Info().
		Str("order_id", c.orderID).
		Int("count", len(c.comps)).
		Msg("Executing compensation functions")
	for _, comp := range c.comps {
		comp(ctx)
	}
	c.comps = nil
}
