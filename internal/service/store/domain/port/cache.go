// internal/service/store/domain/port/cache.go
package port

import (
	"context"
	"time"
)

// ProductCache 是读侧缓存的出站端口。
// 缓存永远不是权威：写路径绝不从这里读库存，只负责在变更后调用 Invalidate。
type ProductCache interface {
	// Get 仅当条目存在且未过期 (now - storedAt < ttl) 时命中，否则视为 miss。
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set 以当前时间戳存储条目。
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Invalidate 删除 ref 本身以及所有以 "ref:" 开头的子键。
	// 按段匹配："product:p1" 不会波及 "product:p10"，
	// 而 "product" 清掉整个命名空间。
	// 每条写路径必须在返回成功之前调用它，TTL 只是多实例部署下的兜底。
	Invalidate(ctx context.Context, ref string)
}
