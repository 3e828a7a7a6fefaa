// internal/service/store/infrastructure/cache/redis.go
package cache

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"obsidianwear/internal/pkg/logger"
	pkgredis "obsidianwear/internal/pkg/redis"
)

// 所有键加统一前缀，和同一个 Redis 里的其他业务隔离。
const redisKeyPrefix = "storecache:"

const invalidateScriptName = "cache_invalidate"

// invalidateScript 在服务端删除 KEYS[1] 本身，再 SCAN + DEL 它的 ":" 子键，
// 一次往返删完，避免客户端先拉键列表再逐批删除的竞态窗口。
// 按段匹配："...product:p1" 不会波及 "...product:p10"。
const invalidateScript = `
local deleted = redis.call("DEL", KEYS[1])
local cursor = "0"
repeat
    local result = redis.call("SCAN", cursor, "MATCH", KEYS[1] .. ":*", "COUNT", 100)
    cursor = result[1]
    for _, key in ipairs(result[2]) do
        redis.call("DEL", key)
        deleted = deleted + 1
    end
until cursor == "0"
return deleted
`

// Redis 是 ProductCache 的共享后端，用于多实例部署：
// 任意一个实例的写路径 Invalidate 对所有实例立即生效，
// TTL 由 Redis 自身的过期机制承担。
type Redis struct {
	client *pkgredis.Client
}

// NewRedis 创建一个 Redis 缓存后端并注册失效脚本。
func NewRedis(client *pkgredis.Client) (*Redis, error) {
	if err := client.LoadScriptFromContent(invalidateScriptName, invalidateScript); err != nil {
		return nil, err
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.GetClient().Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			// 缓存故障按 miss 处理，读路径回源即可
			logger.Ctx(ctx).Warn().Str("key", key).Err(err).Msg("redis cache get failed")
		}
		return nil, false
	}
	return data, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.GetClient().Set(ctx, redisKeyPrefix+key, value, ttl).Err(); err != nil {
		logger.Ctx(ctx).Warn().Str("key", key).Err(err).Msg("redis cache set failed")
	}
}

// Invalidate 删除 ref 本身以及 "ref:" 段下的所有子键。
// 失效失败只记日志：条目还有 TTL 兜底，读路径最多短暂读到旧值。
func (r *Redis) Invalidate(ctx context.Context, ref string) {
	deleted, err := r.client.RunScript(ctx, invalidateScriptName,
		[]string{redisKeyPrefix + ref})
	if err != nil {
		logger.Ctx(ctx).Error().Str("ref", ref).Err(err).Msg("redis cache invalidate failed")
		return
	}
	if n, ok := deleted.(int64); ok && n > 0 {
		logger.Ctx(ctx).Debug().Str("ref", ref).Int64("deleted", n).Msg("cache entries invalidated")
	}
}
