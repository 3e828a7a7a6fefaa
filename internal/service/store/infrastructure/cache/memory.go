// internal/service/store/infrastructure/cache/memory.go
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

// Memory 是 ProductCache 的进程内实现。
// 时钟通过构造函数注入，TTL 行为可以用假时钟测试。
// 过期条目在 Get 时惰性删除，另可启动 janitor 周期清理；
// janitor 只是内存卫生，写路径的同步 Invalidate 才是新鲜度保证。
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   func() time.Time
}

// NewMemory 创建一个进程内缓存。clock 传 nil 则使用 time.Now。
func NewMemory(clock func() time.Time) *Memory {
	if clock == nil {
		clock = time.Now
	}
	return &Memory{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

// Get 仅在条目存在且未过期时命中；过期条目等同于不存在。
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.clock().Sub(e.storedAt) >= e.ttl {
		m.mu.Lock()
		// 二次检查：期间可能已被 Set 覆盖
		if current, ok := m.entries[key]; ok && current.storedAt.Equal(e.storedAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set 以当前时间戳存储条目。
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, storedAt: m.clock(), ttl: ttl}
}

// Invalidate 删除 ref 本身以及 "ref:" 段下的所有子键。
// 裸前缀匹配会让 "product:p1" 误删 "product:p10"，所以必须按段匹配。
func (m *Memory) Invalidate(_ context.Context, ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if key == ref || strings.HasPrefix(key, ref+":") {
			delete(m.entries, key)
		}
	}
}

// Len 返回当前条目数（含未被惰性清理的过期条目），测试用。
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// StartJanitor 启动一个周期清理 goroutine，ctx 取消时退出。
func (m *Memory) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.purgeExpired()
			}
		}
	}()
}

func (m *Memory) purgeExpired() {
	now := m.clock()
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if now.Sub(e.storedAt) >= e.ttl {
			delete(m.entries, key)
		}
	}
}
