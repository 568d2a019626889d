package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"convo-chat/internal/domain"
)

// ProfileCache guarda vistas de cuenta para el camino current-user. Toda
// escritura de perfil o avatar debe invalidar la entrada.
type ProfileCache interface {
	Get(userID string) (domain.User, bool)
	Set(userID string, user domain.User)
	Invalidate(userID string)
}

const profileCacheTTL = 5 * time.Minute

type memoryProfileCache struct {
	mu    sync.Mutex
	items map[string]cachedProfile
}

type cachedProfile struct {
	user      domain.User
	expiresAt time.Time
}

func NewMemoryProfileCache() ProfileCache {
	return &memoryProfileCache{
		items: make(map[string]cachedProfile),
	}
}

func (c *memoryProfileCache) Get(userID string) (domain.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.items[userID]
	if !ok {
		return domain.User{}, false
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(c.items, userID)
		return domain.User{}, false
	}
	return entry.user, true
}

func (c *memoryProfileCache) Set(userID string, user domain.User) {
	if strings.TrimSpace(userID) == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[userID] = cachedProfile{
		user:      user,
		expiresAt: time.Now().UTC().Add(profileCacheTTL),
	}
}

func (c *memoryProfileCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, userID)
}

type redisProfileCache struct {
	client *redis.Client
	prefix string
}

func NewRedisProfileCache(client *redis.Client) ProfileCache {
	if client == nil {
		return nil
	}
	return &redisProfileCache{
		client: client,
		prefix: "profile:view:",
	}
}

func (c *redisProfileCache) Get(userID string) (domain.User, bool) {
	if strings.TrimSpace(userID) == "" {
		return domain.User{}, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	raw, err := c.client.Get(ctx, c.prefix+userID).Bytes()
	if err != nil {
		return domain.User{}, false
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return domain.User{}, false
	}
	return user, true
}

func (c *redisProfileCache) Set(userID string, user domain.User) {
	if strings.TrimSpace(userID) == "" {
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = c.client.Set(ctx, c.prefix+userID, raw, profileCacheTTL).Err()
}

func (c *redisProfileCache) Invalidate(userID string) {
	if strings.TrimSpace(userID) == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = c.client.Del(ctx, c.prefix+userID).Err()
}
