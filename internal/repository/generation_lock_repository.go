package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// GenerationLockRepository 同一用户同一周期同时只允许一次复习卷生成
type GenerationLockRepository struct {
	Redis *redis.Client
}

func NewGenerationLockRepository(rdb *redis.Client) *GenerationLockRepository {
	return &GenerationLockRepository{Redis: rdb}
}

func LockKey(userID uint, cycle int) string {
	return fmt.Sprintf("exam:review:lock:%d:%d", userID, cycle)
}

// Acquire 返回持有者令牌；锁已被占用时返回 ok=false
func (r *GenerationLockRepository) Acquire(ctx context.Context, userID uint, cycle int, ttl time.Duration) (string, bool, error) {
	token := uuid.New().String()
	ok, err := r.Redis.SetNX(ctx, LockKey(userID, cycle), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (r *GenerationLockRepository) Release(ctx context.Context, userID uint, cycle int, token string) error {
	return releaseScript.Run(ctx, r.Redis, []string{LockKey(userID, cycle)}, token).Err()
}
