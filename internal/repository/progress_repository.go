package repository

import (
	"context"
	"encoding/json"
	"errors"
	"exam_prep_backend/internal/model"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ProgressRepository 保存复习卷生成进度：最新一条存为带过期时间的键，
// 同时发布到频道供 WebSocket 订阅
type ProgressRepository struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewProgressRepository(rdb *redis.Client, ttl time.Duration) *ProgressRepository {
	return &ProgressRepository{Redis: rdb, TTL: ttl}
}

func ProgressKey(userID uint, cycle int) string {
	return fmt.Sprintf("exam:review:progress:%d:%d", userID, cycle)
}

func ProgressChannel(userID uint, cycle int) string {
	return fmt.Sprintf("exam:review:progress:ch:%d:%d", userID, cycle)
}

func (r *ProgressRepository) Save(ctx context.Context, p *model.GenerationProgress) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := r.Redis.Set(ctx, ProgressKey(p.UserID, p.Cycle), payload, r.TTL).Err(); err != nil {
		return err
	}
	return r.Redis.Publish(ctx, ProgressChannel(p.UserID, p.Cycle), payload).Err()
}

// Get 没有进度记录时返回 nil, nil
func (r *ProgressRepository) Get(ctx context.Context, userID uint, cycle int) (*model.GenerationProgress, error) {
	raw, err := r.Redis.Get(ctx, ProgressKey(userID, cycle)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p model.GenerationProgress
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Subscribe 订阅进度频道，ctx 取消后关闭订阅和返回的 channel
func (r *ProgressRepository) Subscribe(ctx context.Context, userID uint, cycle int) (<-chan *model.GenerationProgress, error) {
	sub := r.Redis.Subscribe(ctx, ProgressChannel(userID, cycle))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan *model.GenerationProgress, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var p model.GenerationProgress
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					continue
				}
				select {
				case out <- &p:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
