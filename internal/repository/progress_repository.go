package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ProgressRepository 保存学生答题过程中的自动保存进度。
// 进度是完整的答案快照（题目ID -> 选项ID），整体覆盖写入，最后一次写入生效。
type ProgressRepository struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewProgressRepository(rdb *redis.Client, ttl time.Duration) *ProgressRepository {
	return &ProgressRepository{Redis: rdb, TTL: ttl}
}

func progressKey(userID uint, quizID string) string {
	return fmt.Sprintf("quiz:progress:%d:%s", userID, quizID)
}

func (r *ProgressRepository) Save(ctx context.Context, userID uint, quizID string, answers map[string]string) error {
	payload, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, progressKey(userID, quizID), payload, r.TTL).Err()
}

// Load 没有保存过的进度返回空映射，不视为错误
func (r *ProgressRepository) Load(ctx context.Context, userID uint, quizID string) (map[string]string, error) {
	payload, err := r.Redis.Get(ctx, progressKey(userID, quizID)).Bytes()
	if err == redis.Nil {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	answers := make(map[string]string)
	if err := json.Unmarshal(payload, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// Clear 幂等删除
func (r *ProgressRepository) Clear(ctx context.Context, userID uint, quizID string) error {
	return r.Redis.Del(ctx, progressKey(userID, quizID)).Err()
}
