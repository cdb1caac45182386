package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// key 约定：holdem:balance:{playerID} -> Balance JSON，30 天过期
const balanceTTL = 30 * 24 * time.Hour

type redisRepo struct {
	rdb *redis.Client
}

func NewRedisRepo(rdb *redis.Client) BalanceRepo {
	return &redisRepo{rdb: rdb}
}

func balanceKey(playerID string) string {
	return fmt.Sprintf("holdem:balance:%s", playerID)
}

func (r *redisRepo) Save(ctx context.Context, playerID string, b Balance) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, balanceKey(playerID), data, balanceTTL).Err()
}

func (r *redisRepo) Load(ctx context.Context, playerID string) (Balance, bool, error) {
	val, err := r.rdb.Get(ctx, balanceKey(playerID)).Bytes()
	if err == redis.Nil {
		return Balance{}, false, nil
	}
	if err != nil {
		return Balance{}, false, err
	}
	var b Balance
	if err := json.Unmarshal(val, &b); err != nil {
		// 脏数据当不存在处理，顺手清掉
		_ = r.rdb.Del(ctx, balanceKey(playerID)).Err()
		return Balance{}, false, nil
	}
	return b, true, nil
}

func (r *redisRepo) Delete(ctx context.Context, playerID string) error {
	return r.rdb.Del(ctx, balanceKey(playerID)).Err()
}
