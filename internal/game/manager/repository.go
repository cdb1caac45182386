package manager

import (
	"context"
	"time"
)

// Balance 回合间持久化的筹码余额（对局历史不落盘，只存余额）
type Balance struct {
	PlayerChips int       `json:"playerChips"`
	DealerChips int       `json:"dealerChips"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BalanceRepo 余额仓库的抽象：内存版供测试与无 Redis 部署，Redis 版供生产
type BalanceRepo interface {
	Save(ctx context.Context, playerID string, b Balance) error
	Load(ctx context.Context, playerID string) (Balance, bool, error)
	Delete(ctx context.Context, playerID string) error
}
