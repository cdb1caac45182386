package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"AIHoldem/internal/game/engine"
	"AIHoldem/internal/game/table"
	"AIHoldem/internal/oracle"
	"AIHoldem/internal/utils"
	"AIHoldem/internal/websocket"
)

// GameManager 管理所有人机对局：playerID → engine，一人一桌
type GameManager struct {
	mu      sync.RWMutex
	engines map[string]*engine.Engine

	cfg   engine.Config
	brain oracle.DealerBrain
	judge oracle.Judge
	hub   websocket.HubInterface
	repo  BalanceRepo
}

func NewGameManager(cfg engine.Config, brain oracle.DealerBrain, judge oracle.Judge,
	hub websocket.HubInterface, repo BalanceRepo) *GameManager {
	return &GameManager{
		engines: make(map[string]*engine.Engine),
		cfg:     cfg,
		brain:   brain,
		judge:   judge,
		hub:     hub,
		repo:    repo,
	}
}

// GetOrCreate 取玩家的对局，没有就建一个。
// 新建时尝试从仓库恢复上次的筹码余额（浏览器刷新/重连场景）
func (m *GameManager) GetOrCreate(ctx context.Context, playerID string) *engine.Engine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if eng, ok := m.engines[playerID]; ok {
		return eng
	}

	eng := engine.New(playerID, m.cfg, m.brain, m.judge, m.hub)
	if bal, ok, err := m.repo.Load(ctx, playerID); err == nil && ok {
		eng.RestoreChips(bal.PlayerChips, bal.DealerChips)
		utils.Log.Info("restored balance", "player", playerID,
			"chips", bal.PlayerChips, "dealer", bal.DealerChips)
	}
	m.engines[playerID] = eng
	return eng
}

func (m *GameManager) get(playerID string) (*engine.Engine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	eng, ok := m.engines[playerID]
	if !ok {
		return nil, fmt.Errorf("no active game for player, POST /game/new first")
	}
	return eng, nil
}

// StartRound 开新回合。盲注直接把人打空时回合会立刻进入摊牌，
// 这种情况也要驱动 Advance
func (m *GameManager) StartRound(ctx context.Context, playerID string) (table.Snapshot, error) {
	eng, err := m.get(playerID)
	if err != nil {
		return table.Snapshot{}, err
	}
	snap, err := eng.StartRound()
	if err != nil {
		return snap, err
	}
	m.advanceAsync(eng)
	return snap, nil
}

// HandleAction 玩家动作。动作把状态推到庄家回合/摊牌时异步推进
func (m *GameManager) HandleAction(ctx context.Context, playerID string, a engine.Action) (table.Snapshot, error) {
	eng, err := m.get(playerID)
	if err != nil {
		return table.Snapshot{}, err
	}
	snap, err := eng.HandlePlayerAction(a)
	if err != nil {
		return snap, err
	}
	m.persist(ctx, eng)
	m.advanceAsync(eng)
	return snap, nil
}

// Reset 整局重开，清掉持久化余额
func (m *GameManager) Reset(ctx context.Context, playerID string) (table.Snapshot, error) {
	eng, err := m.get(playerID)
	if err != nil {
		return table.Snapshot{}, err
	}
	snap := eng.Reset()
	if err := m.repo.Delete(ctx, playerID); err != nil {
		utils.Log.Warn("failed to delete persisted balance", "player", playerID, "err", err)
	}
	return snap, nil
}

func (m *GameManager) Snapshot(playerID string) (table.Snapshot, error) {
	eng, err := m.get(playerID)
	if err != nil {
		return table.Snapshot{}, err
	}
	return eng.Snapshot(), nil
}

// advanceAsync 在独立协程里推完庄家回合/摊牌，结束后持久化余额。
// engine 内部保证同桌同时只有一个 Advance 在跑
func (m *GameManager) advanceAsync(eng *engine.Engine) {
	if !eng.NeedsAdvance() {
		return
	}
	go func() {
		if err := eng.Advance(context.Background()); err != nil {
			utils.Log.Debug("advance skipped", "player", eng.PlayerID(), "err", err)
			return
		}
		m.persist(context.Background(), eng)
	}()
}

func (m *GameManager) persist(ctx context.Context, eng *engine.Engine) {
	player, dealer := eng.Chips()
	err := m.repo.Save(ctx, eng.PlayerID(), Balance{
		PlayerChips: player,
		DealerChips: dealer,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		utils.Log.Warn("failed to persist balance", "player", eng.PlayerID(), "err", err)
	}
}

// HandlePlayerMessage WebSocket 动作入口（来自 Hub.OnIncoming）。
// 注意必须在新协程里跑：hub 的事件循环不能阻塞在 engine 锁上
func (m *GameManager) HandlePlayerMessage(msg websocket.IncomingMessage) {
	go func() {
		ctx := context.Background()
		switch msg.Event {
		case "player_action":
			var a engine.Action
			raw, _ := json.Marshal(msg.Data)
			if err := json.Unmarshal(raw, &a); err != nil {
				m.sendError(msg.From, "malformed action payload")
				return
			}
			if _, err := m.HandleAction(ctx, msg.From, a); err != nil {
				m.sendError(msg.From, err.Error())
			}

		case "start_round":
			if _, err := m.StartRound(ctx, msg.From); err != nil {
				m.sendError(msg.From, err.Error())
			}

		case "reset":
			if _, err := m.Reset(ctx, msg.From); err != nil {
				m.sendError(msg.From, err.Error())
			}
		}
	}()
}

func (m *GameManager) sendError(playerID, reason string) {
	m.hub.SendToPlayer(playerID, websocket.OutgoingMessage{
		Event: websocket.EventError,
		Data:  map[string]any{"error": reason},
	})
}
