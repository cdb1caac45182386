package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"AIHoldem/internal/game/deck"
	"AIHoldem/internal/game/table"
	"AIHoldem/internal/oracle"
	"AIHoldem/internal/utils"
	"AIHoldem/internal/websocket"
)

// ---------------------
//       ENGINE
// ---------------------

type Config struct {
	InitialChips  int
	SmallBlind    int
	BigBlind      int
	OracleTimeout time.Duration
}

// Engine 驱动一个人机对局：回合状态机 + 下注引擎 + 结算。
// 所有状态变更都持有 mu，oracle 网络调用在锁外进行，
// 回来后用 RoundID 验证，reset 之后的过期响应直接丢弃
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	tbl       *table.Table
	deck      *deck.Deck
	brain     oracle.DealerBrain
	judge     oracle.Judge
	hub       websocket.HubInterface
	advancing bool

	// SeedFn 测试里替换成固定种子
	SeedFn func() int64
}

func New(playerID string, cfg Config, brain oracle.DealerBrain, judge oracle.Judge, hub websocket.HubInterface) *Engine {
	return &Engine{
		cfg:   cfg,
		brain: brain,
		judge: judge,
		hub:   hub,
		tbl: &table.Table{
			ID:          uuid.NewString(),
			PlayerID:    playerID,
			State:       table.StateReady,
			PlayerChips: cfg.InitialChips,
			DealerChips: cfg.InitialChips,
			CreatedAt:   time.Now(),
		},
		SeedFn: func() int64 { return time.Now().UnixNano() },
	}
}

// RestoreChips 用持久化的余额覆盖初始筹码（仅在 READY 状态下）
func (e *Engine) RestoreChips(player, dealer int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tbl.State != table.StateReady {
		return
	}
	e.tbl.PlayerChips = player
	e.tbl.DealerChips = dealer
}

func (e *Engine) PlayerID() string {
	return e.tbl.PlayerID
}

// Chips 当前双方余额（回合间持久化用）
func (e *Engine) Chips() (player, dealer int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tbl.PlayerChips, e.tbl.DealerChips
}

// ---------------------
//    ROUND LIFECYCLE
// ---------------------

// StartRound 开新回合：洗牌、发底牌、下盲注。
// 前置条件不满足（有一方已打空）时不做任何变更，直接落终局状态
func (e *Engine) StartRound() (table.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.tbl.State {
	case table.StateReady, table.StateRoundOver:
	default:
		return e.snapshot(), fmt.Errorf("cannot start a round in state %s", e.tbl.State)
	}

	// fail closed：筹码打空直接进终局，不洗牌不下盲注
	if e.tbl.PlayerChips <= 0 {
		e.tbl.State = table.StateGameOver
		return e.snapshot(), nil
	}
	if e.tbl.DealerChips <= 0 {
		e.tbl.State = table.StateVictory
		return e.snapshot(), nil
	}

	e.tbl.RoundID = uuid.NewString()
	e.deck = deck.New(e.SeedFn())
	e.tbl.PlayerHand = e.deck.DealHole()
	e.tbl.DealerHand = e.deck.DealHole()
	e.tbl.Community = nil
	e.tbl.DealerRevealed = false
	e.tbl.Result = nil
	e.tbl.Street = table.PreFlop
	e.tbl.Pot = 0
	e.tbl.PlayerBet = 0
	e.tbl.DealerBet = 0

	// 盲注：筹码不够的一方只下剩余的全部（被迫 all-in）
	e.postBlind(table.SidePlayer, e.cfg.SmallBlind)
	e.postBlind(table.SideDealer, e.cfg.BigBlind)

	e.tbl.State = table.StatePlayerTurn

	// 盲注就把某一方打空：跳过逐街下注，直接发完进摊牌
	if e.tbl.PlayerChips <= 0 || e.tbl.DealerChips <= 0 {
		e.runItOut()
	}

	e.pushEvent(websocket.EventRoundStarted, e.snapshot())
	return e.snapshot(), nil
}

func (e *Engine) postBlind(s table.Side, blind int) {
	acc := e.side(s)
	amount := blind
	if amount > *acc.chips {
		amount = *acc.chips
	}
	e.commit(acc, amount)
}

// Reset 整局重开。进行中的 oracle 调用因 RoundID 失配会被丢弃
func (e *Engine) Reset() table.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tbl = &table.Table{
		ID:          e.tbl.ID,
		PlayerID:    e.tbl.PlayerID,
		State:       table.StateReady,
		PlayerChips: e.cfg.InitialChips,
		DealerChips: e.cfg.InitialChips,
		CreatedAt:   e.tbl.CreatedAt,
	}
	e.deck = nil
	return e.snapshot()
}

// ---------------------
//     PLAYER ACTION
// ---------------------

// HandlePlayerAction 人类玩家动作入口。非法动作返回错误且不改状态。
// 返回的快照 State 为 DEALER_TURN / SHOWDOWN 时，调用方需要再驱动 Advance
func (e *Engine) HandlePlayerAction(a Action) (table.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tbl.State != table.StatePlayerTurn {
		return e.snapshot(), fmt.Errorf("not your turn (state %s)", e.tbl.State)
	}
	if err := e.apply(table.SidePlayer, a); err != nil {
		return e.snapshot(), err
	}
	utils.Log.Debug("player action", "game", e.tbl.ID, "action", a.Kind, "amount", a.Amount,
		"pot", e.tbl.Pot, "state", e.tbl.State)
	e.pushEvent(websocket.EventState, e.snapshot())
	return e.snapshot(), nil
}

// NeedsAdvance 当前是否轮到引擎侧继续推进（庄家行动或摊牌）
func (e *Engine) NeedsAdvance() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tbl.State == table.StateDealerTurn || e.tbl.State == table.StateShowdown
}

// Advance 推进一切等待引擎的阶段：庄家回合与摊牌。
// 每次 oracle 调用都在锁外，带着发起时的 RoundID；
// 回来发现回合已换（reset / 新回合）就丢弃结果。
// 同一时刻最多一个 Advance 在跑
func (e *Engine) Advance(ctx context.Context) error {
	e.mu.Lock()
	if e.advancing {
		e.mu.Unlock()
		return fmt.Errorf("advance already in flight")
	}
	e.advancing = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.advancing = false
		e.mu.Unlock()
	}()

	for {
		e.mu.Lock()
		state := e.tbl.State
		e.mu.Unlock()

		switch state {
		case table.StateDealerTurn:
			if err := e.dealerTurn(ctx); err != nil {
				return err
			}
		case table.StateShowdown:
			if err := e.settleShowdown(ctx); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// ---------------------
//     DEALER TURN
// ---------------------

func (e *Engine) dealerTurn(ctx context.Context) error {
	e.mu.Lock()
	if e.tbl.State != table.StateDealerTurn {
		e.mu.Unlock()
		return nil
	}
	roundID := e.tbl.RoundID
	req := oracle.DecisionRequest{
		DealerHand:    append([]table.Card(nil), e.tbl.DealerHand...),
		Community:     append([]table.Card(nil), e.tbl.Community...),
		Pot:           e.tbl.Pot,
		AmountToCall:  e.tbl.PlayerBet - e.tbl.DealerBet,
		DealerChips:   e.tbl.DealerChips,
		OpponentChips: e.tbl.PlayerChips,
	}
	e.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, e.oracleTimeout())
	raw, err := e.brain.Decide(callCtx, req)
	cancel()
	if err != nil {
		utils.Log.Warn("dealer brain unavailable, using fallback", "err", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// 过期响应：回合已经换了
	if e.tbl.RoundID != roundID || e.tbl.State != table.StateDealerTurn {
		return nil
	}

	act := e.sanitizeDecision(raw, err != nil)
	if applyErr := e.apply(table.SideDealer, act); applyErr != nil {
		// 清洗后的动作仍然非法说明清洗有漏洞；兜底弃牌保证回合一定终止
		utils.Log.Error("sanitized dealer action rejected", "action", act.Kind, "err", applyErr)
		_ = e.apply(table.SideDealer, Action{Kind: Fold})
	}

	utils.Log.Info("dealer acted", "game", e.tbl.ID, "action", act.Kind, "amount", act.Amount,
		"pot", e.tbl.Pot, "state", e.tbl.State)
	e.pushEvent(websocket.EventDealerAction, map[string]any{
		"action":   act.Kind,
		"amount":   act.Amount,
		"snapshot": e.snapshot(),
	})
	return nil
}

// ---------------------
//   STREET ADVANCEMENT
// ---------------------

// concludeStreet 本下注圈结束：翻下一批公共牌，下注清零，行动权回到玩家
func (e *Engine) concludeStreet() {
	if e.tbl.Street == table.River {
		e.enterShowdown()
		return
	}

	target := e.tbl.Street.RevealTarget()
	cards := e.deck.DealCommunity(target - len(e.tbl.Community))
	e.tbl.Community = append(e.tbl.Community, cards...)

	switch e.tbl.Street {
	case table.PreFlop:
		e.tbl.Street = table.Flop
	case table.Flop:
		e.tbl.Street = table.Turn
	case table.Turn:
		e.tbl.Street = table.River
	}

	e.tbl.PlayerBet = 0
	e.tbl.DealerBet = 0
	e.tbl.State = table.StatePlayerTurn

	e.pushEvent(websocket.EventCommunity, map[string]any{
		"community": e.tbl.Community,
		"new":       cards,
		"street":    e.tbl.Street,
	})
}

// runItOut 有一方 all-in：一次性发完剩余公共牌，直接进摊牌
func (e *Engine) runItOut() {
	if n := 5 - len(e.tbl.Community); n > 0 {
		cards := e.deck.DealCommunity(n)
		e.tbl.Community = append(e.tbl.Community, cards...)
		e.pushEvent(websocket.EventCommunity, map[string]any{
			"community": e.tbl.Community,
			"new":       cards,
			"street":    table.River,
		})
	}
	e.tbl.Street = table.River
	e.enterShowdown()
}

func (e *Engine) enterShowdown() {
	e.tbl.State = table.StateShowdown
	e.tbl.DealerRevealed = true
}

// ---------------------
//      SHOWDOWN
// ---------------------

func (e *Engine) settleShowdown(ctx context.Context) error {
	e.mu.Lock()
	if e.tbl.State != table.StateShowdown {
		e.mu.Unlock()
		return nil
	}
	roundID := e.tbl.RoundID
	req := oracle.VerdictRequest{
		PlayerHand: append([]table.Card(nil), e.tbl.PlayerHand...),
		DealerHand: append([]table.Card(nil), e.tbl.DealerHand...),
		Community:  append([]table.Card(nil), e.tbl.Community...),
	}
	e.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, e.oracleTimeout())
	verdict, err := e.judge.Evaluate(callCtx, req)
	cancel()
	if err != nil {
		// 裁判不可用：按平局结算，回合必须终止，彩池必须派发
		utils.Log.Warn("judge unavailable, settling as tie", "err", err)
		verdict = oracle.Verdict{
			Winner:          oracle.WinnerTie,
			WinningHandName: "Unknown",
			WinningHandDesc: "The judge was unavailable; the pot is split.",
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tbl.RoundID != roundID || e.tbl.State != table.StateShowdown {
		return nil
	}

	e.resolveVerdict(verdict)
	e.pushEvent(websocket.EventShowdown, map[string]any{
		"result":   e.tbl.Result,
		"snapshot": e.snapshot(),
	})
	return nil
}

// resolveVerdict 把（已清洗的）裁决落到筹码上。
// 平局奇数彩池的零头给庄家：玩家拿 floor，庄家拿 ceil，规则固定
func (e *Engine) resolveVerdict(v oracle.Verdict) {
	pot := e.tbl.Pot

	switch v.Winner {
	case oracle.WinnerPlayer:
		e.tbl.PlayerChips += pot
	case oracle.WinnerDealer:
		e.tbl.DealerChips += pot
	default:
		// TIE 以及任何无法识别的枚举值都按平局处理
		v.Winner = oracle.WinnerTie
		e.tbl.PlayerChips += pot / 2
		e.tbl.DealerChips += pot - pot/2
	}
	e.tbl.Pot = 0
	e.tbl.PlayerBet = 0
	e.tbl.DealerBet = 0
	e.tbl.Result = &table.Result{
		Winner:   v.Winner,
		HandName: v.WinningHandName,
		HandDesc: v.WinningHandDesc,
	}

	if e.tbl.DealerChips <= 0 {
		e.finishGame(table.SidePlayer)
		return
	}
	if e.tbl.PlayerChips <= 0 {
		e.finishGame(table.SideDealer)
		return
	}
	e.tbl.State = table.StateRoundOver
}

// finishGame 一方破产：落终局状态，整局到此为止
func (e *Engine) finishGame(winner table.Side) {
	if winner == table.SidePlayer {
		e.tbl.State = table.StateVictory
		return
	}
	e.tbl.State = table.StateGameOver
}

// ---------------------
//      SNAPSHOT
// ---------------------

func (e *Engine) Snapshot() table.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// snapshot 需要持锁调用。摊牌前庄家底牌盖着发
func (e *Engine) snapshot() table.Snapshot {
	dealerHand := make([]table.Card, 0, len(e.tbl.DealerHand))
	for _, c := range e.tbl.DealerHand {
		if e.tbl.DealerRevealed {
			dealerHand = append(dealerHand, c)
		} else {
			dealerHand = append(dealerHand, c.Hidden())
		}
	}

	snap := table.Snapshot{
		GameID:      e.tbl.ID,
		RoundID:     e.tbl.RoundID,
		State:       e.tbl.State,
		PlayerHand:  append([]table.Card(nil), e.tbl.PlayerHand...),
		DealerHand:  dealerHand,
		Community:   append([]table.Card(nil), e.tbl.Community...),
		PlayerChips: e.tbl.PlayerChips,
		DealerChips: e.tbl.DealerChips,
		PlayerBet:   e.tbl.PlayerBet,
		DealerBet:   e.tbl.DealerBet,
		Pot:         e.tbl.Pot,
		Actions:     e.legalActions(),
		Result:      e.tbl.Result,
	}
	if e.tbl.RoundID != "" {
		snap.Street = e.tbl.Street
	}
	return snap
}

func (e *Engine) oracleTimeout() time.Duration {
	if e.cfg.OracleTimeout > 0 {
		return e.cfg.OracleTimeout
	}
	return 20 * time.Second
}

func (e *Engine) pushEvent(event string, data any) {
	if e.hub == nil {
		return
	}
	e.hub.SendToPlayer(e.tbl.PlayerID, websocket.OutgoingMessage{Event: event, Data: data})
}
