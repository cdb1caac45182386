package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"AIHoldem/internal/game/table"
	"AIHoldem/internal/oracle"
)

// ✅ 完整回合：玩家加注 → 庄家跟注 → 双方过牌到河牌 → 摊牌，玩家赢
func TestFullRoundPlayerWins(t *testing.T) {
	brain := &scriptBrain{decisions: []oracle.Decision{
		{Action: oracle.ActionCall},  // 翻牌前跟玩家的加注
		{Action: oracle.ActionCheck}, // 翻牌
		{Action: oracle.ActionCheck}, // 转牌
		{Action: oracle.ActionCheck}, // 河牌
	}}
	judge := &fixedJudge{verdict: oracle.Verdict{
		Winner: oracle.WinnerPlayer, WinningHandName: "Flush", WinningHandDesc: "Ace high",
	}}
	e, hub := newTestEngine(t, brain, judge)
	mustStart(t, e)

	// 翻牌前：加注到 40，庄家跟 → 翻牌圈
	mustAct(t, e, Action{Kind: Raise, Amount: 40})
	mustAdvance(t, e)
	snap := e.Snapshot()
	if snap.Street != table.Flop || snap.State != table.StatePlayerTurn {
		t.Fatalf("after dealer call expected FLOP/PLAYER_TURN, got %s/%s", snap.Street, snap.State)
	}
	if snap.Pot != 80 {
		t.Fatalf("expected pot 80, got %d", snap.Pot)
	}

	// 双方对检到河牌
	for _, want := range []table.Street{table.Turn, table.River} {
		mustAct(t, e, Action{Kind: Check})
		mustAdvance(t, e)
		snap = e.Snapshot()
		if snap.Street != want {
			t.Fatalf("expected street %s, got %s", want, snap.Street)
		}
	}

	// 河牌圈：玩家过牌，庄家过牌 → 摊牌结算
	mustAct(t, e, Action{Kind: Check})
	mustAdvance(t, e)

	snap = e.Snapshot()
	if snap.State != table.StateRoundOver {
		t.Fatalf("expected ROUND_OVER, got %s", snap.State)
	}
	if snap.PlayerChips != 1040 || snap.DealerChips != 960 {
		t.Fatalf("player should win the 80 pot: %d/%d", snap.PlayerChips, snap.DealerChips)
	}
	if snap.Result == nil || snap.Result.Winner != oracle.WinnerPlayer ||
		snap.Result.HandName != "Flush" {
		t.Fatalf("expected player flush result, got %+v", snap.Result)
	}
	// 摊牌后庄家底牌明发
	for _, c := range snap.DealerHand {
		if c.FaceDown {
			t.Fatalf("dealer hand must be revealed after showdown")
		}
	}

	found := false
	for _, ev := range hub.events() {
		if ev == "showdown" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a showdown event to be pushed, got %v", hub.events())
	}
}

// ✅ 庄家收到的决策请求内容正确
func TestDealerRequestContents(t *testing.T) {
	brain := &scriptBrain{decisions: []oracle.Decision{{Action: oracle.ActionFold}}}
	e, _ := newTestEngine(t, brain, nil)
	mustStart(t, e)

	mustAct(t, e, Action{Kind: Raise, Amount: 60})
	mustAdvance(t, e)

	if len(brain.requests) != 1 {
		t.Fatalf("expected exactly one decision request, got %d", len(brain.requests))
	}
	req := brain.requests[0]
	if req.AmountToCall != 40 {
		t.Fatalf("expected amountToCall 40 (60-20), got %d", req.AmountToCall)
	}
	if req.Pot != 80 || req.DealerChips != 980 || req.OpponentChips != 940 {
		t.Fatalf("request state wrong: %+v", req)
	}
	if len(req.DealerHand) != 2 {
		t.Fatalf("dealer hand missing from request")
	}
}

// ✅ 庄家弃牌：玩家拿走彩池
func TestDealerFold(t *testing.T) {
	brain := &scriptBrain{decisions: []oracle.Decision{{Action: oracle.ActionFold}}}
	e, _ := newTestEngine(t, brain, nil)
	mustStart(t, e)

	mustAct(t, e, Action{Kind: Raise, Amount: 60})
	mustAdvance(t, e)

	snap := e.Snapshot()
	if snap.State != table.StateRoundOver {
		t.Fatalf("expected ROUND_OVER, got %s", snap.State)
	}
	if snap.PlayerChips != 1020 || snap.DealerChips != 980 {
		t.Fatalf("player should collect pot 80: %d/%d", snap.PlayerChips, snap.DealerChips)
	}
}

// ✅ 决策源不可达：有注要跟 → 回退弃牌，彩池归玩家，不向上抛错
func TestBrainFailureFallsBackToFold(t *testing.T) {
	brain := &scriptBrain{err: errors.New("upstream timeout")}
	e, _ := newTestEngine(t, brain, nil)
	mustStart(t, e)

	mustAct(t, e, Action{Kind: Raise, Amount: 60})
	mustAdvance(t, e) // 不应返回错误

	snap := e.Snapshot()
	if snap.State != table.StateRoundOver {
		t.Fatalf("round must terminate on adapter failure, got %s", snap.State)
	}
	if snap.PlayerChips != 1020 {
		t.Fatalf("pot should go to the player on dealer fold fallback, got %d", snap.PlayerChips)
	}
}

// ✅ 决策源不可达且无注可跟 → 回退过牌，本圈正常结束
func TestBrainFailureFallsBackToCheck(t *testing.T) {
	brain := &scriptBrain{err: errors.New("connection refused")}
	e, _ := newTestEngine(t, brain, nil)
	mustStart(t, e)

	mustAct(t, e, Action{Kind: Call}) // 翻牌圈，双方无注
	mustAct(t, e, Action{Kind: Check})
	mustAdvance(t, e)

	snap := e.Snapshot()
	if snap.Street != table.Turn || snap.State != table.StatePlayerTurn {
		t.Fatalf("fallback check should conclude the street: %s/%s", snap.Street, snap.State)
	}
}

// ✅ 玩家全下 → 庄家跟注 → 一次性发完公共牌，摊牌分池；庄家破产 → VICTORY
func TestAllInRunOutToVictory(t *testing.T) {
	brain := &scriptBrain{decisions: []oracle.Decision{{Action: oracle.ActionCall}}}
	judge := &fixedJudge{verdict: oracle.Verdict{
		Winner: oracle.WinnerPlayer, WinningHandName: "Straight", WinningHandDesc: "to the nine",
	}}
	e, _ := newTestEngine(t, brain, judge)
	mustStart(t, e)

	mustAct(t, e, Action{Kind: AllIn})
	mustAdvance(t, e)

	snap := e.Snapshot()
	if snap.State != table.StateVictory {
		t.Fatalf("dealer busted, expected VICTORY, got %s", snap.State)
	}
	if snap.PlayerChips != 2000 || snap.DealerChips != 0 || snap.Pot != 0 {
		t.Fatalf("expected 2000/0 pot 0, got %d/%d pot %d",
			snap.PlayerChips, snap.DealerChips, snap.Pot)
	}
	if len(snap.Community) != 5 {
		t.Fatalf("run-out should reveal all 5 community cards, got %d", len(snap.Community))
	}
}

// ✅ 裁判不可达：按平局结算，回合必须终止，彩池必须派发
func TestJudgeFailureSettlesAsTie(t *testing.T) {
	brain := &scriptBrain{decisions: []oracle.Decision{{Action: oracle.ActionCall}}}
	judge := &fixedJudge{err: errors.New("oracle down")}
	e, _ := newTestEngine(t, brain, judge)
	mustStart(t, e)

	mustAct(t, e, Action{Kind: AllIn})
	mustAdvance(t, e)

	snap := e.Snapshot()
	if snap.State != table.StateRoundOver {
		t.Fatalf("expected ROUND_OVER after tie settlement, got %s", snap.State)
	}
	if snap.Pot != 0 {
		t.Fatalf("pot must be fully disbursed, got %d", snap.Pot)
	}
	if snap.PlayerChips != 1000 || snap.DealerChips != 1000 {
		t.Fatalf("even pot tie should restore 1000/1000, got %d/%d",
			snap.PlayerChips, snap.DealerChips)
	}
}

// ✅ 平局奇数彩池：玩家拿 floor，庄家拿 ceil，两份加起来恰好等于彩池
func TestOddPotTieSplit(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil)
	mustStart(t, e)

	e.mu.Lock()
	e.tbl.Pot = 101
	e.tbl.PlayerChips = 450
	e.tbl.DealerChips = 449
	e.resolveVerdict(oracle.Verdict{Winner: oracle.WinnerTie, WinningHandName: "Two Pair"})
	player, dealer := e.tbl.PlayerChips, e.tbl.DealerChips
	pot := e.tbl.Pot
	e.mu.Unlock()

	if player != 500 || dealer != 500 {
		t.Fatalf("expected 450+50 / 449+51, got %d/%d", player, dealer)
	}
	if pot != 0 {
		t.Fatalf("pot must reach zero, got %d", pot)
	}
}

// ✅ 无法识别的裁决枚举按平局处理
func TestUnknownWinnerTreatedAsTie(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil)
	mustStart(t, e)

	e.mu.Lock()
	e.tbl.Pot = 100
	e.tbl.PlayerChips = 500
	e.tbl.DealerChips = 400
	e.resolveVerdict(oracle.Verdict{Winner: "BANANA"})
	player, dealer := e.tbl.PlayerChips, e.tbl.DealerChips
	winner := e.tbl.Result.Winner
	e.mu.Unlock()

	if player != 550 || dealer != 450 {
		t.Fatalf("expected tie split, got %d/%d", player, dealer)
	}
	if winner != oracle.WinnerTie {
		t.Fatalf("recorded winner should be TIE, got %s", winner)
	}
}

// ✅ 玩家破产后开新回合直接进 GAME_OVER，不洗牌不下盲注
func TestStartRoundFailsClosedWhenBusted(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil)
	e.RestoreChips(0, 2000)

	snap := mustStart(t, e)
	if snap.State != table.StateGameOver {
		t.Fatalf("expected GAME_OVER, got %s", snap.State)
	}
	if snap.Pot != 0 || len(snap.PlayerHand) != 0 {
		t.Fatalf("fail-closed start must not deal or post blinds")
	}
}

// ✅ reset 后过期的 oracle 响应必须被丢弃，不能污染新状态
func TestStaleOracleResponseDiscardedAfterReset(t *testing.T) {
	release := make(chan struct{})
	brain := &blockingBrain{
		release:  release,
		started:  make(chan struct{}),
		decision: oracle.Decision{Action: oracle.ActionRaise, Amount: 500},
	}
	e, _ := newTestEngine(t, brain, nil)
	mustStart(t, e)
	mustAct(t, e, Action{Kind: Raise, Amount: 60})

	done := make(chan error, 1)
	go func() { done <- e.Advance(context.Background()) }()

	// 等 brain 真正挂起后 reset 整局
	<-brain.started
	e.Reset()
	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Advance returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Advance did not return")
	}

	snap := e.Snapshot()
	if snap.State != table.StateReady {
		t.Fatalf("stale dealer action leaked into reset game: state %s", snap.State)
	}
	if snap.PlayerChips != 1000 || snap.DealerChips != 1000 || snap.Pot != 0 {
		t.Fatalf("reset balances corrupted: %d/%d pot %d",
			snap.PlayerChips, snap.DealerChips, snap.Pot)
	}
}

// blockingBrain 挂起直到 release 关闭，用于制造在途响应
type blockingBrain struct {
	release  chan struct{}
	decision oracle.Decision
	started  chan struct{}
	once     bool
}

func (b *blockingBrain) Decide(ctx context.Context, req oracle.DecisionRequest) (oracle.Decision, error) {
	if !b.once {
		b.once = true
		close(b.started)
	}
	<-b.release
	return b.decision, nil
}
