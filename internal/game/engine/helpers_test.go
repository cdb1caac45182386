package engine

import (
	"context"
	"sync"
	"testing"

	"AIHoldem/internal/game/table"
	"AIHoldem/internal/oracle"
	"AIHoldem/internal/websocket"
)

// mockHub 记录推送的事件
type mockHub struct {
	mu   sync.Mutex
	sent []websocket.OutgoingMessage
}

func (h *mockHub) SendToPlayer(playerID string, msg websocket.OutgoingMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, msg)
}

func (h *mockHub) ClientByID(playerID string) (*websocket.Client, bool) { return nil, false }
func (h *mockHub) Close()                                              {}

func (h *mockHub) events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.sent))
	for i, m := range h.sent {
		out[i] = m.Event
	}
	return out
}

// scriptBrain 按脚本顺序返回庄家决策，记录收到的请求
type scriptBrain struct {
	mu        sync.Mutex
	decisions []oracle.Decision
	err       error
	i         int
	requests  []oracle.DecisionRequest
}

func (b *scriptBrain) Decide(ctx context.Context, req oracle.DecisionRequest) (oracle.Decision, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	if b.err != nil {
		return oracle.Decision{}, b.err
	}
	if b.i >= len(b.decisions) {
		return oracle.Decision{Action: oracle.ActionCheck}, nil
	}
	d := b.decisions[b.i]
	b.i++
	return d, nil
}

// fixedJudge 固定返回同一个裁决
type fixedJudge struct {
	verdict oracle.Verdict
	err     error
}

func (j *fixedJudge) Evaluate(ctx context.Context, req oracle.VerdictRequest) (oracle.Verdict, error) {
	if j.err != nil {
		return oracle.Verdict{}, j.err
	}
	return j.verdict, nil
}

func testConfig() Config {
	return Config{InitialChips: 1000, SmallBlind: 10, BigBlind: 20}
}

func newTestEngine(t *testing.T, brain oracle.DealerBrain, judge oracle.Judge) (*Engine, *mockHub) {
	t.Helper()
	if brain == nil {
		brain = &scriptBrain{}
	}
	if judge == nil {
		judge = &fixedJudge{verdict: oracle.Verdict{
			Winner: oracle.WinnerTie, WinningHandName: "High Card", WinningHandDesc: "even",
		}}
	}
	hub := &mockHub{}
	eng := New("player-1", testConfig(), brain, judge, hub)
	eng.SeedFn = func() int64 { return 42 } // 固定种子，测试可复现
	return eng, hub
}

// totalChips 守恒检查：双方余额 + 彩池
func totalChips(e *Engine) int {
	return e.tbl.PlayerChips + e.tbl.DealerChips + e.tbl.Pot
}

func mustStart(t *testing.T, e *Engine) table.Snapshot {
	t.Helper()
	snap, err := e.StartRound()
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	return snap
}

func mustAct(t *testing.T, e *Engine, a Action) table.Snapshot {
	t.Helper()
	snap, err := e.HandlePlayerAction(a)
	if err != nil {
		t.Fatalf("action %s rejected: %v", a.Kind, err)
	}
	return snap
}

func mustAdvance(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Advance(context.Background()); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
}
