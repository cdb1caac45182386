package oracle

import (
	"context"

	"AIHoldem/internal/game/table"
)

// 外部决策源的接口定义。实现方（Gemini）被视为不可信：
// 返回值必须经过 engine 侧的清洗才能进入筹码账目

// DecisionRequest 庄家行动请求
type DecisionRequest struct {
	DealerHand    []table.Card
	Community     []table.Card
	Pot           int
	AmountToCall  int
	DealerChips   int
	OpponentChips int
}

// Decision 庄家的原始决策（未清洗）
type Decision struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

const (
	ActionFold  = "FOLD"
	ActionCheck = "CHECK"
	ActionCall  = "CALL"
	ActionBet   = "BET"
	ActionRaise = "RAISE"
)

// VerdictRequest 摊牌裁决请求
type VerdictRequest struct {
	PlayerHand []table.Card
	DealerHand []table.Card
	Community  []table.Card
}

// Verdict 摊牌结果。只取 winner 枚举与描述文本，不信任任何数值字段
type Verdict struct {
	Winner          string `json:"winner"`
	WinningHandName string `json:"winningHandName"`
	WinningHandDesc string `json:"winningHandDescription"`
}

const (
	WinnerPlayer = "PLAYER"
	WinnerDealer = "DEALER"
	WinnerTie    = "TIE"
)

// DealerBrain 庄家策略来源
type DealerBrain interface {
	Decide(ctx context.Context, req DecisionRequest) (Decision, error)
}

// Judge 摊牌裁判
type Judge interface {
	Evaluate(ctx context.Context, req VerdictRequest) (Verdict, error)
}
