package table

import "time"

// State 会话/回合状态机的显式状态（不从牌数推断）
type State string

const (
	StateReady      State = "READY"
	StatePlayerTurn State = "PLAYER_TURN"
	StateDealerTurn State = "DEALER_TURN"
	StateShowdown   State = "SHOWDOWN"
	StateRoundOver  State = "ROUND_OVER"
	StateGameOver   State = "GAME_OVER"
	StateVictory    State = "VICTORY"
)

// Terminal 会话是否已经结束（等待 reset）
func (s State) Terminal() bool {
	return s == StateGameOver || s == StateVictory
}

// Street 当前下注圈。公共牌数量由 street 推导，而不是反过来
type Street string

const (
	PreFlop Street = "PRE_FLOP"
	Flop    Street = "FLOP"
	Turn    Street = "TURN"
	River   Street = "RIVER"
)

// RevealTarget 本 street 结束后公共牌应到达的张数
func (s Street) RevealTarget() int {
	switch s {
	case PreFlop:
		return 3
	case Flop:
		return 4
	case Turn:
		return 5
	}
	return 5
}

// Side 行动方
type Side string

const (
	SidePlayer Side = "PLAYER"
	SideDealer Side = "DEALER"
)

func (s Side) Opponent() Side {
	if s == SidePlayer {
		return SideDealer
	}
	return SidePlayer
}

// Table 单个人机对局的全部权威状态。
// 所有变更都必须经过 engine 的统一入口，字段不允许在别处单独修改
type Table struct {
	ID       string
	PlayerID string

	// 回合标识：每次 startRound 重新生成，用于丢弃过期的 oracle 响应
	RoundID string

	State  State
	Street Street

	PlayerHand []Card
	DealerHand []Card
	Community  []Card

	// 筹码账户：Chips 为剩余筹码，Bet 为本下注圈已投入
	PlayerChips int
	DealerChips int
	PlayerBet   int
	DealerBet   int
	Pot         int

	// DealerRevealed 摊牌后为 true，快照里庄家底牌才明发
	DealerRevealed bool
	// Result 上一回合的摊牌结果（弃牌结束的回合为 nil）
	Result *Result

	CreatedAt time.Time
}

// Result 摊牌裁决（已清洗），用于展示
type Result struct {
	Winner   string `json:"winner"`
	HandName string `json:"handName"`
	HandDesc string `json:"handDesc"`
}

// LegalActions 当前行动方的合法动作集合与加注边界，供前端渲染控件
type LegalActions struct {
	CanFold    bool `json:"canFold"`
	CanCheck   bool `json:"canCheck"`
	CanCall    bool `json:"canCall"`
	CallAmount int  `json:"callAmount"`
	CanRaise   bool `json:"canRaise"`
	MinRaiseTo int  `json:"minRaiseTo"`
	MaxRaiseTo int  `json:"maxRaiseTo"`
	CanAllIn   bool `json:"canAllIn"`
}

// Snapshot 对外暴露的状态快照（庄家底牌在摊牌前盖着发）
type Snapshot struct {
	GameID      string       `json:"gameId"`
	RoundID     string       `json:"roundId,omitempty"`
	State       State        `json:"state"`
	Street      Street       `json:"street,omitempty"`
	PlayerHand  []Card       `json:"playerHand"`
	DealerHand  []Card       `json:"dealerHand"`
	Community   []Card       `json:"community"`
	PlayerChips int          `json:"playerChips"`
	DealerChips int          `json:"dealerChips"`
	PlayerBet   int          `json:"playerBet"`
	DealerBet   int          `json:"dealerBet"`
	Pot         int          `json:"pot"`
	Actions     LegalActions `json:"actions"`
	Result      *Result      `json:"result,omitempty"`
}
