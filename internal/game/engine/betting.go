package engine

import (
	"fmt"

	"AIHoldem/internal/game/table"
)

// ---------------------
//   ACTION DEFINITION
// ---------------------

// ActionKind 动作是封闭集合，apply 里穷举分支
type ActionKind string

const (
	Fold  ActionKind = "FOLD"
	Check ActionKind = "CHECK"
	Call  ActionKind = "CALL"
	Raise ActionKind = "RAISE"
	AllIn ActionKind = "ALL_IN"
)

// Action Amount 语义为「本下注圈的目标总额」（raise-to），不是增量
type Action struct {
	Kind   ActionKind `json:"action"`
	Amount int        `json:"amount,omitempty"`
}

// 筹码账户视图：apply 通过它读写某一方，避免 player/dealer 两套分支
type account struct {
	chips *int
	bet   *int
}

func (e *Engine) side(s table.Side) account {
	if s == table.SidePlayer {
		return account{chips: &e.tbl.PlayerChips, bet: &e.tbl.PlayerBet}
	}
	return account{chips: &e.tbl.DealerChips, bet: &e.tbl.DealerBet}
}

// apply 校验并执行一个动作。校验失败时不改动任何状态。
// 玩家与庄家走同一条路径，庄家的决策在进入这里之前已经过清洗
func (e *Engine) apply(side table.Side, a Action) error {
	self := e.side(side)
	opp := e.side(side.Opponent())

	switch a.Kind {
	case Fold:
		return e.applyFold(side)

	case Check:
		if *self.bet != *opp.bet {
			return fmt.Errorf("cannot check: %d to call", *opp.bet-*self.bet)
		}
		e.passTurn(side)
		return nil

	case Call:
		diff := *opp.bet - *self.bet
		if diff <= 0 {
			return fmt.Errorf("nothing to call, check instead")
		}
		// 筹码不足时自动变成不足额跟注（被迫 all-in），不是错误
		amount := diff
		if amount > *self.chips {
			amount = *self.chips
		}
		e.commit(self, amount)
		e.afterBetsEqual()
		return nil

	case Raise:
		return e.applyRaise(side, a.Amount)

	case AllIn:
		if *self.chips <= 0 {
			return fmt.Errorf("no chips left to go all-in")
		}
		target := *self.bet + *self.chips
		if target <= *opp.bet {
			// 全下都不够跟注额：等价于不足额跟注
			e.commit(self, *self.chips)
			e.afterBetsEqual()
			return nil
		}
		return e.applyRaise(side, target)

	default:
		return fmt.Errorf("unknown action %q", a.Kind)
	}
}

func (e *Engine) applyFold(side table.Side) error {
	self := e.side(side)
	opp := e.side(side.Opponent())

	// 弃牌方已投入的部分留在彩池里，整个彩池归对手
	*opp.chips += e.tbl.Pot
	e.tbl.Pot = 0
	e.tbl.PlayerBet = 0
	e.tbl.DealerBet = 0

	if *self.chips <= 0 {
		e.finishGame(side.Opponent())
		return nil
	}
	e.tbl.State = table.StateRoundOver
	return nil
}

func (e *Engine) applyRaise(side table.Side, target int) error {
	self := e.side(side)
	opp := e.side(side.Opponent())

	diff := *opp.bet - *self.bet
	if diff < 0 {
		diff = 0
	}
	increment := diff
	if increment < e.cfg.BigBlind {
		increment = e.cfg.BigBlind
	}
	minTarget := *opp.bet + increment
	allInTarget := *self.bet + *self.chips

	if target > allInTarget {
		return fmt.Errorf("cannot bet more chips than you have")
	}
	// 最低加注额限制；唯一例外是把剩余筹码全部推进去
	if target < minTarget && target != allInTarget {
		return fmt.Errorf("raise must be to at least %d", minTarget)
	}

	e.commitTo(self, target)
	e.passTurn(side)
	return nil
}

// commit 把 amount 从账户转入彩池并计入本圈下注
func (e *Engine) commit(acc account, amount int) {
	*acc.chips -= amount
	*acc.bet += amount
	e.tbl.Pot += amount
}

func (e *Engine) commitTo(acc account, target int) {
	e.commit(acc, target-*acc.bet)
}

// passTurn 过牌/加注后把行动权交给对手；庄家过牌说明双方都已行动，本圈结束
func (e *Engine) passTurn(side table.Side) {
	if side == table.SidePlayer {
		e.tbl.State = table.StateDealerTurn
		return
	}
	if e.tbl.PlayerBet == e.tbl.DealerBet {
		e.concludeStreet()
		return
	}
	e.tbl.State = table.StatePlayerTurn
}

// afterBetsEqual 跟注把双方下注拉平之后的流转：
// 有一方打空了就直接发完公共牌进摊牌，否则结束本下注圈
func (e *Engine) afterBetsEqual() {
	if e.tbl.PlayerChips <= 0 || e.tbl.DealerChips <= 0 {
		e.runItOut()
		return
	}
	e.concludeStreet()
}

// LegalActions 当前玩家可用的动作与加注边界（State 非 PLAYER_TURN 时为空集）
func (e *Engine) legalActions() table.LegalActions {
	if e.tbl.State != table.StatePlayerTurn {
		return table.LegalActions{}
	}

	toCall := e.tbl.DealerBet - e.tbl.PlayerBet
	effective := e.tbl.PlayerChips + e.tbl.PlayerBet

	la := table.LegalActions{
		CanFold:  true,
		CanAllIn: e.tbl.PlayerChips > 0,
	}
	if toCall <= 0 {
		la.CanCheck = true
	} else {
		la.CanCall = true
		la.CallAmount = toCall
		if la.CallAmount > e.tbl.PlayerChips {
			la.CallAmount = e.tbl.PlayerChips
		}
	}

	increment := toCall
	if increment < e.cfg.BigBlind {
		increment = e.cfg.BigBlind
	}
	minTarget := e.tbl.DealerBet + increment
	if effective > e.tbl.DealerBet {
		la.CanRaise = true
		la.MinRaiseTo = minTarget
		if la.MinRaiseTo > effective {
			la.MinRaiseTo = effective // 只能以不足额全下的方式加注
		}
		la.MaxRaiseTo = effective
	}
	return la
}
