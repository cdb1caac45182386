package engine

import (
	"AIHoldem/internal/oracle"
)

// sanitizeDecision 把外部决策源返回的原始动作清洗成一定合法的引擎动作。
// 需要持锁调用（读当前桌面）。这里是隔离不可靠外部输入的边界：
// 任何字段都不直接信任，清洗之后的动作走与人类玩家完全相同的校验路径。
//
// failed 为 true 表示 oracle 调用本身失败（超时/不可达/解析失败），
// 此时回退策略：有注要跟就弃牌，没有就过牌，回合绝不悬停
func (e *Engine) sanitizeDecision(raw oracle.Decision, failed bool) Action {
	toCall := e.tbl.PlayerBet - e.tbl.DealerBet
	if toCall < 0 {
		toCall = 0
	}

	fallback := Action{Kind: Check}
	if toCall > 0 {
		fallback = Action{Kind: Fold}
	}
	if failed {
		return fallback
	}

	switch raw.Action {
	case oracle.ActionFold:
		if toCall == 0 {
			// 无注可跟时弃牌没有意义，矫正为过牌
			return Action{Kind: Check}
		}
		return Action{Kind: Fold}

	case oracle.ActionCheck:
		if toCall > 0 {
			// 有注不能过牌：跟得起就跟（恰好够也算，全下跟注），跟不起就弃
			if e.tbl.DealerChips >= toCall {
				return Action{Kind: Call}
			}
			return Action{Kind: Fold}
		}
		return Action{Kind: Check}

	case oracle.ActionCall:
		if toCall == 0 {
			return Action{Kind: Check}
		}
		return Action{Kind: Call}

	case oracle.ActionBet, oracle.ActionRaise:
		return e.sanitizeRaise(raw.Amount, toCall)

	default:
		// 未知枚举值一律走失败回退
		return fallback
	}
}

// sanitizeRaise 清洗下注/加注额（amount 语义：本圈目标总额）。
// 缺失或不超过跟注需求时用计算回退值：有注则两倍跟注，无注则半池。
// 超过全部筹码截断为 all-in；低于最低加注线且够不成 all-in 时抬到线上；
// 截断后已构不成加注的退化为跟注/过牌
func (e *Engine) sanitizeRaise(amount, toCall int) Action {
	pot := e.tbl.Pot
	dealerBet := e.tbl.DealerBet
	dealerChips := e.tbl.DealerChips
	playerBet := e.tbl.PlayerBet

	if amount <= toCall {
		if toCall > 0 {
			amount = toCall * 2
		} else {
			amount = pot / 2
		}
	}

	// amount 的语义就是目标总额，夹在可达范围内
	target := amount
	allInTarget := dealerBet + dealerChips
	if target > allInTarget {
		target = allInTarget
	}

	// 截断后构不成加注：退化为跟注（或无注时过牌）
	if target <= playerBet {
		if toCall > 0 {
			return Action{Kind: Call}
		}
		return Action{Kind: Check}
	}

	// 最低加注线。够不到线又不是 all-in 的抬到线上
	increment := toCall
	if increment < e.cfg.BigBlind {
		increment = e.cfg.BigBlind
	}
	minTarget := playerBet + increment
	if target < minTarget {
		if allInTarget <= minTarget {
			target = allInTarget // 不足额全下，规则允许
		} else {
			target = minTarget
		}
	}

	return Action{Kind: Raise, Amount: target}
}
