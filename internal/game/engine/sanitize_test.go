package engine

import (
	"testing"

	"AIHoldem/internal/oracle"
)

// ✅ 清洗层：外部决策源的任何输出都必须变成一个合法动作
func TestSanitizeDecision(t *testing.T) {
	cases := []struct {
		name        string
		playerBet   int
		dealerBet   int
		dealerChips int
		pot         int
		raw         oracle.Decision
		failed      bool
		want        Action
	}{
		{
			name:      "调用失败且有注要跟：弃牌",
			playerBet: 40, dealerBet: 20, dealerChips: 980, pot: 60,
			failed: true,
			want:   Action{Kind: Fold},
		},
		{
			name:        "调用失败且无注可跟：过牌",
			dealerChips: 980, pot: 40,
			failed: true,
			want:   Action{Kind: Check},
		},
		{
			name:        "无注时弃牌矫正为过牌",
			dealerChips: 980, pot: 40,
			raw:  oracle.Decision{Action: oracle.ActionFold},
			want: Action{Kind: Check},
		},
		{
			name:      "有注时弃牌原样放行",
			playerBet: 60, dealerBet: 20, dealerChips: 980, pot: 80,
			raw:  oracle.Decision{Action: oracle.ActionFold},
			want: Action{Kind: Fold},
		},
		{
			name:      "有注时过牌矫正为跟注",
			playerBet: 40, dealerBet: 20, dealerChips: 980, pot: 60,
			raw:  oracle.Decision{Action: oracle.ActionCheck},
			want: Action{Kind: Call},
		},
		{
			name:      "有注时过牌且筹码恰好够跟：矫正为全下跟注",
			playerBet: 520, dealerBet: 20, dealerChips: 500, pot: 540,
			raw:  oracle.Decision{Action: oracle.ActionCheck},
			want: Action{Kind: Call},
		},
		{
			name:      "有注时过牌但跟不起：弃牌",
			playerBet: 500, dealerBet: 20, dealerChips: 100, pot: 520,
			raw:  oracle.Decision{Action: oracle.ActionCheck},
			want: Action{Kind: Fold},
		},
		{
			name:        "无注时跟注矫正为过牌",
			dealerChips: 980, pot: 40,
			raw:  oracle.Decision{Action: oracle.ActionCall},
			want: Action{Kind: Check},
		},
		{
			name:      "有注时跟注原样放行",
			playerBet: 40, dealerBet: 20, dealerChips: 980, pot: 60,
			raw:  oracle.Decision{Action: oracle.ActionCall},
			want: Action{Kind: Call},
		},
		{
			name:      "未知动作枚举走失败回退",
			playerBet: 40, dealerBet: 20, dealerChips: 980, pot: 60,
			raw:  oracle.Decision{Action: "SHOVE"},
			want: Action{Kind: Fold},
		},
		{
			name:      "加注额缺失且有注：回退为两倍跟注",
			playerBet: 20, dealerBet: 0, dealerChips: 980, pot: 40,
			raw:  oracle.Decision{Action: oracle.ActionRaise},
			want: Action{Kind: Raise, Amount: 40},
		},
		{
			name:        "下注额缺失且无注：回退为半池",
			dealerChips: 980, pot: 100,
			raw:  oracle.Decision{Action: oracle.ActionBet},
			want: Action{Kind: Raise, Amount: 50},
		},
		{
			name:      "加注额超过全部筹码：截断为 all-in",
			playerBet: 60, dealerBet: 20, dealerChips: 100, pot: 80,
			raw:  oracle.Decision{Action: oracle.ActionRaise, Amount: 5000},
			want: Action{Kind: Raise, Amount: 120},
		},
		{
			name:      "截断后构不成加注：退化为跟注",
			playerBet: 200, dealerBet: 20, dealerChips: 100, pot: 220,
			raw:  oracle.Decision{Action: oracle.ActionRaise, Amount: 300},
			want: Action{Kind: Call},
		},
		{
			name:      "低于最低加注线且够得着线：抬到线上",
			playerBet: 40, dealerBet: 20, dealerChips: 1000, pot: 60,
			raw:  oracle.Decision{Action: oracle.ActionRaise, Amount: 50},
			want: Action{Kind: Raise, Amount: 60},
		},
		{
			name:      "低于最低加注线且够不着线：不足额全下",
			playerBet: 20, dealerBet: 0, dealerChips: 35, pot: 30,
			raw:  oracle.Decision{Action: oracle.ActionRaise, Amount: 30},
			want: Action{Kind: Raise, Amount: 35},
		},
		{
			name:        "无注无池时下注 0：退化为过牌",
			dealerChips: 980,
			raw:  oracle.Decision{Action: oracle.ActionBet},
			want: Action{Kind: Check},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := newTestEngine(t, nil, nil)
			e.mu.Lock()
			e.tbl.PlayerBet = tc.playerBet
			e.tbl.DealerBet = tc.dealerBet
			e.tbl.DealerChips = tc.dealerChips
			e.tbl.Pot = tc.pot
			got := e.sanitizeDecision(tc.raw, tc.failed)
			e.mu.Unlock()

			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
