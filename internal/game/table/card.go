package table

import "fmt"

// Card 定义 (suit 0-3, rank 2-14)
type Card struct {
	Suit int `json:"suit"`
	Rank int `json:"rank"`
	// FaceDown 只影响前端展示，不参与任何规则判断
	FaceDown bool `json:"faceDown,omitempty"`
}

func (c Card) String() string {
	return fmtCard(c)
}

// Hidden 返回一张盖着的牌（发给前端用）。
// 真实花色/点数必须抹掉：快照会原样序列化给客户端
func (c Card) Hidden() Card {
	return Card{FaceDown: true}
}

func fmtCard(c Card) string {
	suits := []string{"♣", "♦", "♥", "♠"}
	ranks := map[int]string{
		10: "T",
		11: "J",
		12: "Q",
		13: "K",
		14: "A",
	}
	rankStr, ok := ranks[c.Rank]
	if !ok {
		rankStr = fmt.Sprintf("%d", c.Rank)
	}
	suitStr := "?"
	if c.Suit >= 0 && c.Suit < len(suits) {
		suitStr = suits[c.Suit]
	}
	return rankStr + suitStr
}
