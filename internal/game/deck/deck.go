package deck

import (
	"math/rand"

	"AIHoldem/internal/game/table"
)

// Deck 只负责洗牌与发牌（无规则判断）。每个回合新建一副
type Deck struct {
	cards []table.Card
	rnd   *rand.Rand
}

func New(seed int64) *Deck {
	d := &Deck{rnd: rand.New(rand.NewSource(seed))}
	d.cards = Shuffle(fullDeck(), d.rnd)
	return d
}

func fullDeck() []table.Card {
	cards := make([]table.Card, 0, 52)
	for s := 0; s < 4; s++ {
		for r := 2; r <= 14; r++ {
			cards = append(cards, table.Card{Suit: s, Rank: r})
		}
	}
	return cards
}

// Shuffle Fisher–Yates 洗牌。返回新切片，不改动传入的那份
func Shuffle(cards []table.Card, rnd *rand.Rand) []table.Card {
	out := make([]table.Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// DealHole 发一对底牌
func (d *Deck) DealHole() []table.Card {
	return []table.Card{d.Draw(), d.Draw()}
}

// DealCommunity 发 n 张公共牌（单人桌不烧牌）
func (d *Deck) DealCommunity(n int) []table.Card {
	out := make([]table.Card, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, d.Draw())
	}
	return out
}

func (d *Deck) Draw() table.Card {
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c
}

// Remaining 剩余张数，用于守恒检查
func (d *Deck) Remaining() int {
	return len(d.cards)
}
