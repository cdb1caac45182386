package websocket

// 服务端推送事件名
const (
	EventState        = "state"         // 全量快照
	EventRoundStarted = "round_started" // 新回合：底牌 + 盲注
	EventCommunity    = "community"     // 公共牌翻开
	EventDealerAction = "dealer_action" // 庄家动作
	EventShowdown     = "showdown"      // 摊牌结果
	EventError        = "error"         // 非法动作等
)

type OutgoingMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type IncomingMessage struct {
	From  string      `json:"from"`
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
