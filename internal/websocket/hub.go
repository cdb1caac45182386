package websocket

import (
	"sync"

	"AIHoldem/internal/utils"
)

type HubInterface interface {
	SendToPlayer(playerID string, msg OutgoingMessage)
	ClientByID(playerID string) (*Client, bool)
	Close()
}

// Hub 管理所有在线连接。同一 playerID 重连会顶掉旧连接
type Hub struct {
	clients    map[string]*Client // playerID -> client
	register   chan *Client
	unregister chan *Client
	sendOne    chan sendReq
	incoming   chan IncomingMessage
	OnIncoming func(IncomingMessage)
	quit       chan struct{}
	mu         sync.RWMutex
}

type sendReq struct {
	PlayerID string
	Message  OutgoingMessage
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		sendOne:    make(chan sendReq),
		incoming:   make(chan IncomingMessage),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	utils.Log.Info("websocket hub started")

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[c.PlayerID]; ok {
				// 重连：关闭旧连接的发送队列
				close(old.Send)
			}
			h.clients[c.PlayerID] = c
			utils.Log.Debug("hub register", "player", c.PlayerID, "online", len(h.clients))
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[c.PlayerID]; ok && cur == c {
				delete(h.clients, c.PlayerID)
				close(c.Send)
				utils.Log.Debug("hub unregister", "player", c.PlayerID, "online", len(h.clients))
			}
			h.mu.Unlock()

		case req := <-h.sendOne:
			h.mu.RLock()
			client, ok := h.clients[req.PlayerID]
			h.mu.RUnlock()
			if ok {
				select {
				case client.Send <- req.Message:
				default:
					// 慢客户端直接丢弃，不阻塞游戏循环
				}
			}

		case req := <-h.incoming:
			if h.OnIncoming != nil {
				h.OnIncoming(req)
			}

		case <-h.quit:
			h.mu.Lock()
			for _, c := range h.clients {
				close(c.Send)
			}
			h.clients = make(map[string]*Client)
			h.mu.Unlock()
			return
		}
	}
}

// SendToPlayer 点对点推送。hub 关闭后变成 no-op，调用方不会被挂住
func (h *Hub) SendToPlayer(playerID string, msg OutgoingMessage) {
	select {
	case h.sendOne <- sendReq{PlayerID: playerID, Message: msg}:
	case <-h.quit:
	}
}

func (h *Hub) ClientByID(playerID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[playerID]
	return c, ok
}

func (h *Hub) Close() {
	close(h.quit)
}
