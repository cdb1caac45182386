package manager

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"AIHoldem/internal/game/engine"
	"AIHoldem/internal/oracle"
)

// Handler 游戏 REST 入口。playerID 由 JWT middleware 注入
type Handler struct {
	mgr *GameManager
	art oracle.ArtProvider

	artMu    sync.Mutex
	artCache map[string]string
}

func NewHandler(mgr *GameManager, art oracle.ArtProvider) *Handler {
	return &Handler{
		mgr:      mgr,
		art:      art,
		artCache: make(map[string]string),
	}
}

type actionRequest struct {
	Action engine.ActionKind `json:"action" binding:"required"`
	Amount int               `json:"amount"`
}

// POST /game/new
func (h *Handler) NewGame(c *gin.Context) {
	eng := h.mgr.GetOrCreate(c.Request.Context(), c.GetString("playerID"))
	c.JSON(http.StatusOK, eng.Snapshot())
}

// GET /game/state
func (h *Handler) State(c *gin.Context) {
	snap, err := h.mgr.Snapshot(c.GetString("playerID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// POST /game/round
func (h *Handler) StartRound(c *gin.Context) {
	snap, err := h.mgr.StartRound(c.Request.Context(), c.GetString("playerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// POST /game/action  body: {action, amount?}
// 非法动作返回 400 + 原因，状态不变，玩家可以直接重试
func (h *Handler) Action(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := h.mgr.HandleAction(c.Request.Context(), c.GetString("playerID"),
		engine.Action{Kind: req.Action, Amount: req.Amount})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// POST /game/reset
func (h *Handler) Reset(c *gin.Context) {
	snap, err := h.mgr.Reset(c.Request.Context(), c.GetString("playerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GET /game/art/:kind  (table|gameover|victory)
// 纯装饰用途，结果缓存；生成失败由 ArtProvider 自己兜底成占位图
func (h *Handler) Art(c *gin.Context) {
	kind := c.Param("kind")
	switch kind {
	case oracle.ArtTable, oracle.ArtGameOver, oracle.ArtVictory:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown art kind"})
		return
	}

	h.artMu.Lock()
	url, ok := h.artCache[kind]
	h.artMu.Unlock()
	if !ok {
		url = h.art.Art(c.Request.Context(), kind)
		h.artMu.Lock()
		h.artCache[kind] = url
		h.artMu.Unlock()
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
