package main

import (
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"AIHoldem/config"
	"AIHoldem/internal/auth"
	"AIHoldem/internal/game/engine"
	"AIHoldem/internal/game/manager"
	"AIHoldem/internal/middleware"
	"AIHoldem/internal/oracle"
	"AIHoldem/internal/storage"
	"AIHoldem/internal/utils"
	"AIHoldem/internal/websocket"
)

func main() {
	config.Load()
	utils.Init(os.Getenv("DEBUG") != "")

	//-------------------------------------------------------
	// 1. 余额仓库：配了 Redis 用 Redis，否则退回内存实现
	//-------------------------------------------------------
	var repo manager.BalanceRepo
	if config.C.Redis.Addr != "" {
		if err := storage.InitRedis(
			config.C.Redis.Addr,
			config.C.Redis.Password,
			config.C.Redis.DB,
		); err != nil {
			utils.Log.Fatal("redis init failed", "err", err)
		}
		repo = manager.NewRedisRepo(storage.Rdb)
		utils.Log.Info("balance repo: redis", "addr", config.C.Redis.Addr)
	} else {
		repo = manager.NewMemoryRepo()
		utils.Log.Warn("balance repo: in-memory (balances lost on restart)")
	}

	//-------------------------------------------------------
	// 2. Oracle：庄家决策 + 摊牌裁判 + 插画
	//-------------------------------------------------------
	gem := oracle.NewGemini(config.C.Gemini.APIKey, config.C.Gemini.BaseURL, config.C.Gemini.Model)
	var art oracle.ArtProvider = oracle.NewImagen(
		config.C.Gemini.APIKey, config.C.Gemini.BaseURL, config.C.Gemini.ImageModel)
	if config.C.Gemini.APIKey == "" {
		utils.Log.Warn("GEMINI_API_KEY not set: dealer falls back to fold/check, art to placeholders")
		art = oracle.StaticArt{}
	}

	//-------------------------------------------------------
	// 3. Hub + GameManager
	//-------------------------------------------------------
	hub := websocket.NewHub()
	go hub.Run()

	gameMgr := manager.NewGameManager(engine.Config{
		InitialChips:  config.C.Game.InitialChips,
		SmallBlind:    config.C.Game.SmallBlind,
		BigBlind:      config.C.Game.BigBlind,
		OracleTimeout: config.C.Gemini.Timeout,
	}, gem, gem, hub, repo)

	// WebSocket 里进来的玩家动作也交给 GameManager
	hub.OnIncoming = gameMgr.HandlePlayerMessage

	//-------------------------------------------------------
	// 4. Gin + CORS + 路由
	//-------------------------------------------------------
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth")
	{
		ah := auth.NewHandler([]byte(config.C.JWT.Secret))
		authGroup.POST("/guest", ah.Guest)
	}

	secret := []byte(config.C.JWT.Secret)
	authed := r.Group("/", middleware.JwtAuthMiddleware(secret))
	{
		authed.GET("/ws", websocket.ServeWS(hub))

		gh := manager.NewHandler(gameMgr, art)
		authed.POST("/game/new", gh.NewGame)
		authed.GET("/game/state", gh.State)
		authed.POST("/game/round", gh.StartRound)
		authed.POST("/game/action", gh.Action)
		authed.POST("/game/reset", gh.Reset)
		authed.GET("/game/art/:kind", gh.Art)
	}

	//-------------------------------------------------------
	// 5. 启动服务器
	//-------------------------------------------------------
	utils.Log.Info("server running", "port", config.C.Server.Port)
	if err := r.Run(config.C.Server.Port); err != nil {
		utils.Log.Fatal("server exited", "err", err)
	}
}
