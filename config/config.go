package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	JWT struct {
		Secret string
	}
	Gemini struct {
		APIKey     string
		BaseURL    string
		Model      string
		ImageModel string
		Timeout    time.Duration
	}
	Game struct {
		InitialChips int
		SmallBlind   int
		BigBlind     int
	}
}

var C Config

func Load() {
	viper.SetConfigFile("config/config.yaml")

	// 游戏常量默认值（可被 yaml 覆盖）
	viper.SetDefault("game.initialChips", 1000)
	viper.SetDefault("game.smallBlind", 10)
	viper.SetDefault("game.bigBlind", 20)
	viper.SetDefault("gemini.baseURL", "https://generativelanguage.googleapis.com")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("gemini.imageModel", "imagen-3.0-generate-002")
	viper.SetDefault("gemini.timeout", 20*time.Second)

	// API key 不进 yaml，从环境变量读取
	viper.BindEnv("gemini.apiKey", "GEMINI_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}
	if err := viper.Unmarshal(&C); err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}
}
