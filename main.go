package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"artyserver/barrage"  // ゲームロジックとWebSocketハンドラ
	"artyserver/barrage/registry"
	"artyserver/models"  // モデル定義
	"artyserver/utils"   // ロガーの初期化とCronジョブ（放置ルームの掃除）

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// 設定ファイルを読み込む。ファイルがなければデフォルト値で起動する
func loadConfig(filename string, logger *zap.Logger) models.Config {
	var config models.Config
	configFile, err := os.Open(filename)
	if err != nil {
		logger.Info("Config file not found, using defaults", zap.String("filename", filename))
		config.ApplyDefaults()
		return config
	}
	defer configFile.Close()

	jsonParser := json.NewDecoder(configFile)
	if err := jsonParser.Decode(&config); err != nil {
		logger.Error("Failed to parse config file", zap.Error(err))
	}
	config.ApplyDefaults()
	return config
}

func main() {
	var logger *zap.Logger
	var err error
	logger, err = utils.InitLogger() // ロガーの初期化
	if err != nil {
		panic(err) // 失敗した場合はプログラム停止
	}
	defer logger.Sync() // ロガーのクリーンアップ

	config := loadConfig("config.json", logger)

	// ルーム表・クライアント表を持つレジストリを初期化
	reg := registry.New(logger)

	// Websocket接続で用いるアップグレーダを初期化
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	// クーロンスケジューラのセットアップと呼び出し
	go utils.CronCleaner(reg, time.Duration(config.RoomIdleMinutes)*time.Minute, logger)

	router := gin.Default()
	//リクエストロガーを起動
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	//CORS（Cross-Origin Resource Sharing）ポリシーを設定
	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	//各HTTPリクエストのルーティング
	router.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": reg.AvailableRooms()})
	})
	router.GET("/ws", func(c *gin.Context) {
		barrage.HandleConnections(c.Writer, c.Request, reg, logger, upgrader)
	})

	if err := router.Run(config.ListenAddr); err != nil {
		logger.Fatal("Failed to run server", zap.Error(err))
	}
}
