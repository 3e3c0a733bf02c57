package barrage

import (
	"net/http"
	"time"

	"artyserver/barrage/actions"
	"artyserver/barrage/broadcast"
	"artyserver/barrage/registry"
	"artyserver/models"

	"go.uber.org/zap"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocket接続へのアップグレードを行う関数。
// 接続ごとに安定した参加者IDを発行し、読み取りとPing/Pongのゴルーチンを起動する
func HandleConnections(w http.ResponseWriter, r *http.Request, reg *registry.Registry, logger *zap.Logger, upgrader websocket.Upgrader) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Error upgrading WebSocket", zap.Error(err))
		http.Error(w, "Error upgrading WebSocket", http.StatusInternalServerError)
		return
	}

	client := &models.Client{
		Conn: conn,
		ID:   uuid.NewString(),
		Name: r.URL.Query().Get("name"),
	}
	reg.AddClient(client)

	// 接続直後に自分のIDと現在のロビー状態を返す
	broadcast.Send(client, map[string]interface{}{
		"type":     "connected",
		"playerId": client.ID,
		"rooms":    reg.AvailableRooms(),
	}, logger)

	// クライアントごとにメッセージ読み取りゴルーチンを起動
	go actions.HandleClient(client, conn, reg, logger)

	// Ping/Pongを管理するゴルーチンを起動
	go maintainConnection(client, conn, logger)
}

// Ping/Pongで接続を監視する。Pongが途絶えると読み取り側がデッドラインで落ち、
// そちらの後始末（退室処理）に合流する
func maintainConnection(client *models.Client, conn *websocket.Conn, logger *zap.Logger) {
	const (
		pingPeriod   = 10 * time.Second
		readDeadline = 60 * time.Second
	)

	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			logger.Info("Ping failed, connection closed", zap.String("clientID", client.ID))
			return
		}
	}
}
