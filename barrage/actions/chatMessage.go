package actions

import (
	"time"

	"artyserver/barrage/broadcast"
	"artyserver/barrage/registry"
	"artyserver/models"

	"go.uber.org/zap"
)

// チャットメッセージを処理する関数。中身には関与せずルーム全員へ中継する
func handleChatMessage(client *models.Client, msg map[string]interface{}, reg *registry.Registry, logger *zap.Logger) {
	room, ok := reg.ClientRoom(client)
	if !ok {
		return
	}
	chatMessage, ok := msg["message"].(string)
	if !ok {
		return
	}

	timestamp := time.Now().Format(time.RFC3339)

	room.Mu.Lock()
	defer room.Mu.Unlock()
	broadcast.ToRoom(room, map[string]interface{}{
		"type":      "chatMessage",
		"message":   chatMessage,
		"from":      client.ID,
		"fromName":  client.Name,
		"timestamp": timestamp,
	}, logger)
}
