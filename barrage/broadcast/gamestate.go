package broadcast

import (
	"encoding/json"

	"artyserver/barrage/roster"
	"artyserver/models"

	"go.uber.org/zap"

	"github.com/gorilla/websocket"
)

// Send は単一クライアントへペイロードを送る。配送は投げっぱなしで失敗はログのみ
func Send(c *models.Client, payload map[string]interface{}, logger *zap.Logger) {
	if c == nil || c.Conn == nil {
		return
	}
	messageJSON, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal payload", zap.Error(err))
		return
	}
	if err := c.Conn.WriteMessage(websocket.TextMessage, messageJSON); err != nil {
		logger.Error("Failed to send message", zap.String("to", c.ID), zap.Error(err))
	}
}

// ToRoom はルームの全メンバーへブロードキャストする
func ToRoom(room *models.Room, payload map[string]interface{}, logger *zap.Logger) {
	for _, member := range room.Members {
		Send(member, payload, logger)
	}
}

// ToRoomExcept は指定クライアント以外のメンバーへブロードキャストする
func ToRoomExcept(room *models.Room, except *models.Client, payload map[string]interface{}, logger *zap.Logger) {
	for _, member := range room.Members {
		if member != except {
			Send(member, payload, logger)
		}
	}
}

// ToClients はルームに関係なく任意のクライアント集合へ送る（ロビー通知用）
func ToClients(clients []*models.Client, payload map[string]interface{}, logger *zap.Logger) {
	for _, c := range clients {
		Send(c, payload, logger)
	}
}

// PlayersInfo はゲーム中プレイヤーの一覧をペイロード向けに変換する
func PlayersInfo(room *models.Room) []map[string]interface{} {
	playersInfo := make([]map[string]interface{}, 0, len(room.Players))
	for _, p := range room.Players {
		if p == nil {
			continue
		}
		playersInfo = append(playersInfo, map[string]interface{}{
			"id":        p.ID,
			"name":      p.Name,
			"character": p.Character,
			"x":         p.X,
			"y":         p.Y,
			"health":    p.Health,
			"maxHealth": p.MaxHealth,
			"alive":     p.Alive,
			"effects":   p.Effects,
		})
	}
	return playersInfo
}

// MembersInfo はロビー上のメンバー一覧をペイロード向けに変換する
func MembersInfo(room *models.Room) []map[string]interface{} {
	membersInfo := make([]map[string]interface{}, 0, len(room.Members))
	for _, member := range room.Members {
		membersInfo = append(membersInfo, map[string]interface{}{
			"id":        member.ID,
			"name":      member.Name,
			"character": member.Character,
			"isOwner":   member.ID == room.OwnerID,
		})
	}
	return membersInfo
}

// GameStarted はゲーム開始（再戦含む）をルーム全員に通知する
func GameStarted(room *models.Room, logger *zap.Logger) {
	ToRoom(room, map[string]interface{}{
		"type":        "gameStarted",
		"map":         room.Map,
		"mapStyle":    room.MapStyle,
		"players":     PlayersInfo(room),
		"currentTurn": room.CurrentTurn,
		"turnTime":    models.TurnSeconds,
		"wind":        room.Wind,
		"characters":  roster.Characters(),
	}, logger)
}

// TurnChanged は手番の切り替えをルーム全員に通知する
func TurnChanged(room *models.Room, logger *zap.Logger) {
	ToRoom(room, map[string]interface{}{
		"type":     "turnChanged",
		"playerId": room.CurrentTurn,
		"wind":     room.Wind,
		"turnTime": models.TurnSeconds,
	}, logger)
}

// TurnTimeUpdate は残り時間を通知する。呼び出し側で間引かれる
func TurnTimeUpdate(room *models.Room, remaining int, logger *zap.Logger) {
	ToRoom(room, map[string]interface{}{
		"type":          "turnTimeUpdate",
		"currentTurn":   room.CurrentTurn,
		"remainingTime": remaining,
	}, logger)
}

// GameOver は決着をルーム全員に通知する。引き分けの場合winnerはnil
func GameOver(room *models.Room, winner *models.GamePlayer, logger *zap.Logger) {
	payload := map[string]interface{}{
		"type":   "gameOver",
		"winner": nil,
	}
	if winner != nil {
		payload["winner"] = map[string]interface{}{
			"id":   winner.ID,
			"name": winner.Name,
		}
	}
	ToRoom(room, payload, logger)
}
