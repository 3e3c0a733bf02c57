package actions

import (
	"encoding/json"

	"artyserver/barrage/registry"
	"artyserver/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Helper function to send error message to the client via WebSocket
func sendErrorMessage(client *models.Client, errorMessage string) {
	errorResponse := map[string]string{"error": errorMessage}
	errorJSON, _ := json.Marshal(errorResponse)
	client.Conn.WriteMessage(websocket.TextMessage, errorJSON) // Ignoring error for simplicity
}

// HandleClient はクライアントごとのメッセージ読み取りゴルーチン。
// 接続が切れたら退室処理まで済ませて終了する
func HandleClient(client *models.Client, conn *websocket.Conn, reg *registry.Registry, logger *zap.Logger) {
	defer func() {
		conn.Close()
		reg.RemoveClient(client)
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		// 受信したメッセージをJSON形式でデコード
		var msg map[string]interface{}
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Error("Error decoding message", zap.Error(err))
			continue
		}

		dispatch(client, msg, reg, logger)
	}
}

// メッセージタイプに基づいて適切なアクションを実行する。
// ハンドラ内の想定外の失敗はここで握りつぶし、他のルームや接続へ波及させない
func dispatch(client *models.Client, msg map[string]interface{}, reg *registry.Registry, logger *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from action handler panic", zap.Any("panic", r), zap.Any("msg", msg))
		}
	}()

	msgType, _ := msg["type"].(string)
	switch msgType {
	case "createRoom":
		handleCreateRoom(client, msg, reg, logger)
	case "joinRoom":
		handleJoinRoom(client, msg, reg, logger)
	case "leaveRoom":
		handleLeaveRoom(client, reg, logger)
	case "listRooms":
		handleListRooms(client, reg, logger)
	case "startGame":
		handleStartGame(client, msg, reg, logger)
	case "fire":
		handleFire(client, msg, reg, logger)
	case "damageReport":
		handleDamage(client, msg, reg, logger)
	case "movePlayer":
		handleMove(client, msg, reg, logger)
	case "useItem":
		handleUseItem(client, msg, reg, logger)
	case "modifyTerrain":
		handleModifyTerrain(client, msg, reg, logger)
	case "turnComplete":
		handleTurnComplete(client, reg, logger)
	case "readyForNewGame":
		handleReady(client, reg, logger)
	case "chatMessage":
		handleChatMessage(client, msg, reg, logger)
	default:
		logger.Info("Received unknown message type", zap.Any("message", msg))
	}
}

// 手番アクションの共通判定。通った場合はロックを保持したままルームと
// 手番プレイヤーを返し、呼び出し側がUnlockする。
// 手番でない・ゲーム中でないなどの要求は応答を返さず黙って無視する
func lockCurrentTurn(client *models.Client, reg *registry.Registry) (*models.Room, *models.GamePlayer) {
	room, ok := reg.ClientRoom(client)
	if !ok {
		return nil, nil
	}
	room.Mu.Lock()
	if room.Status != models.StatusPlaying || room.CurrentTurn != client.ID {
		room.Mu.Unlock()
		return nil, nil
	}
	p := room.Player(client.ID)
	if p == nil || !p.Alive {
		room.Mu.Unlock()
		return nil, nil
	}
	return room, p
}
