package actions

import (
	"artyserver/barrage/registry"
	"artyserver/barrage/turns"
	"artyserver/models"

	"go.uber.org/zap"
)

// ゲーム開始要求。オーナー以外や人数不足の要求はturns側で弾かれる
func handleStartGame(client *models.Client, msg map[string]interface{}, reg *registry.Registry, logger *zap.Logger) {
	room, ok := reg.ClientRoom(client)
	if !ok {
		return
	}
	style, _ := msg["mapStyle"].(string)

	room.Mu.Lock()
	started := turns.StartGame(room, style, client.ID, logger)
	reg.Touch(room)
	room.Mu.Unlock()

	if started {
		// 開始したルームはロビー一覧から消える
		reg.NotifyLobby()
	}
}

// 手番プレイヤーによる明示的なターン終了
func handleTurnComplete(client *models.Client, reg *registry.Registry, logger *zap.Logger) {
	room, p := lockCurrentTurn(client, reg)
	if room == nil {
		return
	}
	defer room.Mu.Unlock()

	p.MissedTurns = 0
	reg.Touch(room)
	turns.Advance(room, logger)
}

// 再戦ハンドシェイクの準備完了
func handleReady(client *models.Client, reg *registry.Registry, logger *zap.Logger) {
	room, ok := reg.ClientRoom(client)
	if !ok {
		return
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()
	turns.MarkReady(room, client, logger)
}
