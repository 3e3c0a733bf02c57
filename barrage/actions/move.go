package actions

import (
	"artyserver/barrage/broadcast"
	"artyserver/barrage/registry"
	"artyserver/models"

	"go.uber.org/zap"
)

// 手番プレイヤーの移動報告。座標は報告値を信頼し、他のメンバーへ中継する
func handleMove(client *models.Client, msg map[string]interface{}, reg *registry.Registry, logger *zap.Logger) {
	room, p := lockCurrentTurn(client, reg)
	if room == nil {
		return
	}
	defer room.Mu.Unlock()

	x, okX := msg["x"].(float64)
	y, okY := msg["y"].(float64)
	if !okX || !okY {
		logger.Error("Invalid move coordinates", zap.Any("x", msg["x"]), zap.Any("y", msg["y"]))
		return
	}

	p.X = x
	p.Y = y
	reg.Touch(room)

	broadcast.ToRoomExcept(room, client, map[string]interface{}{
		"type":     "playerMoved",
		"playerId": p.ID,
		"x":        x,
		"y":        y,
	}, logger)
}
