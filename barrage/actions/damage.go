package actions

import (
	"math"

	"artyserver/barrage/broadcast"
	"artyserver/barrage/registry"
	"artyserver/barrage/roster"
	"artyserver/barrage/turns"
	"artyserver/models"

	"go.uber.org/zap"
)

// 着弾クライアントからのダメージ報告を処理する。
// 命中判定もダメージ量も報告値を信頼する。対象が既に脱落している場合は何もしない
func handleDamage(client *models.Client, msg map[string]interface{}, reg *registry.Registry, logger *zap.Logger) {
	room, ok := reg.ClientRoom(client)
	if !ok {
		return
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Status != models.StatusPlaying {
		return
	}

	targetID, okID := msg["targetId"].(string)
	rawDamage, okDamage := msg["damage"].(float64)
	if !okID || !okDamage {
		logger.Error("Invalid damage report", zap.Any("msg", msg))
		return
	}

	target := room.Player(targetID)
	if target == nil || !target.Alive {
		return
	}

	// shield効果は被ダメージを割合で軽減し、最近接の整数へ丸める
	effective := rawDamage
	if shield := target.FindEffect(roster.ItemShield); shield != nil {
		effective = rawDamage * (1 - shield.Magnitude)
	}
	damage := int(math.Round(effective))

	target.Health -= damage
	if target.Health < 0 {
		target.Health = 0
	}
	reg.Touch(room)

	if target.Health == 0 {
		target.Alive = false
		broadcast.ToRoom(room, map[string]interface{}{
			"type":       "playerKilled",
			"playerId":   target.ID,
			"attackerId": client.ID,
		}, logger)
		logger.Info("Player killed",
			zap.String("roomID", room.ID),
			zap.String("playerID", target.ID),
			zap.String("attackerID", client.ID),
		)
		if turns.CheckGameOver(room, logger) {
			return
		}
		// 手番プレイヤーが自爆などで脱落した場合はターンを進める
		if room.CurrentTurn == target.ID {
			turns.Advance(room, logger)
		}
		return
	}

	broadcast.ToRoom(room, map[string]interface{}{
		"type":     "playerDamaged",
		"playerId": target.ID,
		"damage":   damage,
		"health":   target.Health,
	}, logger)
}
