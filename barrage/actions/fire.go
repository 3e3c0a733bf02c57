package actions

import (
	"artyserver/barrage/broadcast"
	"artyserver/barrage/registry"
	"artyserver/models"

	"go.uber.org/zap"
)

// 発射イベントを処理する。弾道はサーバー側で再計算せず、
// 記述子をそのままルーム全員へ中継する
func handleFire(client *models.Client, msg map[string]interface{}, reg *registry.Registry, logger *zap.Logger) {
	room, p := lockCurrentTurn(client, reg)
	if room == nil {
		return
	}
	defer room.Mu.Unlock()

	projectile, ok := msg["projectile"].(map[string]interface{})
	if !ok {
		logger.Error("Invalid projectile descriptor", zap.Any("msg", msg))
		return
	}

	// 弾数はサーバー側で管理する。持っていない・撃ち尽くした武器は発射できない
	weapon, _ := projectile["weapon"].(string)
	if weapon != "" {
		uses, owned := p.Inventory[weapon]
		if !owned || uses == 0 {
			return
		}
		if uses > 0 {
			p.Inventory[weapon] = uses - 1
		}
	}

	room.Projectiles = append(room.Projectiles, projectile)
	p.MissedTurns = 0 // 発射はターンの正当な消費にあたる
	reg.Touch(room)

	payload := map[string]interface{}{
		"type":       "projectileUpdate",
		"playerId":   client.ID,
		"projectile": projectile,
	}
	if weapon != "" {
		payload["remaining"] = p.Inventory[weapon]
	}
	broadcast.ToRoom(room, payload, logger)
}
