package actions

import (
	"artyserver/barrage/broadcast"
	"artyserver/barrage/registry"
	"artyserver/barrage/roster"
	"artyserver/models"

	"go.uber.org/zap"
)

// アイテム使用要求を処理する。種類ごとに効果を適用し、
// 結果（体力・座標・効果）をルーム全員へ通知する
func handleUseItem(client *models.Client, msg map[string]interface{}, reg *registry.Registry, logger *zap.Logger) {
	room, p := lockCurrentTurn(client, reg)
	if room == nil {
		return
	}
	defer room.Mu.Unlock()

	itemID, ok := msg["itemId"].(string)
	if !ok {
		return
	}
	uses, owned := p.Inventory[itemID]
	if !owned || uses == 0 {
		return
	}

	switch itemID {
	case roster.ItemHeal:
		p.Health += roster.HealAmount
		if p.Health > p.MaxHealth {
			p.Health = p.MaxHealth
		}
	case roster.ItemShield:
		p.Effects = append(p.Effects, models.Effect{
			Kind:      roster.ItemShield,
			Remaining: roster.ShieldDuration,
			Magnitude: roster.ShieldMagnitude,
		})
	case roster.ItemTeleport:
		// 移動先の正当性は確認しない。報告値をそのまま採用する
		params, ok := msg["params"].(map[string]interface{})
		if !ok {
			return
		}
		x, okX := params["x"].(float64)
		y, okY := params["y"].(float64)
		if !okX || !okY {
			return
		}
		p.X = x
		p.Y = y
	default:
		// 武器類はfireで消費されるのでここでは扱わない
		return
	}

	if uses > 0 {
		p.Inventory[itemID] = uses - 1
	}
	p.MissedTurns = 0
	reg.Touch(room)

	broadcast.ToRoom(room, map[string]interface{}{
		"type":      "itemUsed",
		"playerId":  p.ID,
		"itemId":    itemID,
		"health":    p.Health,
		"x":         p.X,
		"y":         p.Y,
		"effects":   p.Effects,
		"remaining": p.Inventory[itemID],
	}, logger)
}
