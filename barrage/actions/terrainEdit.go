package actions

import (
	"artyserver/barrage/broadcast"
	"artyserver/barrage/registry"
	"artyserver/models"

	"go.uber.org/zap"
)

// 破壊演出による地形変更の報告を処理する。
// 提出されたジオメトリは検証せずそのまま保存し、全員の画面を揃えるために中継する
func handleModifyTerrain(client *models.Client, msg map[string]interface{}, reg *registry.Registry, logger *zap.Logger) {
	room, ok := reg.ClientRoom(client)
	if !ok {
		return
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Status != models.StatusPlaying || room.Map == nil {
		return
	}

	changed := false
	if rawElevation, ok := msg["elevation"].([]interface{}); ok {
		if elevation := decodePoints(rawElevation); elevation != nil {
			room.Map.Elevation = elevation
			changed = true
		}
	}
	if rawPlatforms, ok := msg["platforms"].([]interface{}); ok {
		if platforms := decodePlatforms(rawPlatforms); platforms != nil {
			room.Map.Platforms = platforms
			changed = true
		}
	}
	if !changed {
		return
	}
	reg.Touch(room)

	broadcast.ToRoom(room, map[string]interface{}{
		"type":      "terrainModified",
		"elevation": room.Map.Elevation,
		"platforms": room.Map.Platforms,
	}, logger)
}

// JSONのままの座標列をモデルに詰め替える。形式が崩れていたらnil
func decodePoints(raw []interface{}) []models.Point {
	points := make([]models.Point, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil
		}
		x, okX := obj["x"].(float64)
		y, okY := obj["y"].(float64)
		if !okX || !okY {
			return nil
		}
		points = append(points, models.Point{X: x, Y: y})
	}
	return points
}

func decodePlatforms(raw []interface{}) []models.Platform {
	platforms := make([]models.Platform, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil
		}
		x, okX := obj["x"].(float64)
		y, okY := obj["y"].(float64)
		width, okW := obj["width"].(float64)
		height, okH := obj["height"].(float64)
		if !okX || !okY || !okW || !okH {
			return nil
		}
		kind := models.PlatformRegular
		if s, ok := obj["kind"].(string); ok && s == string(models.PlatformSteppingStone) {
			kind = models.PlatformSteppingStone
		}
		platforms = append(platforms, models.Platform{X: x, Y: y, Width: width, Height: height, Kind: kind})
	}
	return platforms
}
