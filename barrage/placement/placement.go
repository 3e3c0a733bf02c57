package placement

import (
	"math"

	"artyserver/barrage/roster"
	"artyserver/models"
)

// PlacePlayers はルームの参加者を生成済みマップの上に並べる。
// X座標は参加人数で均等割りし、足場があれば最寄りの足場の中央へスナップする。
// 返り値の順序（＝配置順）がそのままターン順になる
func PlacePlayers(room *models.Room) []*models.GamePlayer {
	n := len(room.Members)
	players := make([]*models.GamePlayer, 0, n)
	for i, member := range room.Members {
		p := roster.NewGamePlayer(member)
		x := float64(models.MapWidth) * float64(i+1) / float64(n+1)
		p.X, p.Y = standingPosition(room.Map, x)
		players = append(players, p)
	}
	return players
}

// 候補Xに対する立ち位置を決める。足場があれば足場の上、なければ地形の上
func standingPosition(m *models.Map, x float64) (float64, float64) {
	if platform := nearestPlatform(m, x); platform != nil {
		cx := platform.X + platform.Width/2
		return cx, platform.Y - models.PlacementClearance
	}
	return x, m.ElevationAt(x) - models.PlacementClearance
}

// 候補Xを水平に含む足場を探し、どれも含まなければ水平距離が最小の足場を返す
func nearestPlatform(m *models.Map, x float64) *models.Platform {
	if len(m.Platforms) == 0 {
		return nil
	}
	var nearest *models.Platform
	best := math.MaxFloat64
	for i := range m.Platforms {
		platform := &m.Platforms[i]
		if x >= platform.X && x <= platform.X+platform.Width {
			return platform
		}
		gap := x - (platform.X + platform.Width)
		if x < platform.X {
			gap = platform.X - x
		}
		if gap < best {
			best = gap
			nearest = platform
		}
	}
	return nearest
}
