package placement

import (
	"testing"

	"artyserver/barrage/terrain"
	"artyserver/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRoom(m *models.Map, names ...string) *models.Room {
	room := &models.Room{ID: "TEST01", Status: models.StatusPlaying, Map: m}
	for _, name := range names {
		room.Members = append(room.Members, &models.Client{
			ID:        name,
			Name:      name,
			Character: "striker",
		})
	}
	return room
}

func TestPlacePlayersEvenSpacing(t *testing.T) {
	room := buildRoom(terrain.Generate(terrain.StyleRolling), "p1", "p2", "p3")

	players := PlacePlayers(room)
	require.Len(t, players, 3)

	for i, p := range players {
		expectedX := float64(models.MapWidth) * float64(i+1) / 4.0
		assert.Equal(t, expectedX, p.X)
		// 地形の上に隙間を空けて立つ
		assert.Equal(t, room.Map.ElevationAt(expectedX)-models.PlacementClearance, p.Y)
	}
}

func TestPlacePlayersInitialized(t *testing.T) {
	room := buildRoom(terrain.Generate(terrain.StyleRolling), "p1", "p2")

	players := PlacePlayers(room)
	for _, p := range players {
		assert.True(t, p.Alive)
		assert.Equal(t, p.MaxHealth, p.Health)
		assert.NotEmpty(t, p.Inventory)
		assert.Zero(t, p.MissedTurns)
	}
}

func TestPlacePlayersSnapToPlatforms(t *testing.T) {
	room := buildRoom(terrain.Generate(terrain.StyleIslands), "p1", "p2", "p3", "p4")

	players := PlacePlayers(room)
	require.Len(t, players, 4)

	for _, p := range players {
		found := false
		for _, platform := range room.Map.Platforms {
			if p.Y == platform.Y-models.PlacementClearance && p.X == platform.X+platform.Width/2 {
				found = true
				break
			}
		}
		assert.True(t, found, "player %s should stand on a platform (x=%v y=%v)", p.ID, p.X, p.Y)
	}
}

func TestPlacePlayersNearestPlatformFallback(t *testing.T) {
	// 候補Xをどの足場も含まない配置にして、水平距離が最小の足場が選ばれることを見る
	m := &models.Map{
		Width:  models.MapWidth,
		Height: models.MapHeight,
		Elevation: []models.Point{
			{X: 0, Y: 1400}, {X: models.MapWidth, Y: 1400},
		},
		Platforms: []models.Platform{
			{X: 100, Y: 800, Width: 100, Height: 40, Kind: models.PlatformRegular},
			{X: 2800, Y: 600, Width: 100, Height: 40, Kind: models.PlatformRegular},
		},
	}
	room := buildRoom(m, "p1")

	players := PlacePlayers(room)
	require.Len(t, players, 1)

	// 候補X=1500。左の足場（端まで1400-200=1300）が右（2800-1500=1300）と同距離か僅差なので
	// どちらかの足場の中央に立っていればよい
	p := players[0]
	onLeft := p.X == 150.0 && p.Y == 800-models.PlacementClearance
	onRight := p.X == 2850.0 && p.Y == 600-models.PlacementClearance
	assert.True(t, onLeft || onRight, "player should snap to one of the platforms (x=%v y=%v)", p.X, p.Y)
}
