package models

// 標高プロファイルのサンプル点。Yは画面座標（小さいほど高い）
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PlatformKind string

const (
	PlatformRegular       PlatformKind = "regular"
	PlatformSteppingStone PlatformKind = "stepping_stone"
)

// 浮遊足場。Yは足場の上面
type Platform struct {
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Kind   PlatformKind `json:"kind"`
}

// 生成された地形。ゲーム開始・再戦のたびに作り直され、ゲーム中は破壊演出の報告でのみ書き換わる
type Map struct {
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Elevation []Point    `json:"elevation"`
	Platforms []Platform `json:"platforms"`
}

// ElevationAt は指定Xに最も近いサンプル点の標高を返す
func (m *Map) ElevationAt(x float64) float64 {
	if len(m.Elevation) == 0 {
		return float64(m.Height)
	}
	nearest := m.Elevation[0]
	best := -1.0
	for _, p := range m.Elevation {
		d := p.X - x
		if d < 0 {
			d = -d
		}
		if best < 0 || d < best {
			best = d
			nearest = p
		}
	}
	return nearest.Y
}
