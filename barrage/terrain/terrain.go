package terrain

import (
	"math"
	"math/rand"
	"time"

	"artyserver/models"
)

// マップスタイルの識別子。不明なスタイルはrollingにフォールバックする
const (
	StyleRolling   = "rolling"
	StyleJagged    = "jagged"
	StyleCanyon    = "canyon"
	StyleIslands   = "islands"
	StyleComposite = "composite"
)

// Styles はクライアントに提示できるスタイル一覧を返す
func Styles() []string {
	return []string{StyleRolling, StyleJagged, StyleCanyon, StyleIslands, StyleComposite}
}

// 乱数は台地・谷の配置や足場のサイズ決定に使用
func createLocalRandGenerator() *rand.Rand {
	source := rand.NewSource(time.Now().UnixNano())
	return rand.New(source)
}

// Generate は指定スタイルの地形を生成する。
// 形の系統はスタイルごとに決まっているが、細部は乱数で毎回変わる
func Generate(style string) *models.Map {
	randGen := createLocalRandGenerator()
	m := &models.Map{
		Width:  models.MapWidth,
		Height: models.MapHeight,
	}

	switch style {
	case StyleJagged:
		m.Elevation = generateJagged(randGen)
	case StyleCanyon:
		m.Elevation = generateCanyon(randGen)
	case StyleIslands:
		m.Elevation = generateFloor()
		m.Platforms = generateIslandPlatforms(randGen)
	case StyleComposite:
		m.Elevation = generateComposite(randGen)
		m.Platforms = generateCompositePlatforms(randGen)
	default:
		m.Elevation = generateRolling(randGen)
	}

	clampElevation(m.Elevation)
	return m
}

// サンプル点のX座標。セグメント数は固定
func sampleX(i int) float64 {
	return float64(models.MapWidth) * float64(i) / float64(models.TerrainSegments)
}

// なだらかな低周波の起伏。足場なし
func generateRolling(randGen *rand.Rand) []models.Point {
	base := float64(models.MapHeight) * 0.72
	amp := 100.0 + randGen.Float64()*60.0
	phase := randGen.Float64() * 2 * math.Pi

	points := make([]models.Point, models.TerrainSegments+1)
	for i := range points {
		t := float64(i) / float64(models.TerrainSegments)
		y := base + amp*math.Sin(t*2*math.Pi*1.5+phase)
		points[i] = models.Point{X: sampleX(i), Y: y}
	}
	return points
}

// 振幅の大きい多重周波の起伏に、一定間隔で台地を挟む
func generateJagged(randGen *rand.Rand) []models.Point {
	base := float64(models.MapHeight) * 0.68
	phase := randGen.Float64() * 2 * math.Pi

	points := make([]models.Point, models.TerrainSegments+1)
	for i := range points {
		t := float64(i) / float64(models.TerrainSegments)
		y := base +
			180.0*math.Sin(t*2*math.Pi*2.0+phase) +
			90.0*math.Sin(t*2*math.Pi*5.0+phase*1.7) +
			40.0*math.Sin(t*2*math.Pi*11.0+phase*0.3)
		points[i] = models.Point{X: sampleX(i), Y: y}
	}

	// 約15セグメントごとに数点を平らにして台地を作る
	plateauEvery := 15
	for start := plateauEvery; start < models.TerrainSegments; start += plateauEvery {
		width := 3 + randGen.Intn(3)
		level := points[start].Y
		for i := start; i <= start+width && i < len(points); i++ {
			points[i].Y = level
		}
	}
	return points
}

// 中央3分の1は低い平坦な谷底、両側は高い土手、境界は斜面で繋ぐ
func generateCanyon(randGen *rand.Rand) []models.Point {
	bankLevel := float64(models.MapHeight)*0.52 + randGen.Float64()*80.0
	floorLevel := float64(models.MapHeight)*0.85 + randGen.Float64()*40.0
	third := models.TerrainSegments / 3
	slopeWidth := 5

	points := make([]models.Point, models.TerrainSegments+1)
	for i := range points {
		var y float64
		switch {
		case i < third-slopeWidth || i > 2*third+slopeWidth:
			y = bankLevel
		case i >= third && i <= 2*third:
			y = floorLevel
		case i < third:
			// 左側の斜面
			t := float64(i-(third-slopeWidth)) / float64(slopeWidth)
			y = bankLevel + (floorLevel-bankLevel)*t
		default:
			// 右側の斜面
			t := float64(i-2*third) / float64(slopeWidth)
			y = floorLevel + (bankLevel-floorLevel)*t
		}
		points[i] = models.Point{X: sampleX(i), Y: y}
	}
	return points
}

// islandsスタイルの床。実質的にただの低い平面
func generateFloor() []models.Point {
	floorLevel := float64(models.MapHeight) - 60.0
	points := make([]models.Point, models.TerrainSegments+1)
	for i := range points {
		points[i] = models.Point{X: sampleX(i), Y: floorLevel}
	}
	return points
}

// 高さの異なる浮遊足場を4〜6個、横幅全体に分散させる
func generateIslandPlatforms(randGen *rand.Rand) []models.Platform {
	count := 4 + randGen.Intn(3)
	platforms := make([]models.Platform, 0, count)
	span := float64(models.MapWidth) / float64(count)
	for i := 0; i < count; i++ {
		width := 220.0 + randGen.Float64()*140.0
		x := span*float64(i) + (span-width)*randGen.Float64()
		y := float64(models.MapHeight)*0.35 + randGen.Float64()*float64(models.MapHeight)*0.3
		platforms = append(platforms, models.Platform{
			X:      x,
			Y:      y,
			Width:  width,
			Height: 40,
			Kind:   models.PlatformRegular,
		})
	}
	return platforms
}

// 複数周波のノイズ重ね合わせ＋周期的な谷・台地の摂動
func generateComposite(randGen *rand.Rand) []models.Point {
	base := float64(models.MapHeight) * 0.75
	phase := randGen.Float64() * 2 * math.Pi

	points := make([]models.Point, models.TerrainSegments+1)
	for i := range points {
		t := float64(i) / float64(models.TerrainSegments)
		y := base +
			120.0*math.Sin(t*2*math.Pi*1.2+phase) +
			60.0*math.Sin(t*2*math.Pi*3.7+phase*2.1) +
			25.0*math.Sin(t*2*math.Pi*9.0+phase*0.6)
		points[i] = models.Point{X: sampleX(i), Y: y}
	}

	// 周期的に谷と台地を交互に差し込む
	every := 20
	dig := true
	for start := every; start < models.TerrainSegments; start += every {
		width := 4 + randGen.Intn(4)
		delta := 80.0 + randGen.Float64()*80.0
		if !dig {
			delta = -delta
		}
		for i := start; i <= start+width && i < len(points); i++ {
			points[i].Y += delta
		}
		dig = !dig
	}
	return points
}

// 大きめの足場と小さな飛び石の両方を置く。islandsより密度が高い
func generateCompositePlatforms(randGen *rand.Rand) []models.Platform {
	platforms := make([]models.Platform, 0, 10)

	large := 2 + randGen.Intn(2)
	for i := 0; i < large; i++ {
		width := 260.0 + randGen.Float64()*160.0
		platforms = append(platforms, models.Platform{
			X:      randGen.Float64() * (float64(models.MapWidth) - width),
			Y:      float64(models.MapHeight)*0.3 + randGen.Float64()*float64(models.MapHeight)*0.25,
			Width:  width,
			Height: 40,
			Kind:   models.PlatformRegular,
		})
	}

	stones := 4 + randGen.Intn(3)
	for i := 0; i < stones; i++ {
		width := 60.0 + randGen.Float64()*50.0
		platforms = append(platforms, models.Platform{
			X:      randGen.Float64() * (float64(models.MapWidth) - width),
			Y:      float64(models.MapHeight)*0.4 + randGen.Float64()*float64(models.MapHeight)*0.35,
			Width:  width,
			Height: 20,
			Kind:   models.PlatformSteppingStone,
		})
	}
	return platforms
}

// 標高がマップの範囲からはみ出さないように抑える
func clampElevation(points []models.Point) {
	for i := range points {
		if points[i].Y < 100 {
			points[i].Y = 100
		}
		if points[i].Y > float64(models.MapHeight)-20 {
			points[i].Y = float64(models.MapHeight) - 20
		}
	}
}
