package models

// タイマー付きの補正効果（例: shield）。残りターン数はターン切替のたびに減る
type Effect struct {
	Kind      string  `json:"kind"`
	Remaining int     `json:"remaining"`
	Magnitude float64 `json:"magnitude"`
}

// ゲーム中のプレイヤー表現。ロビー上のClientとは別物で、
// ゲーム開始時に生成されルームがWaitingに戻ると破棄される
type GamePlayer struct {
	ID          string
	Name        string
	Character   string
	X           float64
	Y           float64
	Health      int
	MaxHealth   int
	DamageMult  float64
	MoveSpeed   float64
	Alive       bool
	Effects     []Effect
	MissedTurns int            // 連続でターンを放棄した回数
	Inventory   map[string]int // アイテムIDごとの残り使用回数。-1は無制限
}

// FindEffect は種類で有効な効果を探す。なければnil
func (p *GamePlayer) FindEffect(kind string) *Effect {
	for i := range p.Effects {
		if p.Effects[i].Kind == kind && p.Effects[i].Remaining > 0 {
			return &p.Effects[i]
		}
	}
	return nil
}
