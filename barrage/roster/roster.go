package roster

import (
	"artyserver/models"
)

// アイテム・武器の識別子
const (
	ItemBazooka  = "bazooka"
	ItemGrenade  = "grenade"
	ItemMortar   = "mortar"
	ItemCluster  = "cluster"
	ItemHeal     = "heal"
	ItemShield   = "shield"
	ItemTeleport = "teleport"
)

// アイテム効果の固定パラメータ
const (
	HealAmount      = 35
	ShieldMagnitude = 0.5
	ShieldDuration  = 2 // ターン数
)

// キャラクターの初期ステータスと初期装備の定義
type CharacterSpec struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	MaxHealth  int            `json:"maxHealth"`
	DamageMult float64        `json:"damageMult"`
	MoveSpeed  float64        `json:"moveSpeed"`
	Loadout    map[string]int `json:"loadout"` // -1は無制限
}

const DefaultCharacter = "striker"

// キャラクターカタログ。順序はクライアントの選択画面の表示順
var characters = []CharacterSpec{
	{
		ID: "striker", Name: "Striker",
		MaxHealth: 100, DamageMult: 1.0, MoveSpeed: 1.0,
		Loadout: map[string]int{
			ItemBazooka: -1, ItemGrenade: 10,
			ItemHeal: 2, ItemShield: 2, ItemTeleport: 1,
		},
	},
	{
		ID: "juggernaut", Name: "Juggernaut",
		MaxHealth: 130, DamageMult: 0.9, MoveSpeed: 0.8,
		Loadout: map[string]int{
			ItemBazooka: -1, ItemMortar: 8,
			ItemHeal: 2, ItemShield: 3, ItemTeleport: 1,
		},
	},
	{
		ID: "scout", Name: "Scout",
		MaxHealth: 80, DamageMult: 1.1, MoveSpeed: 1.3,
		Loadout: map[string]int{
			ItemBazooka: -1, ItemCluster: 6,
			ItemHeal: 3, ItemShield: 1, ItemTeleport: 2,
		},
	},
}

// Characters はカタログのコピーを返す
func Characters() []CharacterSpec {
	out := make([]CharacterSpec, len(characters))
	copy(out, characters)
	return out
}

// Lookup はキャラクターIDから定義を引く。未知のIDはデフォルトにフォールバック
func Lookup(id string) CharacterSpec {
	for _, spec := range characters {
		if spec.ID == id {
			return spec
		}
	}
	return Lookup(DefaultCharacter)
}

// NewGamePlayer は参加者からゲーム中プレイヤーを初期化する。
// 座標は配置側で決めるためここでは設定しない
func NewGamePlayer(c *models.Client) *models.GamePlayer {
	spec := Lookup(c.Character)
	inventory := make(map[string]int, len(spec.Loadout))
	for item, uses := range spec.Loadout {
		inventory[item] = uses
	}
	return &models.GamePlayer{
		ID:         c.ID,
		Name:       c.Name,
		Character:  spec.ID,
		Health:     spec.MaxHealth,
		MaxHealth:  spec.MaxHealth,
		DamageMult: spec.DamageMult,
		MoveSpeed:  spec.MoveSpeed,
		Alive:      true,
		Inventory:  inventory,
	}
}
