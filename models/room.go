package models

import (
	"sync"
	"time"
)

// RoomStatus はルームの状態を表す列挙型。
// 状態遷移は registry と turns パッケージの関数のみが行う
type RoomStatus int

const (
	StatusWaiting RoomStatus = iota // 参加者待ち
	StatusPlaying                   // ゲーム進行中
)

func (s RoomStatus) String() string {
	if s == StatusPlaying {
		return "playing"
	}
	return "waiting"
}

// ゲーム全体で共有する固定パラメータ
const (
	MaxPlayersPerRoom = 4
	MinPlayersToStart = 2

	MapWidth        = 3000
	MapHeight       = 1500
	TerrainSegments = 100 // 標高プロファイルのサンプル数（点の数は+1）

	TurnSeconds        = 30
	WatchTickSeconds   = 1
	TimeUpdateInterval = 5 // 残り時間の通知はこのtick数ごとに間引く
	MissedTurnLimit    = 2 // 連続でターンを放棄するとこの回数で脱落
	WindRange          = 10.0
	PlacementClearance = 40.0 // 地面・足場の上に確保する隙間

	RestartDelaySeconds = 3
)

// 各ルームのインスタンス。ゲーム中の状態もここに集約される
type Room struct {
	// ルーム内の状態変更を直列化するロック。
	// アクション処理・デッドライン監視・再戦タイマーはすべてこれを取ってから触る
	Mu sync.Mutex

	ID       string
	OwnerID  string
	Members  []*Client // 参加順
	Status   RoomStatus
	MapStyle string

	Map          *Map          // Waiting中はnil
	Players      []*GamePlayer // 配置順。Waitingに戻ると破棄される
	CurrentTurn  string        // 手番プレイヤーのID。Waiting中は空文字
	TurnDeadline time.Time
	TurnSerial   uint64 // ターンごとに加算。古いタイマーの失効判定に使用
	Wind         float64
	Projectiles  []map[string]interface{} // ターン中の発射体。ターン切替でクリア

	HadGame      bool          // このルームで一度でもゲームが決着したらtrue
	LastActive   time.Time
	WatchStop    chan struct{} // 実行中のデッドライン監視を止めるチャンネル
	RestartTimer *time.Timer   // 自動再戦の遅延タイマー
}

// Member は参加順リストからIDでクライアントを引く
func (r *Room) Member(id string) *Client {
	for _, c := range r.Members {
		if c != nil && c.ID == id {
			return c
		}
	}
	return nil
}

// Player はゲーム中プレイヤーをIDで引く。見つからなければnil
func (r *Room) Player(id string) *GamePlayer {
	for _, p := range r.Players {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

// AliveCount は生存中のゲームプレイヤー数を返す
func (r *Room) AliveCount() int {
	n := 0
	for _, p := range r.Players {
		if p != nil && p.Alive {
			n++
		}
	}
	return n
}
