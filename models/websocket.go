package models

import (
	"github.com/gorilla/websocket"
)

// ブロードキャストに必要な最小限のWebSocket操作。テストではフェイク実装に差し替える
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// Websocketクライアント（＝ロビー上の参加者）を定義。
// どのルームに居るかはレジストリ側の表が持ち、ここには置かない
type Client struct {
	Conn      Conn
	ID        string // 接続ごとに発行されるUUID
	Name      string
	Character string // 選択中のキャラクターID
	Ready     bool   // 再戦ハンドシェイク用の準備フラグ
}
