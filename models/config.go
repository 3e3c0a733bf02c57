package models

// Config 構造体はサーバーの起動設定を保持します。
type Config struct {
	ListenAddr      string   `json:"listen_addr"`       // 例: ":8080"
	AllowedOrigins  []string `json:"allowed_origins"`   // CORSで許可するオリジン
	RoomIdleMinutes int      `json:"room_idle_minutes"` // 放置ルームを掃除するまでの分数
}

// 設定ファイルに項目がない場合のデフォルト値を補う
func (c *Config) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RoomIdleMinutes <= 0 {
		c.RoomIdleMinutes = 30
	}
}
