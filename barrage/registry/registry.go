package registry

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"artyserver/barrage/broadcast"
	"artyserver/barrage/turns"
	"artyserver/models"

	"go.uber.org/zap"
)

// 入室要求が拒否されたときの理由。呼び出し元で応答ペイロードに変換される
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room full")
	ErrAlreadyStarted = errors.New("game already started")
)

// Registry はプロセス全体のルーム表と接続中クライアント表を持つ。
// グローバル変数ではなく、mainで生成して各ハンドラへ渡す。
// どのクライアントがどのルームに居るかはレジストリだけが記録し、
// 読み書きは必ずreg.muの下で行う
type Registry struct {
	mu          sync.RWMutex
	rooms       map[string]*models.Room
	clients     map[string]*models.Client
	clientRooms map[string]string // クライアントID -> 入室中のルームID
	logger      *zap.Logger
	randGen     *rand.Rand
}

func New(logger *zap.Logger) *Registry {
	return &Registry{
		rooms:       make(map[string]*models.Room),
		clients:     make(map[string]*models.Client),
		clientRooms: make(map[string]string),
		logger:      logger,
		randGen:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AddClient は接続確立時にクライアントを登録する
func (reg *Registry) AddClient(c *models.Client) {
	reg.mu.Lock()
	reg.clients[c.ID] = c
	reg.mu.Unlock()
	reg.logger.Info("New client added", zap.String("clientID", c.ID))
}

// RemoveClient は切断時の後始末。入室中であれば退室処理も行う
func (reg *Registry) RemoveClient(c *models.Client) {
	reg.LeaveRoom(c)
	reg.mu.Lock()
	delete(reg.clients, c.ID)
	reg.mu.Unlock()
	reg.logger.Info("Client removed", zap.String("clientID", c.ID))
}

// Room はIDでルームを引く
func (reg *Registry) Room(id string) (*models.Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[id]
	return room, ok
}

// ClientRoom はクライアントが入室中のルームを引く
func (reg *Registry) ClientRoom(c *models.Client) (*models.Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	roomID, ok := reg.clientRooms[c.ID]
	if !ok {
		return nil, false
	}
	room, ok := reg.rooms[roomID]
	return room, ok
}

// CreateRoom は新しいルームを作り、作成者を唯一のメンバー兼オーナーにする。
// 既にどこかに入室していた場合は先に退室させる
func (reg *Registry) CreateRoom(c *models.Client, character string) *models.Room {
	reg.LeaveRoom(c)
	c.Character = character
	c.Ready = false

	room := &models.Room{
		OwnerID:    c.ID,
		Members:    []*models.Client{c},
		Status:     models.StatusWaiting,
		LastActive: time.Now(),
	}

	reg.mu.Lock()
	// ルームIDは短いコード。衝突したら引き直す
	for {
		id := reg.generateRoomCode()
		if _, exists := reg.rooms[id]; !exists {
			room.ID = id
			reg.rooms[id] = room
			break
		}
	}
	reg.clientRooms[c.ID] = room.ID
	reg.mu.Unlock()

	reg.logger.Info("Room created", zap.String("roomID", room.ID), zap.String("owner", c.ID))
	reg.NotifyLobby()
	return room
}

// JoinRoom は入室要求を処理する。拒否理由は型付きエラーで返す
func (reg *Registry) JoinRoom(roomID string, c *models.Client, character string) (*models.Room, error) {
	room, ok := reg.Room(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.Mu.Lock()

	// 破棄直前のルームには入れない
	if len(room.Members) == 0 {
		room.Mu.Unlock()
		return nil, ErrRoomNotFound
	}
	if room.Status != models.StatusWaiting {
		room.Mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	if len(room.Members) >= models.MaxPlayersPerRoom {
		room.Mu.Unlock()
		return nil, ErrRoomFull
	}

	c.Character = character
	c.Ready = false
	room.Members = append(room.Members, c)
	room.LastActive = time.Now()

	broadcast.ToRoomExcept(room, c, map[string]interface{}{
		"type":       "playerJoined",
		"playerId":   c.ID,
		"playerName": c.Name,
		"members":    broadcast.MembersInfo(room),
	}, reg.logger)
	room.Mu.Unlock()

	reg.mu.Lock()
	reg.clientRooms[c.ID] = room.ID
	reg.mu.Unlock()

	reg.logger.Info("Player joined room", zap.String("roomID", room.ID), zap.String("playerID", c.ID))
	reg.NotifyLobby()
	return room, nil
}

// LeaveRoom は退室処理。最後の1人が抜けたルームは即座に破棄し、
// オーナーが抜けた場合は参加順で次のメンバーへ所有権を移す。
// ゲーム中の退室は脱落として扱う
func (reg *Registry) LeaveRoom(c *models.Client) {
	room, ok := reg.ClientRoom(c)
	if !ok {
		return
	}

	reg.mu.Lock()
	delete(reg.clientRooms, c.ID)
	reg.mu.Unlock()

	room.Mu.Lock()

	for i, member := range room.Members {
		if member == c {
			room.Members = append(room.Members[:i], room.Members[i+1:]...)
			break
		}
	}
	c.Ready = false
	room.LastActive = time.Now()

	if len(room.Members) == 0 {
		turns.StopTimers(room)
		room.Mu.Unlock()
		reg.deleteRoom(room.ID)
		reg.NotifyLobby()
		return
	}

	if room.OwnerID == c.ID {
		room.OwnerID = room.Members[0].ID
		broadcast.ToRoom(room, map[string]interface{}{
			"type":       "ownerChanged",
			"newOwnerId": room.OwnerID,
			"members":    broadcast.MembersInfo(room),
		}, reg.logger)
		reg.logger.Info("Room ownership transferred",
			zap.String("roomID", room.ID),
			zap.String("newOwner", room.OwnerID),
		)
	}

	broadcast.ToRoom(room, map[string]interface{}{
		"type":       "playerLeft",
		"playerId":   c.ID,
		"playerName": c.Name,
		"members":    broadcast.MembersInfo(room),
	}, reg.logger)

	// ゲーム中に抜けた場合、そのプレイヤーは脱落扱い
	if room.Status == models.StatusPlaying {
		if p := room.Player(c.ID); p != nil && p.Alive {
			p.Alive = false
			broadcast.ToRoom(room, map[string]interface{}{
				"type":     "playerEliminated",
				"playerId": p.ID,
				"reason":   "left",
			}, reg.logger)
			if !turns.CheckGameOver(room, reg.logger) && room.CurrentTurn == c.ID {
				turns.Advance(room, reg.logger)
			}
		}
	}

	room.Mu.Unlock()
	reg.logger.Info("Player left room", zap.String("roomID", room.ID), zap.String("playerID", c.ID))
	reg.NotifyLobby()
}

// deleteRoom はルーム表から取り除く
func (reg *Registry) deleteRoom(roomID string) {
	reg.mu.Lock()
	delete(reg.rooms, roomID)
	reg.mu.Unlock()
	reg.logger.Info("Room deleted", zap.String("roomID", roomID))
}

// AvailableRooms はロビーに出せるルーム（待機中かつ空きあり）の一覧を返す
func (reg *Registry) AvailableRooms() []map[string]interface{} {
	reg.mu.RLock()
	rooms := make([]*models.Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.RUnlock()

	available := make([]map[string]interface{}, 0, len(rooms))
	for _, room := range rooms {
		room.Mu.Lock()
		if room.Status == models.StatusWaiting && len(room.Members) > 0 && len(room.Members) < models.MaxPlayersPerRoom {
			ownerName := ""
			if owner := room.Member(room.OwnerID); owner != nil {
				ownerName = owner.Name
			}
			available = append(available, map[string]interface{}{
				"roomId":    room.ID,
				"ownerName": ownerName,
				"members":   len(room.Members),
				"capacity":  models.MaxPlayersPerRoom,
				"mapStyle":  room.MapStyle,
			})
		}
		room.Mu.Unlock()
	}
	return available
}

// NotifyLobby はどのルームにも入っていないクライアントへルーム一覧の更新を知らせる
func (reg *Registry) NotifyLobby() {
	reg.mu.RLock()
	lobby := make([]*models.Client, 0, len(reg.clients))
	for id, c := range reg.clients {
		if _, inRoom := reg.clientRooms[id]; !inRoom {
			lobby = append(lobby, c)
		}
	}
	reg.mu.RUnlock()

	if len(lobby) == 0 {
		return
	}
	broadcast.ToClients(lobby, map[string]interface{}{
		"type":  "roomsUpdated",
		"rooms": reg.AvailableRooms(),
	}, reg.logger)
}

// Touch はルームの最終活動時刻を更新する
func (reg *Registry) Touch(room *models.Room) {
	room.LastActive = time.Now()
}

// SweepIdle は一定時間動きのないルームを閉じる。cronジョブから呼ばれる
func (reg *Registry) SweepIdle(maxIdle time.Duration) {
	reg.mu.RLock()
	rooms := make([]*models.Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.RUnlock()

	cutoff := time.Now().Add(-maxIdle)
	swept := 0
	for _, room := range rooms {
		room.Mu.Lock()
		idle := room.LastActive.Before(cutoff)
		var members []*models.Client
		if idle {
			turns.StopTimers(room)
			members = append(members, room.Members...)
			broadcast.ToRoom(room, map[string]interface{}{
				"type":   "roomClosed",
				"reason": "idle",
			}, reg.logger)
			for _, member := range members {
				member.Ready = false
			}
			room.Members = nil
		}
		room.Mu.Unlock()

		if idle {
			reg.mu.Lock()
			for _, member := range members {
				delete(reg.clientRooms, member.ID)
			}
			reg.mu.Unlock()
			reg.deleteRoom(room.ID)
			reg.logger.Info("Idle room swept", zap.String("roomID", room.ID))
			swept++
		}
	}
	if swept > 0 {
		reg.NotifyLobby()
	}
}

const roomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// 6文字のルームコードを生成する。呼び出し側はreg.muを保持していること
func (reg *Registry) generateRoomCode() string {
	code := make([]byte, 6)
	for i := range code {
		code[i] = roomCodeChars[reg.randGen.Intn(len(roomCodeChars))]
	}
	return string(code)
}
