package registry

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"artyserver/barrage/terrain"
	"artyserver/barrage/turns"
	"artyserver/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// テスト用のWebSocket接続。届いたペイロードを記録するだけ
type fakeConn struct {
	mu       sync.Mutex
	messages []map[string]interface{}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	var msg map[string]interface{}
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeConn) Close() error { return nil }

func (f *fakeConn) byType(msgType string) []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]interface{}
	for _, msg := range f.messages {
		if msg["type"] == msgType {
			out = append(out, msg)
		}
	}
	return out
}

func newTestClient(reg *Registry, id string) (*models.Client, *fakeConn) {
	conn := &fakeConn{}
	c := &models.Client{
		Conn: conn,
		ID:   id,
		Name: "Player " + id,
	}
	reg.AddClient(c)
	return c, conn
}

func TestCreateRoomCodeFormat(t *testing.T) {
	reg := New(zap.NewNop())
	c, _ := newTestClient(reg, "c1")

	room := reg.CreateRoom(c, "striker")

	require.NotNil(t, room)
	assert.Len(t, room.ID, 6)
	for _, r := range room.ID {
		assert.True(t, strings.ContainsRune(roomCodeChars, r), "unexpected room code char %q", r)
	}
	assert.Equal(t, c.ID, room.OwnerID)
	assert.Equal(t, models.StatusWaiting, room.Status)
	got, ok := reg.ClientRoom(c)
	require.True(t, ok)
	assert.Same(t, room, got)
	require.Len(t, room.Members, 1)
	assert.Same(t, c, room.Members[0])
}

func TestCreateRoomLeavesPreviousRoom(t *testing.T) {
	reg := New(zap.NewNop())
	c, _ := newTestClient(reg, "c1")

	first := reg.CreateRoom(c, "striker")
	second := reg.CreateRoom(c, "scout")

	assert.NotEqual(t, first.ID, second.ID)
	_, ok := reg.Room(first.ID)
	assert.False(t, ok, "the abandoned room should be deleted")
	got, ok := reg.ClientRoom(c)
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestJoinRoomNotFound(t *testing.T) {
	reg := New(zap.NewNop())
	c, _ := newTestClient(reg, "c1")

	_, err := reg.JoinRoom("NOPE42", c, "striker")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, ok := reg.ClientRoom(c)
	assert.False(t, ok)
}

func TestJoinRoomFull(t *testing.T) {
	reg := New(zap.NewNop())
	owner, _ := newTestClient(reg, "owner")
	room := reg.CreateRoom(owner, "striker")

	for i := 1; i < models.MaxPlayersPerRoom; i++ {
		c, _ := newTestClient(reg, fmt.Sprintf("c%d", i))
		_, err := reg.JoinRoom(room.ID, c, "striker")
		require.NoError(t, err)
	}

	late, _ := newTestClient(reg, "late")
	_, err := reg.JoinRoom(room.ID, late, "striker")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestJoinRoomAlreadyStarted(t *testing.T) {
	reg := New(zap.NewNop())
	owner, _ := newTestClient(reg, "owner")
	room := reg.CreateRoom(owner, "striker")
	c2, _ := newTestClient(reg, "c2")
	_, err := reg.JoinRoom(room.ID, c2, "scout")
	require.NoError(t, err)

	room.Mu.Lock()
	require.True(t, turns.StartGame(room, terrain.StyleRolling, owner.ID, zap.NewNop()))
	turns.StopTimers(room)
	room.Mu.Unlock()

	late, _ := newTestClient(reg, "late")
	_, err = reg.JoinRoom(room.ID, late, "striker")
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestJoinRoomNotifiesExistingMembers(t *testing.T) {
	reg := New(zap.NewNop())
	owner, ownerConn := newTestClient(reg, "owner")
	room := reg.CreateRoom(owner, "striker")

	c2, c2Conn := newTestClient(reg, "c2")
	_, err := reg.JoinRoom(room.ID, c2, "scout")
	require.NoError(t, err)

	msgs := ownerConn.byType("playerJoined")
	require.Len(t, msgs, 1)
	assert.Equal(t, "c2", msgs[0]["playerId"])
	// 入室した本人には別途roomJoinedが返るので重複して知らせない
	assert.Empty(t, c2Conn.byType("playerJoined"))
}

func TestLeaveRoomDeletesEmptyRoom(t *testing.T) {
	reg := New(zap.NewNop())
	c, _ := newTestClient(reg, "c1")
	room := reg.CreateRoom(c, "striker")

	reg.LeaveRoom(c)

	_, ok := reg.Room(room.ID)
	assert.False(t, ok)
	_, ok = reg.ClientRoom(c)
	assert.False(t, ok)
}

func TestLeaveRoomTransfersOwnership(t *testing.T) {
	reg := New(zap.NewNop())
	owner, _ := newTestClient(reg, "owner")
	room := reg.CreateRoom(owner, "striker")

	c2, c2Conn := newTestClient(reg, "c2")
	_, err := reg.JoinRoom(room.ID, c2, "scout")
	require.NoError(t, err)
	c3, _ := newTestClient(reg, "c3")
	_, err = reg.JoinRoom(room.ID, c3, "juggernaut")
	require.NoError(t, err)

	reg.LeaveRoom(owner)

	// 参加順で次のメンバーがオーナーになる
	assert.Equal(t, "c2", room.OwnerID)
	msgs := c2Conn.byType("ownerChanged")
	require.Len(t, msgs, 1)
	assert.Equal(t, "c2", msgs[0]["newOwnerId"])
	assert.Len(t, c2Conn.byType("playerLeft"), 1)
}

func TestLeaveRoomDuringGameEliminates(t *testing.T) {
	reg := New(zap.NewNop())
	owner, _ := newTestClient(reg, "owner")
	room := reg.CreateRoom(owner, "striker")
	c2, _ := newTestClient(reg, "c2")
	_, err := reg.JoinRoom(room.ID, c2, "scout")
	require.NoError(t, err)
	c3, c3Conn := newTestClient(reg, "c3")
	_, err = reg.JoinRoom(room.ID, c3, "striker")
	require.NoError(t, err)

	room.Mu.Lock()
	require.True(t, turns.StartGame(room, terrain.StyleRolling, owner.ID, zap.NewNop()))
	require.Equal(t, owner.ID, room.CurrentTurn)
	room.Mu.Unlock()

	t.Cleanup(func() {
		room.Mu.Lock()
		turns.StopTimers(room)
		room.Mu.Unlock()
	})

	// 手番中のプレイヤーが抜けたら脱落扱いになり、手番が次へ移る
	reg.LeaveRoom(owner)

	room.Mu.Lock()
	defer room.Mu.Unlock()
	assert.Equal(t, models.StatusPlaying, room.Status)
	assert.Equal(t, 2, room.AliveCount())
	assert.Equal(t, "c2", room.CurrentTurn)

	elims := c3Conn.byType("playerEliminated")
	require.Len(t, elims, 1)
	assert.Equal(t, "owner", elims[0]["playerId"])
	assert.Equal(t, "left", elims[0]["reason"])
}

func TestLeaveRoomDuringGameEndsWithOnePlayerLeft(t *testing.T) {
	reg := New(zap.NewNop())
	owner, _ := newTestClient(reg, "owner")
	room := reg.CreateRoom(owner, "striker")
	c2, c2Conn := newTestClient(reg, "c2")
	_, err := reg.JoinRoom(room.ID, c2, "scout")
	require.NoError(t, err)

	room.Mu.Lock()
	require.True(t, turns.StartGame(room, terrain.StyleRolling, owner.ID, zap.NewNop()))
	room.Mu.Unlock()

	reg.LeaveRoom(owner)

	room.Mu.Lock()
	defer room.Mu.Unlock()
	assert.Equal(t, models.StatusWaiting, room.Status)

	msgs := c2Conn.byType("gameOver")
	require.Len(t, msgs, 1)
	winner := msgs[0]["winner"].(map[string]interface{})
	assert.Equal(t, "c2", winner["id"])
}

func TestAvailableRoomsFiltersStartedAndFull(t *testing.T) {
	reg := New(zap.NewNop())

	owner1, _ := newTestClient(reg, "o1")
	open := reg.CreateRoom(owner1, "striker")

	owner2, _ := newTestClient(reg, "o2")
	started := reg.CreateRoom(owner2, "striker")
	c2, _ := newTestClient(reg, "c2")
	_, err := reg.JoinRoom(started.ID, c2, "scout")
	require.NoError(t, err)
	started.Mu.Lock()
	require.True(t, turns.StartGame(started, terrain.StyleRolling, owner2.ID, zap.NewNop()))
	turns.StopTimers(started)
	started.Mu.Unlock()

	rooms := reg.AvailableRooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, open.ID, rooms[0]["roomId"])
	assert.Equal(t, "Player o1", rooms[0]["ownerName"])
	assert.Equal(t, 1, rooms[0]["members"])
}

func TestNotifyLobbyReachesOnlyLobbyClients(t *testing.T) {
	reg := New(zap.NewNop())
	inRoom, inRoomConn := newTestClient(reg, "inroom")
	reg.CreateRoom(inRoom, "striker")

	_, lobbyConn := newTestClient(reg, "lobby")

	before := len(lobbyConn.byType("roomsUpdated"))
	reg.NotifyLobby()

	assert.Len(t, lobbyConn.byType("roomsUpdated"), before+1)
	assert.Empty(t, inRoomConn.byType("roomsUpdated"))
}

func TestSweepIdleClosesStaleRooms(t *testing.T) {
	reg := New(zap.NewNop())
	c, conn := newTestClient(reg, "c1")
	room := reg.CreateRoom(c, "striker")

	// maxIdleを0にすると直前に作ったルームも掃除対象になる
	reg.SweepIdle(0)

	_, ok := reg.Room(room.ID)
	assert.False(t, ok)
	_, ok = reg.ClientRoom(c)
	assert.False(t, ok)

	msgs := conn.byType("roomClosed")
	require.Len(t, msgs, 1)
	assert.Equal(t, "idle", msgs[0]["reason"])
}

func TestNotifyLobbySafeDuringMembershipChurn(t *testing.T) {
	reg := New(zap.NewNop())
	churner, _ := newTestClient(reg, "churner")
	_, watcherConn := newTestClient(reg, "watcher")

	// 入退室の繰り返しとロビー通知を同時に走らせても表が壊れないこと
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			reg.CreateRoom(churner, "striker")
			reg.LeaveRoom(churner)
		}
	}()
	for i := 0; i < 200; i++ {
		reg.NotifyLobby()
	}
	<-done

	_, ok := reg.ClientRoom(churner)
	assert.False(t, ok)
	assert.Empty(t, reg.AvailableRooms())
	assert.NotEmpty(t, watcherConn.byType("roomsUpdated"))
}
