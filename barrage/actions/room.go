package actions

import (
	"errors"

	"artyserver/barrage/broadcast"
	"artyserver/barrage/registry"
	"artyserver/barrage/roster"
	"artyserver/barrage/terrain"
	"artyserver/models"

	"go.uber.org/zap"
)

// ルーム作成要求を処理し、作成者へルーム情報と選択肢カタログを返す
func handleCreateRoom(client *models.Client, msg map[string]interface{}, reg *registry.Registry, logger *zap.Logger) {
	if name, ok := msg["playerName"].(string); ok && name != "" {
		client.Name = name
	}
	character, _ := msg["character"].(string)

	room := reg.CreateRoom(client, character)

	room.Mu.Lock()
	// 作成時に選ばれたマップスタイルはロビー一覧に出し、開始時の既定値にもなる
	if style, ok := msg["mapStyle"].(string); ok && style != "" {
		room.MapStyle = style
	}
	membersInfo := broadcast.MembersInfo(room)
	room.Mu.Unlock()

	broadcast.Send(client, map[string]interface{}{
		"type":       "roomCreated",
		"roomId":     room.ID,
		"playerId":   client.ID,
		"members":    membersInfo,
		"characters": roster.Characters(),
		"mapStyles":  terrain.Styles(),
	}, logger)
}

// 入室要求を処理する。拒否は理由付きで要求者にのみ返す
func handleJoinRoom(client *models.Client, msg map[string]interface{}, reg *registry.Registry, logger *zap.Logger) {
	roomID, ok := msg["roomId"].(string)
	if !ok {
		sendErrorMessage(client, "Invalid room id")
		return
	}
	if name, ok := msg["playerName"].(string); ok && name != "" {
		client.Name = name
	}
	character, _ := msg["character"].(string)

	room, err := reg.JoinRoom(roomID, client, character)
	if err != nil {
		reason := "notFound"
		switch {
		case errors.Is(err, registry.ErrRoomFull):
			reason = "full"
		case errors.Is(err, registry.ErrAlreadyStarted):
			reason = "alreadyStarted"
		}
		broadcast.Send(client, map[string]interface{}{
			"type":   "joinRejected",
			"roomId": roomID,
			"reason": reason,
		}, logger)
		return
	}

	room.Mu.Lock()
	membersInfo := broadcast.MembersInfo(room)
	room.Mu.Unlock()

	broadcast.Send(client, map[string]interface{}{
		"type":       "roomJoined",
		"roomId":     room.ID,
		"playerId":   client.ID,
		"members":    membersInfo,
		"characters": roster.Characters(),
		"mapStyles":  terrain.Styles(),
	}, logger)
}

func handleLeaveRoom(client *models.Client, reg *registry.Registry, logger *zap.Logger) {
	reg.LeaveRoom(client)
	broadcast.Send(client, map[string]interface{}{"type": "leftRoom"}, logger)
}

// ロビー向けのルーム一覧を要求者にのみ返す
func handleListRooms(client *models.Client, reg *registry.Registry, logger *zap.Logger) {
	broadcast.Send(client, map[string]interface{}{
		"type":  "roomsUpdated",
		"rooms": reg.AvailableRooms(),
	}, logger)
}
