// Package turns はルームごとのターン進行を司る。
// 公開関数はすべて呼び出し側が room.Mu を取得した状態で呼ぶこと。
// デッドライン監視と再戦タイマーは自分でロックを取る
package turns

import (
	"math/rand"
	"time"

	"artyserver/barrage/broadcast"
	"artyserver/barrage/placement"
	"artyserver/barrage/terrain"
	"artyserver/models"

	"go.uber.org/zap"
)

// 乱数は風の決定に使用
func createLocalRandGenerator() *rand.Rand {
	source := rand.NewSource(time.Now().UnixNano())
	return rand.New(source)
}

// StartGame はオーナーの開始要求を処理する。条件を満たさない場合は何もせずfalse
func StartGame(room *models.Room, style string, actorID string, logger *zap.Logger) bool {
	if room.Status != models.StatusWaiting {
		return false
	}
	if actorID != room.OwnerID {
		return false
	}
	if len(room.Members) < models.MinPlayersToStart {
		return false
	}

	// 再戦待ちの間に手動で開始された場合、遅延タイマーは破棄する
	if room.RestartTimer != nil {
		room.RestartTimer.Stop()
		room.RestartTimer = nil
	}

	if style == "" {
		style = room.MapStyle
	}
	if style == "" {
		style = terrain.StyleRolling
	}
	room.MapStyle = style
	room.Map = terrain.Generate(style)
	room.Players = placement.PlacePlayers(room)
	room.Status = models.StatusPlaying
	for _, member := range room.Members {
		member.Ready = false
	}

	beginTurn(room, room.Players[0].ID, logger)
	broadcast.GameStarted(room, logger)
	logger.Info("Game started",
		zap.String("roomID", room.ID),
		zap.String("mapStyle", style),
		zap.Int("players", len(room.Players)),
	)
	return true
}

// beginTurn は手番・締め切り・風を設定し、デッドライン監視を張り直す。
// 前のターンの監視はここで必ず無効化される
func beginTurn(room *models.Room, playerID string, logger *zap.Logger) {
	stopWatch(room)
	room.CurrentTurn = playerID
	room.TurnDeadline = time.Now().Add(models.TurnSeconds * time.Second)
	room.TurnSerial++
	room.Wind = (createLocalRandGenerator().Float64()*2 - 1) * models.WindRange
	room.Projectiles = nil
	room.WatchStop = make(chan struct{})
	go runWatch(room, room.TurnSerial, room.WatchStop, logger)
}

// stopWatch は実行中のデッドライン監視を止める
func stopWatch(room *models.Room) {
	if room.WatchStop != nil {
		close(room.WatchStop)
		room.WatchStop = nil
	}
}

// runWatch はターンの締め切りを定期的に確認するゴルーチン。
// ターンが別の理由で進んでいた場合（シリアル不一致）は黙って終了する
func runWatch(room *models.Room, serial uint64, stop chan struct{}, logger *zap.Logger) {
	ticker := time.NewTicker(models.WatchTickSeconds * time.Second)
	defer ticker.Stop()

	tickCount := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			room.Mu.Lock()
			// selectを抜けた後に停止されていた場合もロック下で拾う
			select {
			case <-stop:
				room.Mu.Unlock()
				return
			default:
			}
			if room.Status != models.StatusPlaying || room.TurnSerial != serial {
				room.Mu.Unlock()
				return
			}
			remaining := int(time.Until(room.TurnDeadline).Seconds())
			if remaining <= 0 {
				handleExpiredTurn(room, logger)
				room.Mu.Unlock()
				return
			}
			tickCount++
			if tickCount%models.TimeUpdateInterval == 0 {
				broadcast.TurnTimeUpdate(room, remaining, logger)
			}
			room.Mu.Unlock()
		}
	}
}

// handleExpiredTurn は締め切り超過を処理する。
// 連続放棄が上限に達したプレイヤーは脱落させ、いずれにせよターンを進める
func handleExpiredTurn(room *models.Room, logger *zap.Logger) {
	p := room.Player(room.CurrentTurn)
	if p != nil && p.Alive {
		p.MissedTurns++
		logger.Info("Turn deadline exceeded",
			zap.String("roomID", room.ID),
			zap.String("playerID", p.ID),
			zap.Int("missedTurns", p.MissedTurns),
		)
		if p.MissedTurns >= models.MissedTurnLimit {
			p.Alive = false
			broadcast.ToRoom(room, map[string]interface{}{
				"type":     "playerEliminated",
				"playerId": p.ID,
				"reason":   "timeout",
			}, logger)
			if CheckGameOver(room, logger) {
				return
			}
		}
	}
	Advance(room, logger)
}

// Advance は手番を次の生存プレイヤーへ回す。
// 現在の手番の次から配置順に一周探し、交代先がいなければ決着処理に入る
func Advance(room *models.Room, logger *zap.Logger) {
	cur := -1
	for i, p := range room.Players {
		if p != nil && p.ID == room.CurrentTurn {
			cur = i
			break
		}
	}
	if cur < 0 {
		CheckGameOver(room, logger)
		return
	}

	n := len(room.Players)
	for i := 1; i < n; i++ {
		candidate := room.Players[(cur+i)%n]
		if candidate != nil && candidate.Alive {
			tickEffects(room)
			beginTurn(room, candidate.ID, logger)
			broadcast.TurnChanged(room, logger)
			return
		}
	}
	CheckGameOver(room, logger)
}

// ターン経過で効果の残り時間を減らし、切れたものを落とす
func tickEffects(room *models.Room) {
	for _, p := range room.Players {
		if p == nil || len(p.Effects) == 0 {
			continue
		}
		kept := p.Effects[:0]
		for _, e := range p.Effects {
			e.Remaining--
			if e.Remaining > 0 {
				kept = append(kept, e)
			}
		}
		p.Effects = kept
	}
}

// CheckGameOver は生存者が1人以下なら決着させ、ルームをWaitingに戻す。
// 決着した場合trueを返す
func CheckGameOver(room *models.Room, logger *zap.Logger) bool {
	if room.Status != models.StatusPlaying {
		return false
	}
	if room.AliveCount() > 1 {
		return false
	}

	var winner *models.GamePlayer
	for _, p := range room.Players {
		if p != nil && p.Alive {
			winner = p
		}
	}

	stopWatch(room)
	broadcast.GameOver(room, winner, logger)

	room.Status = models.StatusWaiting
	room.HadGame = true
	room.Map = nil
	room.Players = nil
	room.CurrentTurn = ""
	room.Projectiles = nil
	room.TurnSerial++
	for _, member := range room.Members {
		member.Ready = false
	}

	if winner != nil {
		logger.Info("Game over", zap.String("roomID", room.ID), zap.String("winner", winner.ID))
	} else {
		logger.Info("Game over in a draw", zap.String("roomID", room.ID))
	}
	return true
}

// MarkReady は再戦ハンドシェイクの準備完了を記録する。
// 全メンバーが揃ったら通知を出し、短い遅延の後に自動で再戦を始める。
// 初戦はオーナーの明示的な開始要求でしか始まらない
func MarkReady(room *models.Room, c *models.Client, logger *zap.Logger) {
	if room.Status != models.StatusWaiting || !room.HadGame {
		return
	}
	c.Ready = true

	if len(room.Members) < models.MinPlayersToStart {
		return
	}
	for _, member := range room.Members {
		if !member.Ready {
			return
		}
	}

	broadcast.ToRoom(room, map[string]interface{}{"type": "allPlayersReady"}, logger)
	scheduleRestart(room, logger)
}

// scheduleRestart は固定遅延後の自動再戦を予約する。
// 遅延中にオーナーが退室していた場合は何もせずに流れる
func scheduleRestart(room *models.Room, logger *zap.Logger) {
	if room.RestartTimer != nil {
		room.RestartTimer.Stop()
	}
	room.RestartTimer = time.AfterFunc(models.RestartDelaySeconds*time.Second, func() {
		room.Mu.Lock()
		defer room.Mu.Unlock()
		room.RestartTimer = nil
		if room.Member(room.OwnerID) == nil {
			logger.Info("Auto-restart abandoned: owner left", zap.String("roomID", room.ID))
			return
		}
		StartGame(room, room.MapStyle, room.OwnerID, logger)
	})
}

// StopTimers はルーム破棄時に未了のタイマー類をすべて止める
func StopTimers(room *models.Room) {
	stopWatch(room)
	if room.RestartTimer != nil {
		room.RestartTimer.Stop()
		room.RestartTimer = nil
	}
}
