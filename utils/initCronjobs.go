package utils

import (
	"time"

	"artyserver/barrage/registry"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronCleaner は放置されたルームの定期掃除を行う。
// ルーム状態は全てインメモリなので、掃除もレジストリ経由で完結する
func CronCleaner(reg *registry.Registry, maxIdle time.Duration, logger *zap.Logger) {
	c := cron.New()

	c.AddFunc("@every 1m", func() {
		logger.Info("Starting idle room sweep")
		reg.SweepIdle(maxIdle)
	})

	c.Start()
}
