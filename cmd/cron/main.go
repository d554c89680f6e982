package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/conf"
	"github.com/PhilatPlay/PinMyPlace/internal/constants"

	"github.com/go-redsync/redsync/v4"
	"github.com/robfig/cron/v3"
	_ "go.uber.org/automaxprocs"
)

var (
	flagconf string
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()

	// 初始化配置
	bc, err := conf.Load(flagconf)
	if err != nil {
		panic(err)
	}
	if err := bc.Validate(); err != nil {
		panic(err)
	}

	// 初始化应用
	app, cleanup, err := wireApp(bc)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// 创建定时任务调度器（支持秒级调度）
	cronScheduler := cron.New(cron.WithSeconds())

	// 1. 订单清扫 - 每 5 分钟执行
	// 多实例部署时用分布式锁保证同一时刻只有一个实例清扫
	_, err = cronScheduler.AddFunc("0 */5 * * * *", func() {
		mutex := app.rs.NewMutex("pinmyplace:cron:order-sweep",
			redsync.WithExpiry(constants.SweepLockExpiration),
			redsync.WithTries(constants.SweepLockRetries),
		)
		if err := mutex.Lock(); err != nil {
			log.Printf("[CRON] Order sweep skipped, lock held elsewhere: %v", err)
			return
		}
		defer mutex.Unlock()

		log.Println("[CRON] Starting stale order sweep...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		expired, purged, err := app.payment.ExpireStaleOrders(ctx)
		if err != nil {
			log.Printf("[CRON] Error sweeping stale orders: %v", err)
		} else {
			log.Printf("[CRON] Expired %d pending orders, purged %d failed orders", expired, purged)
		}
		log.Println("[CRON] Finished stale order sweep")
	})
	if err != nil {
		log.Printf("Failed to add order sweep job: %v", err)
	}

	// 2. 过期兑换码清理 - 每天凌晨 4 点执行
	_, err = cronScheduler.AddFunc("0 0 4 * * *", func() {
		mutex := app.rs.NewMutex("pinmyplace:cron:code-cleanup",
			redsync.WithExpiry(constants.SweepLockExpiration),
			redsync.WithTries(constants.SweepLockRetries),
		)
		if err := mutex.Lock(); err != nil {
			log.Printf("[CRON] Code cleanup skipped, lock held elsewhere: %v", err)
			return
		}
		defer mutex.Unlock()

		log.Println("[CRON] Starting expired code cleanup...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		purged, err := app.payment.CleanupExpiredCodes(ctx)
		if err != nil {
			log.Printf("[CRON] Error cleaning expired codes: %v", err)
		} else {
			log.Printf("[CRON] Purged %d expired unused codes", purged)
		}
		log.Println("[CRON] Finished expired code cleanup")
	})
	if err != nil {
		log.Printf("Failed to add code cleanup job: %v", err)
	}

	// 启动定时任务
	cronScheduler.Start()
	log.Println("========================================")
	log.Println("Cron jobs started successfully")
	log.Println("Scheduled jobs:")
	log.Println("  - Stale order sweep:    Every 5 minutes")
	log.Println("  - Expired code cleanup: Every day at 04:00")
	log.Println("========================================")

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gracefully...")

	// 停止定时任务
	ctx := cronScheduler.Stop()
	select {
	case <-ctx.Done():
		log.Println("Cron jobs stopped gracefully")
	case <-time.After(5 * time.Second):
		log.Println("Cron jobs forced to stop after timeout")
	}
}
