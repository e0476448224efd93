package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/storefront-next/internal/app"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

const releaseMode = "release"

var weakSecretMarkers = []string{"change-me", "change-in-production", "your-secret-key"}

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all | api | worker")
	flag.Parse()

	printBanner(*mode)

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if err := prepare(cfg); err != nil {
		stdLog.Fatalf("启动准备失败: %v", err)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    *mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

// prepare 校验密钥、连接数据库、迁移表结构并确保存在默认管理员
func prepare(cfg *config.Config) error {
	release := cfg.Server.Mode == releaseMode
	if isWeakSecret(cfg.JWT.SecretKey) {
		if release {
			return errors.New("jwt secret 过弱或仍为默认值")
		}
		logger.Warnw("jwt_secret_weak", "hint", "生产环境请配置至少 32 位的随机密钥")
	}
	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	pool := cfg.Database.Pool
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           pool.MaxOpenConns,
		MaxIdleConns:           pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := models.AutoMigrate(models.DB); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if release && cfg.Admin.Password == "" {
		logger.Warnw("default_admin_skipped", "reason", "ADMIN_PASSWORD not set")
		return nil
	}
	seed := models.AdminSeed{Username: cfg.Admin.Username, Password: cfg.Admin.Password, Email: cfg.Admin.Email}
	if _, err := models.EnsureDefaultAdmin(models.DB, seed); err != nil {
		logger.Warnw("default_admin_init_failed", "error", err)
	}
	return nil
}

func printBanner(mode string) {
	fmt.Println("\033[95m\033[1mstorefront\033[0m  catalog · cart · checkout · admin console")
	fmt.Printf("\033[2mmode=%s  (all: api + worker, api: http + inbox feed, worker: notification queue)\033[0m\n", mode)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
