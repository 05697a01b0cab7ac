package main

import (
	"github.com/blues/fms/internal/chain"
	"github.com/blues/fms/internal/config"
	"github.com/blues/fms/internal/database"
	"github.com/blues/fms/internal/logger"
	"github.com/blues/fms/internal/logic"
	"github.com/blues/fms/internal/router"
	"github.com/blues/fms/internal/store"
	"github.com/blues/fms/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	initLogger(cfg.Log)
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链上客户端，未配置RPC时以纯记账模式运行
	var ledger logic.Ledger
	if cfg.Chain.RpcUrl != "" {
		chainClient, err := chain.Init(cfg.Chain)
		if err != nil {
			logger.Fatal("Failed to initialize chain client: %v", err)
		}
		defer chainClient.Close()
		ledger = chainClient
	} else {
		logger.Warn("Chain RPC not configured, running in bookkeeping-only mode")
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, ledger, cfg)

	// 启动定时任务
	manager := task.Start(store.New(db), ledger, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

// initLogger 根据配置初始化默认日志器
func initLogger(cfg config.LogConfig) {
	level := logger.ParseLogLevel(cfg.Level)

	if cfg.Output == "file" && cfg.File != "" {
		l, err := logger.NewWithFileRotation(level, cfg.File)
		if err != nil {
			logger.Fatal("Failed to initialize file logger: %v", err)
		}
		logger.SetDefaultLogger(l)
		return
	}

	l, err := logger.New(level)
	if err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(l)
}
