package main

import (
	"github.com/blues/mes/internal/chain"
	"github.com/blues/mes/internal/config"
	"github.com/blues/mes/internal/database"
	"github.com/blues/mes/internal/engine"
	"github.com/blues/mes/internal/logger"
	"github.com/blues/mes/internal/logic"
	"github.com/blues/mes/internal/monitor"
	"github.com/blues/mes/internal/router"
	"github.com/blues/mes/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	initLogger(cfg.Log)

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 选择代币转出实现：接链时走链上托管账户，否则本地记录
	var token engine.TokenTransfer
	if cfg.Chain.Enabled {
		transferer, err := chain.NewTransferer(cfg.Chain)
		if err != nil {
			logger.Fatal("Failed to initialize chain transferer: %v", err)
		}
		token = transferer
	} else {
		token = chain.NewLocalTransferer()
	}

	// 初始化引擎与业务逻辑
	eng := engine.New(engine.NewRegistry(), token, engine.AllowAll{}, engine.SystemClock{})
	projectLogic := logic.NewProjectLogic(eng, db)

	// 启动链上入账监控
	if cfg.Chain.Enabled {
		paymentMonitor, err := monitor.NewPaymentMonitor(cfg.Chain, projectLogic)
		if err != nil {
			logger.Fatal("Failed to initialize payment monitor: %v", err)
		}
		if err := paymentMonitor.Start(); err != nil {
			logger.Fatal("Failed to start payment monitor: %v", err)
		}
		defer paymentMonitor.Stop()
	}

	// 启动定时任务
	taskManager := task.Start(projectLogic, cfg)
	defer taskManager.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(projectLogic)

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

// initLogger 按配置初始化默认日志器
func initLogger(cfg config.LogConfig) {
	level := logger.ParseLogLevel(cfg.Level)

	var l *logger.Logger
	var err error
	if cfg.Output == "file" {
		l, err = logger.NewWithFileRotation(level, cfg.File)
	} else {
		l, err = logger.New(level)
	}
	if err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(l)
}
