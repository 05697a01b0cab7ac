package task

import (
	"github.com/blues/fms/internal/config"
	"github.com/blues/fms/internal/logger"
	"github.com/blues/fms/internal/logic"
	"github.com/blues/fms/internal/store"
	"github.com/go-co-op/gocron/v2"
)

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	store     *store.Store
	ledger    logic.Ledger
	config    *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(s *store.Store, ledger logic.Ledger, cfg *config.Config) *Manager {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: scheduler,
		store:     s,
		ledger:    ledger,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(s *store.Store, ledger logic.Ledger, cfg *config.Config) *Manager {
	manager := NewManager(s, ledger, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 链上账本未配置时没有可对账的内容
	if m.ledger != nil {
		m.RegisterLedgerReconcileJob()
	}
}

// RegisterLedgerReconcileJob 注册账本对账任务
func (m *Manager) RegisterLedgerReconcileJob() {
	job := NewLedgerReconcileJob(m.store, m.ledger, m.config)

	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
