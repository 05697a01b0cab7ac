package task

import (
	"context"
	"time"

	"github.com/blues/fms/internal/config"
	"github.com/blues/fms/internal/logger"
	"github.com/blues/fms/internal/logic"
	"github.com/blues/fms/internal/store"
	"github.com/go-co-op/gocron/v2"
)

// LedgerReconcileJob 账本对账任务
// 找出已发放但缺少链上回执的提交，补发合约调用并落库交易哈希
// webhook重投递仍是有效的重试路径，本任务只是额外的兜底
type LedgerReconcileJob struct {
	store  *store.Store
	ledger logic.Ledger
	config *config.Config
}

// NewLedgerReconcileJob 创建账本对账任务
func NewLedgerReconcileJob(s *store.Store, ledger logic.Ledger, cfg *config.Config) *LedgerReconcileJob {
	return &LedgerReconcileJob{
		store:  s,
		ledger: ledger,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *LedgerReconcileJob) GetName() string {
	return "ledger_reconciliation"
}

// GetSchedule 获取调度配置
func (j *LedgerReconcileJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *LedgerReconcileJob) Execute() {
	logger.Info("Starting ledger reconciliation task")

	subs, err := j.store.ListAwardedWithoutTxHash()
	if err != nil {
		logger.Error("Failed to list unreconciled submissions: %v", err)
		return
	}

	reconciled := 0

	for _, sub := range subs {
		// 没有链上引用的提交无法对账，只能人工处理
		if sub.ChainSubmissionID == nil {
			continue
		}

		txHash, err := j.ledger.ApproveSubmission(context.Background(), sub.FreelancerAddress, *sub.ChainSubmissionID)
		if err != nil {
			logger.Warn("Reconcile failed for submission %d: %v", sub.ID, err)
			continue
		}

		if err := j.store.SetSubmissionTxHash(sub.ID, txHash); err != nil {
			logger.Error("Failed to persist tx hash %s for submission %d: %v", txHash, sub.ID, err)
			continue
		}

		logger.Info("Reconciled submission %d with tx %s", sub.ID, txHash)
		reconciled++
	}

	logger.Info("Ledger reconciliation task completed. Reconciled %d of %d submissions", reconciled, len(subs))
}
