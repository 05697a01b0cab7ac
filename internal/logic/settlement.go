package logic

import (
	"context"
	"fmt"

	"github.com/blues/fms/internal/logger"
	"github.com/blues/fms/internal/model"
)

// MergedPullRequest 已合并PR的定位信息
type MergedPullRequest struct {
	RepoOwner string
	RepoName  string
	PrNumber  int
}

// SettleOutcome 一次webhook结算的结果类别
type SettleOutcome string

const (
	SettleOutcomeNoMatch        SettleOutcome = "no_match"        // 没有匹配的提交，正常忽略
	SettleOutcomeIgnored        SettleOutcome = "ignored"         // 提交已被拒绝，忽略
	SettleOutcomeInFlight       SettleOutcome = "in_flight"       // 另一次投递正在结算
	SettleOutcomeAlreadyAwarded SettleOutcome = "already_awarded" // 幂等短路，无任何变更
	SettleOutcomeLedgerRetried  SettleOutcome = "ledger_retried"  // 仅重试链上调用
	SettleOutcomeAwarded        SettleOutcome = "awarded"         // 本次完成发放
	SettleOutcomeFailed         SettleOutcome = "failed"          // 已定性的失败（项目缺失或已关闭）
)

// SettleResult webhook结算的标记结果
type SettleResult struct {
	Outcome           SettleOutcome
	Status            model.SubmissionStatus
	TxHash            string
	TokensAwarded     int64
	BlockchainSuccess bool
	Message           string
}

// awardOutcome 发放步骤的内部结果，链上与记账两半独立评估
type awardOutcome struct {
	txHash            string
	blockchainSuccess bool
	tokensAwarded     int64
	skillsGranted     []string
}

// SettlementLogic 结算编排：状态机推进 + 双写（链上账本 + 平台记账）
// 链上调用失败不阻塞记账，两边允许暂时不一致，靠交易哈希（或其缺失）人工对账
type SettlementLogic struct {
	submissions SubmissionStore
	projects    ProjectStore
	awards      AwardStore
	ledger      Ledger // 可为nil，纯记账模式
}

// NewSettlementLogic 创建结算编排逻辑
func NewSettlementLogic(submissions SubmissionStore, projects ProjectStore, awards AwardStore, ledger Ledger) *SettlementLogic {
	return &SettlementLogic{
		submissions: submissions,
		projects:    projects,
		awards:      awards,
		ledger:      ledger,
	}
}

// ProcessMergedPullRequest 处理一次PR合并投递
// 返回非nil error 仅表示未预期的内部故障（调用方应答500），
// 其余情况都折叠进 SettleResult 的结果类别
func (s *SettlementLogic) ProcessMergedPullRequest(ctx context.Context, pr MergedPullRequest) (*SettleResult, error) {
	sub, err := s.submissions.FindByPullRequest(pr.RepoOwner, pr.RepoName, pr.PrNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to locate submission: %w", err)
	}
	if sub == nil {
		// 无关仓库的webhook属于正常流量
		return &SettleResult{
			Outcome: SettleOutcomeNoMatch,
			Message: "no matching submission",
		}, nil
	}

	switch {
	case sub.Status == model.SubmissionStatusRejected:
		return &SettleResult{
			Outcome: SettleOutcomeIgnored,
			Status:  sub.Status,
			Message: "submission was rejected",
		}, nil

	case sub.Status == model.SubmissionStatusAwarded && sub.TxHash != "":
		// 幂等短路：链上回执已落库，重复投递不再触发任何变更
		logger.Info("Submission %d already awarded with tx %s, skipping", sub.ID, sub.TxHash)
		return &SettleResult{
			Outcome:           SettleOutcomeAlreadyAwarded,
			Status:            sub.Status,
			TxHash:            sub.TxHash,
			BlockchainSuccess: true,
			Message:           "submission already awarded",
		}, nil

	case sub.Status == model.SubmissionStatusAwarded:
		// 已发放但缺少链上回执：上次只完成了一半，仅重试链上调用
		return s.retryLedger(ctx, sub), nil

	case sub.Status == model.SubmissionStatusProcessing:
		return &SettleResult{
			Outcome: SettleOutcomeInFlight,
			Status:  sub.Status,
			Message: "settlement already in progress",
		}, nil
	}

	// pending 或 award_failed：抢占结算权
	won, err := s.submissions.MarkSubmissionProcessing(sub.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark submission processing: %w", err)
	}
	if !won {
		return &SettleResult{
			Outcome: SettleOutcomeInFlight,
			Status:  model.SubmissionStatusProcessing,
			Message: "settlement already in progress",
		}, nil
	}

	if err := s.submissions.MarkSubmissionMerged(sub.ID); err != nil {
		logger.Warn("Failed to mark submission %d merged: %v", sub.ID, err)
	}

	outcome, err := s.award(ctx, sub)
	if err != nil {
		// 不管失败原因，先把状态落到 award_failed，redelivery 可以再次抢占
		if statusErr := s.submissions.UpdateSubmissionStatus(sub.ID, model.SubmissionStatusAwardFailed); statusErr != nil {
			logger.Error("Failed to update submission %d to award_failed: %v", sub.ID, statusErr)
		}

		switch {
		case IsKnownFailure(err):
			return &SettleResult{
				Outcome: SettleOutcomeFailed,
				Status:  model.SubmissionStatusAwardFailed,
				Message: err.Error(),
			}, nil
		default:
			return nil, err
		}
	}

	if err := s.submissions.UpdateSubmissionStatus(sub.ID, model.SubmissionStatusAwarded); err != nil {
		return nil, fmt.Errorf("award completed but failed to update submission %d status: %w", sub.ID, err)
	}

	logger.Info("Submission %d awarded: tokens=%d, skills=%v, blockchain=%v",
		sub.ID, outcome.tokensAwarded, outcome.skillsGranted, outcome.blockchainSuccess)

	return &SettleResult{
		Outcome:           SettleOutcomeAwarded,
		Status:            model.SubmissionStatusAwarded,
		TxHash:            outcome.txHash,
		TokensAwarded:     outcome.tokensAwarded,
		BlockchainSuccess: outcome.blockchainSuccess,
		Message:           "submission awarded",
	}, nil
}

// award 执行发放：项目校验、链上调用（尽力而为）、余额累加、技能授予、关闭项目
// 整体成功与链上调用是否成功无关，链上不可用不能阻塞平台记账
func (s *SettlementLogic) award(ctx context.Context, sub *model.Submission) (*awardOutcome, error) {
	project, err := s.projects.GetProject(sub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %d: %w", sub.ProjectID, err)
	}
	if project == nil {
		return nil, fmt.Errorf("%w: project %d", ErrProjectNotFound, sub.ProjectID)
	}
	if project.Status != model.ProjectStatusOpen {
		return nil, fmt.Errorf("%w: project %d", ErrProjectClosed, project.ID)
	}

	outcome := &awardOutcome{}

	// 链上调用尽力而为：任何失败只记日志，不中断后续步骤
	if s.ledger != nil && sub.ChainSubmissionID != nil {
		txHash, err := s.ledger.ApproveSubmission(ctx, sub.FreelancerAddress, *sub.ChainSubmissionID)
		if err != nil {
			logger.Warn("Ledger approve failed for submission %d (non-fatal): %v", sub.ID, err)
		} else {
			outcome.txHash = txHash
			outcome.blockchainSuccess = true
			// 立即落库，之后崩溃也不会丢失链上回执
			if err := s.submissions.SetSubmissionTxHash(sub.ID, txHash); err != nil {
				logger.Error("Failed to persist tx hash %s for submission %d: %v", txHash, sub.ID, err)
			}
		}
	}

	// 余额失败不阻塞技能授予：链上转账可能已经成功，技能照发
	if project.TokenReward > 0 {
		if err := s.awards.AddBalance(sub.FreelancerAddress, project.TokenReward); err != nil {
			logger.Error("Failed to add balance %d for %s: %v", project.TokenReward, sub.FreelancerAddress, err)
		} else {
			outcome.tokensAwarded = project.TokenReward
		}
	}

	outcome.skillsGranted = s.grantSkills(project.CompletionSkills, sub.FreelancerAddress)

	if err := s.projects.CloseProject(project.ID, sub.FreelancerEns, sub.FreelancerAddress); err != nil {
		return nil, fmt.Errorf("failed to close project %d: %w", project.ID, err)
	}

	return outcome, nil
}

// grantSkills 逐项授予技能，单项失败不影响其它项
func (s *SettlementLogic) grantSkills(rawSkills, walletAddress string) []string {
	var granted []string
	for _, name := range ParseSkillList(rawSkills) {
		skill, err := s.awards.GetOrCreateSkill(name)
		if err != nil {
			logger.Error("Failed to get or create skill %q: %v", name, err)
			continue
		}

		ok, err := s.awards.GrantSkill(walletAddress, skill.ID)
		if err != nil {
			logger.Error("Failed to grant skill %q to %s: %v", name, walletAddress, err)
			continue
		}
		if !ok {
			logger.Info("Wallet %s already has skill %q", walletAddress, name)
			continue
		}
		granted = append(granted, name)
	}
	return granted
}

// retryLedger 仅补发链上调用，记账部分上次已完成，不再重复
func (s *SettlementLogic) retryLedger(ctx context.Context, sub *model.Submission) *SettleResult {
	result := &SettleResult{
		Outcome: SettleOutcomeLedgerRetried,
		Status:  sub.Status,
		Message: "retried ledger approval",
	}

	if s.ledger == nil || sub.ChainSubmissionID == nil {
		result.Message = "ledger not configured, nothing to retry"
		return result
	}

	txHash, err := s.ledger.ApproveSubmission(ctx, sub.FreelancerAddress, *sub.ChainSubmissionID)
	if err != nil {
		logger.Warn("Ledger retry failed for submission %d (non-fatal): %v", sub.ID, err)
		return result
	}

	result.TxHash = txHash
	result.BlockchainSuccess = true
	if err := s.submissions.SetSubmissionTxHash(sub.ID, txHash); err != nil {
		logger.Error("Failed to persist tx hash %s for submission %d: %v", txHash, sub.ID, err)
	}
	return result
}
