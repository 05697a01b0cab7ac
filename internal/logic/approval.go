package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/blues/fms/internal/logger"
	"github.com/blues/fms/internal/model"
)

// ApprovalRequest 人工审批请求：发布方代表接单方触发发放
type ApprovalRequest struct {
	ProjectID         int64
	FreelancerEns     string
	FreelancerAddress string
	CompanyEns        string
	CompanyAddress    string
}

// ApprovalResult 人工审批结果
type ApprovalResult struct {
	IsSuccess bool
	Message   string
}

// ApproveWork 人工审批入口，没有webhook时由发布方直接触发同一套发放逻辑
// 鉴权：审批方的钱包ENS必须与项目发布方ENS一致（大小写不敏感）
// 此路径不做链上调用，绕过 pending/processing 直接写终态
func (s *SettlementLogic) ApproveWork(ctx context.Context, req ApprovalRequest) (*ApprovalResult, error) {
	project, err := s.projects.GetProject(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %d: %w", req.ProjectID, err)
	}
	if project == nil {
		return nil, fmt.Errorf("%w: project %d", ErrProjectNotFound, req.ProjectID)
	}

	if !strings.EqualFold(req.CompanyEns, project.OwnerEns) {
		return nil, fmt.Errorf("%w: %s is not the owner of project %d", ErrNotAuthorized, req.CompanyEns, project.ID)
	}

	if project.Status != model.ProjectStatusOpen {
		return nil, fmt.Errorf("%w: project %d", ErrProjectClosed, project.ID)
	}

	if err := s.projects.CloseProject(project.ID, req.FreelancerEns, req.FreelancerAddress); err != nil {
		return nil, fmt.Errorf("failed to close project %d: %w", project.ID, err)
	}

	// 有对应提交时直接写终态（无链上回执）
	sub, err := s.submissions.FindByProjectAndFreelancer(project.ID, req.FreelancerAddress)
	if err != nil {
		logger.Warn("Failed to locate submission for project %d: %v", project.ID, err)
	} else if sub != nil {
		if err := s.submissions.UpdateSubmissionStatus(sub.ID, model.SubmissionStatusAwarded); err != nil {
			logger.Error("Failed to mark submission %d awarded: %v", sub.ID, err)
		}
	}

	// 人工路径下余额转账必须成功，技能授予失败只记日志
	if project.TokenReward > 0 {
		if err := s.awards.AddBalance(req.FreelancerAddress, project.TokenReward); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRewardTransfer, err)
		}
	}

	granted := s.grantSkills(project.CompletionSkills, req.FreelancerAddress)

	logger.Info("Project %d manually approved by %s: tokens=%d, skills=%v",
		project.ID, req.CompanyEns, project.TokenReward, granted)

	return &ApprovalResult{
		IsSuccess: true,
		Message:   "work approved and reward granted",
	}, nil
}
