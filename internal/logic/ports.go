package logic

import (
	"context"
	"errors"

	"github.com/blues/fms/internal/model"
)

// 结算流程的错误类别，调用方按类别分支而不是解析消息文本
var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrProjectClosed      = errors.New("project already closed")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrRewardTransfer     = errors.New("reward transfer failed")
)

// IsKnownFailure 判断是否属于已定性的业务失败（区别于未预期的内部故障）
func IsKnownFailure(err error) bool {
	return errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrProjectClosed) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrNotAuthorized) ||
		errors.Is(err, ErrRewardTransfer)
}

// SubmissionStore 提交记录的持久化端口
type SubmissionStore interface {
	// FindByPullRequest 按 (repo owner, repo name, PR号) 查找最近创建的提交，未找到返回 nil, nil
	FindByPullRequest(owner, repo string, number int) (*model.Submission, error)
	// FindByProjectAndFreelancer 按 (项目, 接单方地址) 查找最近创建的提交，未找到返回 nil, nil
	FindByProjectAndFreelancer(projectID int64, freelancerAddress string) (*model.Submission, error)
	// MarkSubmissionProcessing 条件更新：仅当状态为 pending 或 award_failed 时置为 processing，
	// 返回是否抢到该行，并发投递只有一个会赢
	MarkSubmissionProcessing(id int64) (bool, error)
	UpdateSubmissionStatus(id int64, status model.SubmissionStatus) error
	SetSubmissionTxHash(id int64, txHash string) error
	MarkSubmissionMerged(id int64) error
	// ListAwardedWithoutTxHash 已发放但缺少链上回执的提交，供对账使用
	ListAwardedWithoutTxHash() ([]model.Submission, error)
}

// ProjectStore 项目的持久化端口
type ProjectStore interface {
	// GetProject 未找到返回 nil, nil
	GetProject(id int64) (*model.Project, error)
	// CloseProject 关闭项目并记录接单方，仅当状态为 open 时生效
	CloseProject(id int64, freelancerEns, freelancerAddress string) error
}

// AwardStore 记账端口：余额与技能
type AwardStore interface {
	// AddBalance 原子累加余额，账户不存在时创建
	AddBalance(walletAddress string, amount int64) error
	// GetOrCreateSkill 按名称（大小写不敏感）查找技能，不存在则创建
	GetOrCreateSkill(name string) (*model.Skill, error)
	// GrantSkill 授予技能，已持有时返回 false, nil（无操作，不算错误）
	GrantSkill(walletAddress string, skillID int64) (bool, error)
}

// Ledger 链上账本端口，成功返回交易哈希
type Ledger interface {
	ApproveSubmission(ctx context.Context, freelancerAddress string, chainSubmissionID int64) (string, error)
}
