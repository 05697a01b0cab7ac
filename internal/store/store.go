package store

import (
	"errors"
	"fmt"

	"github.com/blues/fms/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 持久层实现，满足 logic 包声明的各个端口
type Store struct {
	db *gorm.DB
}

// New 创建持久层
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindByPullRequest 按 (repo owner, repo name, PR号) 查找最近创建的提交
func (s *Store) FindByPullRequest(owner, repo string, number int) (*model.Submission, error) {
	var sub model.Submission
	err := s.db.Where("repo_owner = ? AND repo_name = ? AND pr_number = ?", owner, repo, number).
		Order("created_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询提交记录失败: %w", err)
	}
	return &sub, nil
}

// FindByProjectAndFreelancer 按 (项目, 接单方地址) 查找最近创建的提交
func (s *Store) FindByProjectAndFreelancer(projectID int64, freelancerAddress string) (*model.Submission, error) {
	var sub model.Submission
	err := s.db.Where("project_id = ? AND freelancer_address = ?", projectID, freelancerAddress).
		Order("created_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询提交记录失败: %w", err)
	}
	return &sub, nil
}

// MarkSubmissionProcessing 条件更新抢占结算权，并发投递只有一个能赢
func (s *Store) MarkSubmissionProcessing(id int64) (bool, error) {
	result := s.db.Model(&model.Submission{}).
		Where("id = ? AND status IN ?", id, []model.SubmissionStatus{
			model.SubmissionStatusPending,
			model.SubmissionStatusAwardFailed,
		}).
		Update("status", model.SubmissionStatusProcessing)
	if result.Error != nil {
		return false, fmt.Errorf("更新提交状态失败: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// UpdateSubmissionStatus 更新提交状态
func (s *Store) UpdateSubmissionStatus(id int64, status model.SubmissionStatus) error {
	if err := s.db.Model(&model.Submission{}).Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("更新提交状态失败: %w", err)
	}
	return nil
}

// SetSubmissionTxHash 记录链上交易哈希
func (s *Store) SetSubmissionTxHash(id int64, txHash string) error {
	if err := s.db.Model(&model.Submission{}).Where("id = ?", id).
		Update("tx_hash", txHash).Error; err != nil {
		return fmt.Errorf("记录交易哈希失败: %w", err)
	}
	return nil
}

// MarkSubmissionMerged 标记PR已合并
func (s *Store) MarkSubmissionMerged(id int64) error {
	if err := s.db.Model(&model.Submission{}).Where("id = ?", id).
		Update("merged", true).Error; err != nil {
		return fmt.Errorf("标记合并状态失败: %w", err)
	}
	return nil
}

// ListAwardedWithoutTxHash 已发放但缺少链上回执的提交，按创建时间升序
func (s *Store) ListAwardedWithoutTxHash() ([]model.Submission, error) {
	var subs []model.Submission
	err := s.db.Where("status = ? AND (tx_hash = '' OR tx_hash IS NULL)", model.SubmissionStatusAwarded).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("查询待对账提交失败: %w", err)
	}
	return subs, nil
}

// GetProject 获取项目，未找到返回 nil, nil
func (s *Store) GetProject(id int64) (*model.Project, error) {
	var project model.Project
	err := s.db.First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询项目失败: %w", err)
	}
	return &project, nil
}

// CloseProject 关闭项目并记录接单方，仅当状态为 open 时生效
func (s *Store) CloseProject(id int64, freelancerEns, freelancerAddress string) error {
	result := s.db.Model(&model.Project{}).
		Where("id = ? AND status = ?", id, model.ProjectStatusOpen).
		Updates(map[string]interface{}{
			"status":                      model.ProjectStatusClosed,
			"assigned_freelancer_ens":     freelancerEns,
			"assigned_freelancer_address": freelancerAddress,
		})
	if result.Error != nil {
		return fmt.Errorf("关闭项目失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("关闭项目失败: 项目 %d 不存在或已关闭", id)
	}
	return nil
}

// CreateProject 创建项目
func (s *Store) CreateProject(project *model.Project) error {
	if project.Status == "" {
		project.Status = model.ProjectStatusOpen
	}
	if err := s.db.Create(project).Error; err != nil {
		return fmt.Errorf("创建项目失败: %w", err)
	}
	return nil
}

// ListProjects 获取项目列表，status 为空时返回全部
func (s *Store) ListProjects(status string) ([]model.Project, error) {
	var projects []model.Project
	query := s.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("查询项目列表失败: %w", err)
	}
	return projects, nil
}

// CreateSubmission 创建提交记录
func (s *Store) CreateSubmission(sub *model.Submission) error {
	if sub.Status == "" {
		sub.Status = model.SubmissionStatusPending
	}
	if err := s.db.Create(sub).Error; err != nil {
		return fmt.Errorf("创建提交记录失败: %w", err)
	}
	return nil
}

// AddBalance 原子累加余额，账户不存在时先创建
func (s *Store) AddBalance(walletAddress string, amount int64) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"amount": gorm.Expr("balances.amount + ?", amount),
		}),
	}).Create(&model.Balance{
		WalletAddress: walletAddress,
		Amount:        amount,
	}).Error
	if err != nil {
		return fmt.Errorf("更新余额失败: %w", err)
	}
	return nil
}

// GetBalance 查询余额，账户不存在时返回0
func (s *Store) GetBalance(walletAddress string) (int64, error) {
	var balance model.Balance
	err := s.db.Where("wallet_address = ?", walletAddress).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("查询余额失败: %w", err)
	}
	return balance.Amount, nil
}

// GetOrCreateSkill 按名称（大小写不敏感）查找技能，不存在则创建
func (s *Store) GetOrCreateSkill(name string) (*model.Skill, error) {
	var skill model.Skill
	err := s.db.Where("LOWER(name) = LOWER(?)", name).First(&skill).Error
	if err == nil {
		return &skill, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}

	skill = model.Skill{Name: name}
	if err := s.db.Create(&skill).Error; err != nil {
		return nil, fmt.Errorf("创建技能失败: %w", err)
	}
	return &skill, nil
}

// GrantSkill 授予技能，已持有时返回 false, nil
func (s *Store) GrantSkill(walletAddress string, skillID int64) (bool, error) {
	var count int64
	err := s.db.Model(&model.UserSkill{}).
		Where("wallet_address = ? AND skill_id = ?", walletAddress, skillID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("查询技能授予记录失败: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	grant := model.UserSkill{WalletAddress: walletAddress, SkillID: skillID}
	if err := s.db.Create(&grant).Error; err != nil {
		return false, fmt.Errorf("授予技能失败: %w", err)
	}
	return true, nil
}

// CountUserSkills 统计某个地址持有的技能数量
func (s *Store) CountUserSkills(walletAddress string) (int64, error) {
	var count int64
	err := s.db.Model(&model.UserSkill{}).
		Where("wallet_address = ?", walletAddress).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("查询技能授予记录失败: %w", err)
	}
	return count, nil
}
