package model

import (
	"time"

	"gorm.io/gorm"
)

// Submission 接单方针对项目提交的工作
type Submission struct {
	ID        int64          `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	ProjectID int64 `json:"project_id" gorm:"not null;index"`

	// 接单方信息
	FreelancerEns     string `json:"freelancer_ens" gorm:"not null"`
	FreelancerAddress string `json:"freelancer_address" gorm:"not null"`

	// 关联的PR信息
	RepoOwner string `json:"repo_owner" gorm:"index:idx_submission_pr"`
	RepoName  string `json:"repo_name" gorm:"index:idx_submission_pr"`
	PrNumber  int    `json:"pr_number" gorm:"index:idx_submission_pr"`
	Merged    bool   `json:"merged" gorm:"default:false"`

	// 状态机，awarded 不会回退
	Status SubmissionStatus `json:"status" gorm:"default:'pending'"`

	// 区块链信息，TxHash 为空表示链上回执缺失
	TxHash            string `json:"tx_hash"`
	ChainSubmissionID *int64 `json:"chain_submission_id"`

	// 关联
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

// SubmissionStatus 提交状态
type SubmissionStatus string

const (
	SubmissionStatusPending     SubmissionStatus = "pending"      // 待结算
	SubmissionStatusProcessing  SubmissionStatus = "processing"   // 结算中
	SubmissionStatusAwarded     SubmissionStatus = "awarded"      // 已发放
	SubmissionStatusAwardFailed SubmissionStatus = "award_failed" // 发放失败
	SubmissionStatusRejected    SubmissionStatus = "rejected"     // 已拒绝
)
