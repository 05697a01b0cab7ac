package model

import (
	"time"

	"gorm.io/gorm"
)

// Project 悬赏项目模型
type Project struct {
	ID        int64          `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// 基本信息
	Title       string `json:"title" gorm:"not null" binding:"required"`
	Description string `json:"description" gorm:"type:text"`

	// 发布方信息
	OwnerEns     string `json:"owner_ens" gorm:"not null"`
	OwnerAddress string `json:"owner_address" gorm:"not null"`

	// 奖励信息
	TokenReward int64 `json:"token_reward" gorm:"not null" binding:"required,min=0"`

	// 技能要求（逗号分隔的自由文本）
	RequiredSkills   string `json:"required_skills"`
	CompletionSkills string `json:"completion_skills"`

	// 状态，open -> closed 只发生一次
	Status ProjectStatus `json:"status" gorm:"default:'open'"`

	// 区块链信息
	ChainProjectID *int64 `json:"chain_project_id"`

	// 结算后指定的接单方（结算前为空）
	AssignedFreelancerEns     *string `json:"assigned_freelancer_ens"`
	AssignedFreelancerAddress *string `json:"assigned_freelancer_address"`

	// 关联
	Submissions []Submission `json:"submissions,omitempty" gorm:"foreignKey:ProjectID"`
}

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusOpen   ProjectStatus = "open"   // 进行中
	ProjectStatusClosed ProjectStatus = "closed" // 已结算
)
