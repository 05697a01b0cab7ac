package model

import (
	"time"

	"gorm.io/gorm"
)

// Skill 技能凭证，名称大小写不敏感唯一，首次引用时惰性创建
type Skill struct {
	ID        int64          `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Name        string `json:"name" gorm:"not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
}

// UserSkill 技能授予记录，(钱包地址, 技能) 唯一，重复授予视为无操作
type UserSkill struct {
	ID        int64          `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	WalletAddress string `json:"wallet_address" gorm:"not null;uniqueIndex:idx_user_skill"`
	SkillID       int64  `json:"skill_id" gorm:"not null;uniqueIndex:idx_user_skill"`

	// 关联
	Skill Skill `json:"skill,omitempty" gorm:"foreignKey:SkillID"`
}
