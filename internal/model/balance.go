package model

import (
	"time"

	"gorm.io/gorm"
)

// Balance 每个钱包地址的代币余额，只做累加更新
type Balance struct {
	ID        int64          `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	WalletAddress string `json:"wallet_address" gorm:"not null;uniqueIndex"`
	Amount        int64  `json:"amount" gorm:"not null;default:0"`
}
