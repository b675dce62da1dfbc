package model

import (
	"time"

	"gorm.io/gorm"
)

// AIConfig stores one provider credential set for a user. The API key is
// encrypted at rest (AES-GCM, see internal/crypto).
type AIConfig struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	UserID          uint           `json:"user_id" gorm:"not null;index"`
	Provider        string         `json:"provider" gorm:"not null"` // openai, deepseek, anthropic, openai_compatible
	APIKeyEncrypted string         `json:"-" gorm:"type:text;not null"`
	Endpoint        string         `json:"endpoint,omitempty"` // empty means the vendor default
	Model           string         `json:"model,omitempty"`
	IsDefault       bool           `json:"is_default" gorm:"default:false;index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
