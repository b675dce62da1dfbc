package model

import (
	"time"

	"gorm.io/gorm"
)

type QuestionBank struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	OwnerID     uint           `json:"owner_id" gorm:"not null;index"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description,omitempty"`
	Questions   []Question     `json:"questions,omitempty" gorm:"foreignKey:BankID"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
