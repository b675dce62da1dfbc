package model

import (
	"time"

	"gorm.io/gorm"
)

type Question struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	BankID      uint         `json:"bank_id" gorm:"not null;index"`
	Text        string       `json:"text" gorm:"type:text;not null"`
	Type        string       `json:"type" gorm:"not null;index"` // single_choice, multiple_choice, true_false, fill_blank, short_answer
	Data        QuestionData `json:"data" gorm:"type:jsonb"`
	Explanation string       `json:"explanation,omitempty" gorm:"type:text"`
	Difficulty  string       `json:"difficulty" gorm:"default:'medium'"` // easy, medium, hard

	// Legacy flat columns for rows created before the structured Data
	// payload existed. Options is newline-joined; the verification engine
	// falls back to these when Data is empty.
	LegacyOptions       string `json:"-" gorm:"column:legacy_options;type:text"`
	LegacyCorrectAnswer string `json:"-" gorm:"column:legacy_correct_answer;type:text"`

	TokenUsage *int           `json:"token_usage,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
