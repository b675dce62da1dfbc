package model

import (
	"time"

	"gorm.io/gorm"
)

type QuizAttempt struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	BankID       uint            `json:"bank_id" gorm:"not null;index"`
	UserID       uint            `json:"user_id" gorm:"not null;index"`
	Status       string          `json:"status" gorm:"default:'in_progress'"` // in_progress, finalized
	CorrectCount int             `json:"correct_count"`
	TotalCount   int             `json:"total_count"`
	Details      []AttemptDetail `json:"details,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	SubmittedAt  *time.Time      `json:"submitted_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// AttemptDetail records one graded (attempt, question) pair. Resubmitting
// before the attempt is finalized overwrites the row.
type AttemptDetail struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	AttemptID  uint           `json:"attempt_id" gorm:"not null;index:idx_attempt_question,unique"`
	QuestionID uint           `json:"question_id" gorm:"not null;index:idx_attempt_question,unique"`
	Question   Question       `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	UserAnswer string         `json:"user_answer" gorm:"type:text;not null"`
	IsCorrect  bool           `json:"is_correct"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
