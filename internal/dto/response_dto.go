package dto

import (
	"time"

	"github.com/vuthanhlam/quizbank/internal/model"
)

type QuestionResponse struct {
	ID          uint               `json:"id"`
	BankID      uint               `json:"bank_id"`
	Text        string             `json:"text"`
	Type        string             `json:"type"`
	Data        model.QuestionData `json:"data"`
	Explanation string             `json:"explanation,omitempty"`
	Difficulty  string             `json:"difficulty"`
	CreatedAt   time.Time          `json:"created_at"`
}

type GenerateQuestionsResponse struct {
	Success             bool               `json:"success"`
	Questions           []QuestionResponse `json:"questions"`
	PartialSuccessCount *int               `json:"partial_success_count,omitempty"`
	ErrorCode           string             `json:"error_code,omitempty"`
}

type StartAsyncResponse struct {
	TaskID string `json:"task_id"`
}

type TaskProgressResponse struct {
	TaskID         string             `json:"task_id"`
	Status         string             `json:"status"`
	GeneratedCount int                `json:"generated_count"`
	TotalCount     int                `json:"total_count"`
	Questions      []QuestionResponse `json:"questions,omitempty"`
	ErrorMessage   string             `json:"error_message,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
}

type AIConfigResponse struct {
	ID        uint      `json:"id"`
	Provider  string    `json:"provider"`
	Endpoint  string    `json:"endpoint,omitempty"`
	Model     string    `json:"model,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

type AttemptResponse struct {
	ID         uint      `json:"id"`
	BankID     uint      `json:"bank_id"`
	UserID     uint      `json:"user_id"`
	Status     string    `json:"status"`
	TotalCount int       `json:"total_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type AnswerResultResponse struct {
	QuestionID uint   `json:"question_id"`
	UserAnswer string `json:"user_answer"`
	IsCorrect  bool   `json:"is_correct"`
}

type AttemptResultResponse struct {
	AttemptID    uint                   `json:"attempt_id"`
	CorrectCount int                    `json:"correct_count"`
	TotalCount   int                    `json:"total_count"`
	Answers      []AnswerResultResponse `json:"answers"`
}

type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
