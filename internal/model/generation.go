package model

import "time"

// GenerationRequest describes one batch generation call. Immutable once
// submitted.
type GenerationRequest struct {
	BankID       uint     `json:"bank_id"`
	Subject      string   `json:"subject"`
	Count        int      `json:"count"`
	Difficulty   string   `json:"difficulty"` // easy, medium, hard
	Types        []string `json:"types"`
	Language     string   `json:"language"`
	CustomPrompt string   `json:"custom_prompt,omitempty"`
	Provider     string   `json:"provider,omitempty"` // overrides the owner's default credential set
}

// GeneratedQuestion is the normalizer's output, transient until persisted
// as a Question.
type GeneratedQuestion struct {
	Text           string   `json:"text"`
	Type           string   `json:"type"`
	Options        []string `json:"options,omitempty"`
	CorrectAnswers []string `json:"correct_answers"`
	Explanation    string   `json:"explanation,omitempty"`
	Difficulty     string   `json:"difficulty,omitempty"`
	TokenUsage     *int     `json:"token_usage,omitempty"`
}

// Generation task statuses. Transitions are monotonic:
// pending -> processing -> {completed | partial_success | failed}.
const (
	TaskStatusPending        = "pending"
	TaskStatusProcessing     = "processing"
	TaskStatusCompleted      = "completed"
	TaskStatusPartialSuccess = "partial_success"
	TaskStatusFailed         = "failed"
)

// GenerationTask is the progress record for one async generation. Owned by
// the progress store; the orchestrator reads and updates it only through
// the store API.
type GenerationTask struct {
	ID             uint              `json:"id,omitempty"`
	TaskID         string            `json:"task_id"`
	UserID         uint              `json:"user_id"`
	Status         string            `json:"status"`
	GeneratedCount int               `json:"generated_count"`
	TotalCount     int               `json:"total_count"`
	Questions      []Question        `json:"questions,omitempty"`
	Request        GenerationRequest `json:"request"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}

// Terminal reports whether the task has reached a final status.
func (t *GenerationTask) Terminal() bool {
	switch t.Status {
	case TaskStatusCompleted, TaskStatusPartialSuccess, TaskStatusFailed:
		return true
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate store-owned state.
func (t *GenerationTask) Clone() *GenerationTask {
	cp := *t
	if t.Questions != nil {
		cp.Questions = make([]Question, len(t.Questions))
		for i, q := range t.Questions {
			q.Data = q.Data.clone()
			if q.TokenUsage != nil {
				n := *q.TokenUsage
				q.TokenUsage = &n
			}
			cp.Questions[i] = q
		}
	}
	if t.Request.Types != nil {
		cp.Request.Types = append([]string(nil), t.Request.Types...)
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}
