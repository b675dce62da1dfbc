package dto

// GenerateQuestionsRequest is the body for both the sync and async
// generation endpoints.
type GenerateQuestionsRequest struct {
	BankID       uint     `json:"bank_id" binding:"required"`
	Subject      string   `json:"subject" binding:"required"`
	Count        int      `json:"count" binding:"required,min=1"`
	Difficulty   string   `json:"difficulty" binding:"required,oneof=easy medium hard"`
	Types        []string `json:"types" binding:"omitempty,dive,oneof=single_choice multiple_choice true_false fill_blank short_answer"`
	Language     string   `json:"language"`
	CustomPrompt string   `json:"custom_prompt"`
	Provider     string   `json:"provider"` // optional override of the default credential set
}

type CreateAIConfigRequest struct {
	Provider  string `json:"provider" binding:"required,oneof=openai deepseek anthropic openai_compatible"`
	APIKey    string `json:"api_key" binding:"required"`
	Endpoint  string `json:"endpoint"`
	Model     string `json:"model"`
	IsDefault bool   `json:"is_default"`
}

type StartAttemptRequest struct {
	BankID uint `json:"bank_id" binding:"required"`
}

type AnswerSubmission struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	UserAnswer string `json:"user_answer"`
}

type SubmitAnswersRequest struct {
	Answers []AnswerSubmission `json:"answers" binding:"required,min=1,dive"`
}
