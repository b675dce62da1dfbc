package service

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/vuthanhlam/quizbank/internal/dto"
	"github.com/vuthanhlam/quizbank/internal/model"
	"github.com/vuthanhlam/quizbank/internal/repository"
)

// AttemptService grades submitted answers against stored questions and
// records the per-question outcome.
type AttemptService interface {
	StartAttempt(bankID, userID uint) (*dto.AttemptResponse, error)
	SubmitAnswers(attemptID, userID uint, answers []dto.AnswerSubmission) (*dto.AttemptResultResponse, error)
}

type attemptService struct {
	attemptRepo repository.AttemptRepository
	detailRepo  repository.AttemptDetailRepository
	bankRepo    repository.BankRepository
	verify      VerifyService
}

func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	detailRepo repository.AttemptDetailRepository,
	bankRepo repository.BankRepository,
	verify VerifyService,
) AttemptService {
	return &attemptService{
		attemptRepo: attemptRepo,
		detailRepo:  detailRepo,
		bankRepo:    bankRepo,
		verify:      verify,
	}
}

func (s *attemptService) StartAttempt(bankID, userID uint) (*dto.AttemptResponse, error) {
	bank, err := s.bankRepo.FindByIDWithQuestions(bankID)
	if err != nil {
		return nil, fmt.Errorf("bank %d not found: %w", bankID, err)
	}
	attempt := model.QuizAttempt{
		BankID:     bankID,
		UserID:     userID,
		Status:     "in_progress",
		TotalCount: len(bank.Questions),
	}
	if err := s.attemptRepo.Create(&attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	var resp dto.AttemptResponse
	if err := copier.Copy(&resp, &attempt); err != nil {
		return nil, fmt.Errorf("error preparing response: %w", err)
	}
	return &resp, nil
}

// SubmitAnswers grades every submitted answer and upserts its detail row.
// Grading never fails the batch: a question that cannot be loaded is
// recorded as incorrect and reported in the response.
func (s *attemptService) SubmitAnswers(attemptID, userID uint, answers []dto.AnswerSubmission) (*dto.AttemptResultResponse, error) {
	attempt, err := s.attemptRepo.FindByIDWithDetails(attemptID)
	if err != nil {
		return nil, fmt.Errorf("attempt %d not found: %w", attemptID, err)
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("attempt %d not found", attemptID)
	}
	if attempt.Status == "finalized" {
		return nil, fmt.Errorf("attempt %d is already finalized", attemptID)
	}

	bank, err := s.bankRepo.FindByIDWithQuestions(attempt.BankID)
	if err != nil {
		return nil, fmt.Errorf("bank %d not found: %w", attempt.BankID, err)
	}
	questionMap := make(map[uint]model.Question, len(bank.Questions))
	for _, q := range bank.Questions {
		questionMap[q.ID] = q
	}

	correct := 0
	details := make([]dto.AnswerResultResponse, 0, len(answers))
	for _, ans := range answers {
		question, ok := questionMap[ans.QuestionID]
		if !ok {
			log.Warn().Uint("questionID", ans.QuestionID).Uint("attemptID", attemptID).Msg("Answer submitted for a question outside this bank, skipping")
			continue
		}

		isCorrect := s.verify.IsCorrect(&question, ans.UserAnswer)
		detail := model.AttemptDetail{
			AttemptID:  attemptID,
			QuestionID: ans.QuestionID,
			UserAnswer: ans.UserAnswer,
			IsCorrect:  isCorrect,
		}
		if err := s.detailRepo.Upsert(&detail); err != nil {
			log.Error().Err(err).Uint("questionID", ans.QuestionID).Msg("Failed to persist attempt detail")
			continue
		}
		if isCorrect {
			correct++
		}
		details = append(details, dto.AnswerResultResponse{
			QuestionID: ans.QuestionID,
			UserAnswer: ans.UserAnswer,
			IsCorrect:  isCorrect,
		})
	}

	now := time.Now()
	attempt.CorrectCount = correct
	attempt.Status = "finalized"
	attempt.SubmittedAt = &now
	if err := s.attemptRepo.Update(attempt); err != nil {
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("Failed to finalize attempt")
	}

	return &dto.AttemptResultResponse{
		AttemptID:    attemptID,
		CorrectCount: correct,
		TotalCount:   attempt.TotalCount,
		Answers:      details,
	}, nil
}
