package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vuthanhlam/quizbank/config"
	"github.com/vuthanhlam/quizbank/internal/model"
	"github.com/vuthanhlam/quizbank/internal/provider"
	"github.com/vuthanhlam/quizbank/internal/repository"
	"github.com/vuthanhlam/quizbank/internal/taskqueue"
)

// GenerationResult is the synchronous-path outcome. Success means at least
// one question persisted; PartialSuccessCount is set (with ErrorCode
// PARTIAL_SUCCESS) when some but not all requested questions made it.
type GenerationResult struct {
	Success             bool             `json:"success"`
	Questions           []model.Question `json:"questions"`
	PartialSuccessCount *int             `json:"partial_success_count,omitempty"`
	ErrorCode           string           `json:"error_code,omitempty"`
}

// OrchestratorRetry tunes the orchestration-level retry around the whole
// provider call. It layers above the HTTP retry inside each client, so the
// combined worst case is MaxAttempts(orchestrator) x MaxAttempts(HTTP)
// requests with both backoff schedules applied; keep both ceilings small.
type OrchestratorRetry struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

type GenerationService interface {
	GenerateSync(ctx context.Context, userID uint, req model.GenerationRequest) (*GenerationResult, error)
	StartAsync(ctx context.Context, userID uint, req model.GenerationRequest) (string, error)
	GetProgress(ctx context.Context, userID uint, taskID string) (*model.GenerationTask, error)
	// RunTask executes one dequeued task; called by the worker pool with
	// a repository bound to the worker's own session.
	RunTask(ctx context.Context, item *taskqueue.Item, questionRepo repository.QuestionRepository)
}

// ProviderResolver resolves a provider client by name. *provider.Factory
// satisfies it.
type ProviderResolver interface {
	Resolve(name string) (provider.Provider, error)
}

type generationService struct {
	factory      ProviderResolver
	credentials  CredentialService
	questionRepo repository.QuestionRepository
	queue        taskqueue.Queue
	progress     taskqueue.ProgressStore
	cfg          config.Generation
	retry        OrchestratorRetry
}

func NewGenerationService(
	factory ProviderResolver,
	credentials CredentialService,
	questionRepo repository.QuestionRepository,
	queue taskqueue.Queue,
	progress taskqueue.ProgressStore,
	cfg *config.Config,
) GenerationService {
	return &generationService{
		factory:      factory,
		credentials:  credentials,
		questionRepo: questionRepo,
		queue:        queue,
		progress:     progress,
		cfg:          cfg.Generation,
		retry:        OrchestratorRetry{MaxAttempts: 2, BaseDelay: 2 * time.Second},
	}
}

func validateRequest(req model.GenerationRequest) error {
	if strings.TrimSpace(req.Subject) == "" {
		return NewError(CodeInvalidRequest, "subject must not be empty")
	}
	if req.Count <= 0 {
		return NewError(CodeInvalidRequest, "count must be positive")
	}
	switch req.Difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return NewError(CodeInvalidRequest, "difficulty must be easy, medium or hard")
	}
	return nil
}

// GenerateSync runs the whole pipeline inline. Requests above the
// configured maximum count are rejected before any network call.
func (s *generationService) GenerateSync(ctx context.Context, userID uint, req model.GenerationRequest) (*GenerationResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Count > s.cfg.MaxSyncCount {
		return nil, NewError(CodeCountExceeded, "requested count exceeds the synchronous limit; use the async endpoint")
	}
	return s.generate(ctx, userID, req, s.questionRepo, nil)
}

// generate is the shared core for both paths. Counts above BatchSize are
// split into per-batch provider calls: one completion cannot carry an
// arbitrary count, since the token budget clamps at the vendor maximum.
// onProgress, when non-nil, is invoked after each successful persist with
// the running count.
func (s *generationService) generate(
	ctx context.Context,
	userID uint,
	req model.GenerationRequest,
	questionRepo repository.QuestionRepository,
	onProgress func(persisted int),
) (*GenerationResult, error) {
	providerName, creds, err := s.credentials.Resolve(userID, req.Provider)
	if err != nil {
		return nil, err
	}

	client, err := s.factory.Resolve(providerName)
	if err != nil {
		return nil, WrapError(CodeUnsupportedProvider, "provider "+providerName+" is not supported", err)
	}

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = req.Count
	}

	var persisted []model.Question
	generatedTotal := 0
	for remaining := req.Count; remaining > 0; remaining -= batchSize {
		batchReq := req
		batchReq.Count = batchSize
		if remaining < batchSize {
			batchReq.Count = remaining
		}

		generated, err := s.callWithRetry(ctx, client, creds, batchReq)
		if err != nil {
			// A failed batch ends the run; earlier batches' questions are
			// already persisted and reported as a partial result.
			if len(persisted) > 0 {
				log.Warn().Err(err).Int("persisted", len(persisted)).Int("requested", req.Count).Msg("Generation batch failed mid-run")
				break
			}
			var parseErr *provider.ParseError
			if errors.As(err, &parseErr) {
				return nil, WrapError(CodeParseError, parseErr.Error(), err)
			}
			return nil, WrapError(CodeGenerationFailed, err.Error(), err)
		}
		generatedTotal += len(generated)

		// Persist each question independently: one bad row is logged and
		// dropped, never aborting the batch.
		for _, g := range generated {
			q, err := toQuestion(req, g)
			if err != nil {
				log.Warn().Err(err).Str("question", truncate(g.Text, 80)).Msg("Skipping malformed generated question")
				continue
			}
			if err := questionRepo.Create(&q); err != nil {
				log.Error().Err(err).Str("question", truncate(g.Text, 80)).Msg("Failed to persist generated question")
				continue
			}
			persisted = append(persisted, q)
			if onProgress != nil {
				onProgress(len(persisted))
			}
		}
	}

	if len(persisted) == 0 {
		return nil, NewError(CodeGenerationFailed, "no generated question could be persisted")
	}

	result := &GenerationResult{Success: true, Questions: persisted}
	if len(persisted) < generatedTotal || len(persisted) < req.Count {
		count := len(persisted)
		result.PartialSuccessCount = &count
		result.ErrorCode = CodePartialSuccess
	}
	return result, nil
}

// callWithRetry re-invokes the whole provider call (prompt re-sent) on
// transient provider errors. Distinct from, and layered above, the HTTP
// retry inside the client.
func (s *generationService) callWithRetry(
	ctx context.Context,
	client provider.Provider,
	creds provider.Credentials,
	req model.GenerationRequest,
) ([]model.GeneratedQuestion, error) {
	attempts := s.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := s.retry.BaseDelay * (1 << (attempt - 1))
			log.Warn().Err(lastErr).Str("provider", client.Name()).Dur("delay", delay).Msg("Retrying provider call")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		generated, err := client.Generate(ctx, creds, req)
		if err == nil {
			return generated, nil
		}
		lastErr = err

		var provErr *provider.Error
		if !errors.As(err, &provErr) || !provErr.Retryable() {
			return nil, err
		}
	}
	return nil, lastErr
}

func toQuestion(req model.GenerationRequest, g model.GeneratedQuestion) (model.Question, error) {
	difficulty := g.Difficulty
	if difficulty == "" {
		difficulty = req.Difficulty
	}

	data := model.QuestionData{Kind: g.Type}
	switch g.Type {
	case model.TypeSingleChoice, model.TypeMultipleChoice:
		data.Choice = &model.ChoiceData{Options: g.Options, CorrectAnswers: g.CorrectAnswers}
	case model.TypeTrueFalse:
		data.Boolean = &model.BooleanData{CorrectAnswer: strings.EqualFold(first(g.CorrectAnswers), "true")}
	case model.TypeFillBlank:
		data.FillBlank = &model.FillBlankData{AcceptedAnswers: g.CorrectAnswers}
	case model.TypeShortAnswer:
		data.ShortAnswer = &model.ShortAnswerData{ReferenceAnswer: first(g.CorrectAnswers)}
	}

	q := model.Question{
		BankID:      req.BankID,
		Text:        g.Text,
		Type:        g.Type,
		Data:        data,
		Explanation: g.Explanation,
		Difficulty:  difficulty,
		TokenUsage:  g.TokenUsage,
	}
	if err := q.Data.Validate(); err != nil {
		return model.Question{}, err
	}
	return q, nil
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// StartAsync writes a pending progress record and enqueues the work, then
// returns immediately; generation begins when a worker dequeues the task.
func (s *generationService) StartAsync(ctx context.Context, userID uint, req model.GenerationRequest) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", err
	}

	taskID := uuid.NewString()
	task := &model.GenerationTask{
		TaskID:     taskID,
		UserID:     userID,
		Status:     model.TaskStatusPending,
		TotalCount: req.Count,
		Request:    req,
		CreatedAt:  time.Now(),
	}
	if err := s.progress.Set(ctx, taskID, task, s.cfg.TaskTTL); err != nil {
		return "", WrapError(CodeGenerationFailed, "failed to create task record", err)
	}
	if err := s.queue.Enqueue(ctx, taskqueue.Item{TaskID: taskID, OwnerID: userID, Request: req}); err != nil {
		return "", WrapError(CodeGenerationFailed, "failed to enqueue task", err)
	}

	log.Info().Str("taskID", taskID).Uint("userID", userID).Int("count", req.Count).Msg("Generation task enqueued")
	return taskID, nil
}

// GetProgress returns the task record, or TASK_NOT_FOUND when it does not
// exist or belongs to another user. The owner check deliberately reports
// not-found rather than forbidden so task ids do not leak across users.
func (s *generationService) GetProgress(ctx context.Context, userID uint, taskID string) (*model.GenerationTask, error) {
	task, err := s.progress.Get(ctx, taskID)
	if err != nil {
		return nil, WrapError(CodeGenerationFailed, "failed to read task record", err)
	}
	if task == nil || task.UserID != userID {
		return nil, NewError(CodeTaskNotFound, "task not found")
	}
	return task.Clone(), nil
}

func (s *generationService) RunTask(ctx context.Context, item *taskqueue.Item, questionRepo repository.QuestionRepository) {
	taskID := item.TaskID

	if err := s.progress.Update(ctx, taskID, func(t *model.GenerationTask) {
		t.Status = model.TaskStatusProcessing
	}); err != nil {
		log.Error().Err(err).Str("taskID", taskID).Msg("Failed to mark task processing")
	}

	result, err := s.generate(ctx, item.OwnerID, item.Request, questionRepo, func(persisted int) {
		if uerr := s.progress.Update(ctx, taskID, func(t *model.GenerationTask) {
			t.GeneratedCount = persisted
		}); uerr != nil {
			log.Warn().Err(uerr).Str("taskID", taskID).Msg("Failed to update task progress")
		}
	})

	now := time.Now()
	uerr := s.progress.Update(ctx, taskID, func(t *model.GenerationTask) {
		t.CompletedAt = &now
		if err != nil {
			t.Status = model.TaskStatusFailed
			t.ErrorMessage = err.Error()
			return
		}
		t.Questions = result.Questions
		t.GeneratedCount = len(result.Questions)
		if result.PartialSuccessCount != nil {
			t.Status = model.TaskStatusPartialSuccess
		} else {
			t.Status = model.TaskStatusCompleted
		}
	})
	if uerr != nil {
		log.Error().Err(uerr).Str("taskID", taskID).Msg("Failed to record task completion")
	}

	if err := s.queue.CompleteTask(ctx, taskID); err != nil {
		log.Error().Err(err).Str("taskID", taskID).Msg("Failed to acknowledge task completion")
	}

	if err != nil {
		log.Error().Err(err).Str("taskID", taskID).Msg("Generation task failed")
	} else {
		log.Info().Str("taskID", taskID).Int("questions", len(result.Questions)).Msg("Generation task finished")
	}
}
