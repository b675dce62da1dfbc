package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/vuthanhlam/quizbank/internal/dto"
	"github.com/vuthanhlam/quizbank/internal/model"
	"github.com/vuthanhlam/quizbank/internal/provider"
	"github.com/vuthanhlam/quizbank/internal/service"
)

type GenerationController struct {
	generationService service.GenerationService
	credentialService service.CredentialService
	factory           *provider.Factory
}

func NewGenerationController(
	generationService service.GenerationService,
	credentialService service.CredentialService,
	factory *provider.Factory,
) *GenerationController {
	return &GenerationController{
		generationService: generationService,
		credentialService: credentialService,
		factory:           factory,
	}
}

// userID reads the caller identity set by the routing layer. Auth itself
// is outside this service.
func userID(ctx *gin.Context) (uint, bool) {
	raw := ctx.GetHeader("X-User-ID")
	if raw == "" {
		raw = ctx.Query("user_id")
	}
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "missing or invalid user id"})
		return 0, false
	}
	return uint(val), true
}

func statusForCode(code string) int {
	switch code {
	case service.CodeInvalidRequest, service.CodeCountExceeded, service.CodeNoDataSource, service.CodeUnsupportedProvider:
		return http.StatusBadRequest
	case service.CodeTaskNotFound:
		return http.StatusNotFound
	case service.CodeConfigDecryptionFailed:
		return http.StatusInternalServerError
	case service.CodeParseError, service.CodeGenerationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(ctx *gin.Context, err error) {
	code := service.ErrorCode(err)
	ctx.JSON(statusForCode(code), dto.ErrorResponse{Code: code, Message: err.Error()})
}

func toGenerationRequest(req dto.GenerateQuestionsRequest) model.GenerationRequest {
	return model.GenerationRequest{
		BankID:       req.BankID,
		Subject:      req.Subject,
		Count:        req.Count,
		Difficulty:   req.Difficulty,
		Types:        req.Types,
		Language:     req.Language,
		CustomPrompt: req.CustomPrompt,
		Provider:     req.Provider,
	}
}

func toQuestionResponses(questions []model.Question) []dto.QuestionResponse {
	out := make([]dto.QuestionResponse, len(questions))
	for i, q := range questions {
		copier.Copy(&out[i], &q)
	}
	return out
}

// GenerateSync godoc
// @Summary Generate questions synchronously
// @Description Generates up to the configured maximum count in one blocking call. Larger batches must use the async endpoint.
// @Tags Generation
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Caller user ID"
// @Param request body dto.GenerateQuestionsRequest true "Generation request"
// @Success 200 {object} dto.GenerateQuestionsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /questions/generate [post]
func (c *GenerationController) GenerateSync(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	var req dto.GenerateQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: service.CodeInvalidRequest, Message: err.Error()})
		return
	}

	result, err := c.generationService.GenerateSync(ctx.Request.Context(), uid, toGenerationRequest(req))
	if err != nil {
		log.Warn().Err(err).Uint("userID", uid).Msg("Synchronous generation failed")
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.GenerateQuestionsResponse{
		Success:             result.Success,
		Questions:           toQuestionResponses(result.Questions),
		PartialSuccessCount: result.PartialSuccessCount,
		ErrorCode:           result.ErrorCode,
	})
}

// StartAsync godoc
// @Summary Start an asynchronous generation task
// @Description Returns a task id immediately; poll the task endpoint for progress and results.
// @Tags Generation
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Caller user ID"
// @Param request body dto.GenerateQuestionsRequest true "Generation request"
// @Success 202 {object} dto.StartAsyncResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /questions/generate/async [post]
func (c *GenerationController) StartAsync(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	var req dto.GenerateQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: service.CodeInvalidRequest, Message: err.Error()})
		return
	}

	taskID, err := c.generationService.StartAsync(ctx.Request.Context(), uid, toGenerationRequest(req))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, dto.StartAsyncResponse{TaskID: taskID})
}

// GetProgress godoc
// @Summary Poll an asynchronous generation task
// @Description Returns the task's progress record. Tasks owned by other users report not found.
// @Tags Generation
// @Produce json
// @Param X-User-ID header int true "Caller user ID"
// @Param task_id path string true "Task ID"
// @Success 200 {object} dto.TaskProgressResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /questions/generate/tasks/{task_id} [get]
func (c *GenerationController) GetProgress(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	task, err := c.generationService.GetProgress(ctx.Request.Context(), uid, ctx.Param("task_id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.TaskProgressResponse{
		TaskID:         task.TaskID,
		Status:         task.Status,
		GeneratedCount: task.GeneratedCount,
		TotalCount:     task.TotalCount,
		Questions:      toQuestionResponses(task.Questions),
		ErrorMessage:   task.ErrorMessage,
		CreatedAt:      task.CreatedAt,
		CompletedAt:    task.CompletedAt,
	})
}

// CreateAIConfig godoc
// @Summary Store provider credentials
// @Description Validates the credentials against the provider, then stores the API key encrypted.
// @Tags Generation
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Caller user ID"
// @Param request body dto.CreateAIConfigRequest true "Credential set"
// @Success 201 {object} dto.AIConfigResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /ai-configs [post]
func (c *GenerationController) CreateAIConfig(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	var req dto.CreateAIConfigRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: service.CodeInvalidRequest, Message: err.Error()})
		return
	}

	client, err := c.factory.Resolve(req.Provider)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: service.CodeUnsupportedProvider, Message: err.Error()})
		return
	}
	creds := provider.Credentials{APIKey: req.APIKey, Endpoint: req.Endpoint, Model: req.Model}
	if !client.ValidateCredentials(ctx.Request.Context(), creds) {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: service.CodeInvalidRequest, Message: "credentials were rejected by the provider"})
		return
	}

	cfg, err := c.credentialService.Store(uid, req.Provider, req.APIKey, req.Endpoint, req.Model, req.IsDefault)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	var resp dto.AIConfigResponse
	copier.Copy(&resp, cfg)
	ctx.JSON(http.StatusCreated, resp)
}
