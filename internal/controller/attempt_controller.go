package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/vuthanhlam/quizbank/internal/dto"
	"github.com/vuthanhlam/quizbank/internal/service"
)

type AttemptController struct {
	attemptService service.AttemptService
}

func NewAttemptController(attemptService service.AttemptService) *AttemptController {
	return &AttemptController{attemptService: attemptService}
}

// StartAttempt godoc
// @Summary Start a quiz attempt over a question bank
// @Tags Attempts
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Caller user ID"
// @Param request body dto.StartAttemptRequest true "Target bank"
// @Success 201 {object} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	var req dto.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	resp, err := c.attemptService.StartAttempt(req.BankID, uid)
	if err != nil {
		log.Warn().Err(err).Uint("bankID", req.BankID).Msg("Failed to start attempt")
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// SubmitAnswers godoc
// @Summary Submit answers for grading
// @Description Grades each answer against the stored question and finalizes the attempt.
// @Tags Attempts
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Caller user ID"
// @Param attempt_id path int true "Attempt ID"
// @Param request body dto.SubmitAnswersRequest true "Submitted answers"
// @Success 200 {object} dto.AttemptResultResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts/{attempt_id}/answers [post]
func (c *AttemptController) SubmitAnswers(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	attemptID, err := strconv.ParseUint(ctx.Param("attempt_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "invalid attempt id"})
		return
	}
	var req dto.SubmitAnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	result, err := c.attemptService.SubmitAnswers(uint(attemptID), uid, req.Answers)
	if err != nil {
		log.Warn().Err(err).Uint64("attemptID", attemptID).Msg("Answer submission failed")
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, result)
}
