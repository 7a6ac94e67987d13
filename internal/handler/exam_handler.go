package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blueskyzii/Latihan-PPKN/internal/catalog"
	"github.com/blueskyzii/Latihan-PPKN/internal/exam"
	"github.com/blueskyzii/Latihan-PPKN/internal/middleware"
	"github.com/blueskyzii/Latihan-PPKN/internal/model"
	"github.com/blueskyzii/Latihan-PPKN/internal/response"
	"github.com/blueskyzii/Latihan-PPKN/internal/service"
	"github.com/blueskyzii/Latihan-PPKN/internal/validator"
)

// ExamHandler handles the exam runner endpoints. Every route requires a
// client id; the session service does the actual work.
type ExamHandler struct {
	sessionService *service.ExamSessionService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(sessionService *service.ExamSessionService) *ExamHandler {
	return &ExamHandler{sessionService: sessionService}
}

// OpenExam godoc
// POST /api/v1/exam/open
// Resumes the persisted attempt at the selected quiz or starts a fresh one.
// Returns the paper (questions without answers) plus the restored state.
func (h *ExamHandler) OpenExam(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	var req model.OpenExamRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	paper, err := h.sessionService.OpenExam(c.Request.Context(), clientID, req.Fresh)
	if err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, paper)
}

// GetState godoc
// GET /api/v1/exam/state
// Returns the rendering projection: current question, palette, timer,
// violation count. Read-only; never fires the expiry transition.
func (h *ExamHandler) GetState(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	state, err := h.sessionService.State(clientID, time.Now())
	if err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// GetActive godoc
// GET /api/v1/exam/active
// Reports whether an attempt is in progress, so the client can decide
// whether to warn before navigating away.
func (h *ExamHandler) GetActive(c *gin.Context) {
	clientID := middleware.GetClientID(c)
	response.Success(c, http.StatusOK, gin.H{"active": h.sessionService.Active(clientID)})
}

// SelectAnswer godoc
// POST /api/v1/exam/answer
func (h *ExamHandler) SelectAnswer(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.SelectAnswer(c.Request.Context(), clientID, *req.Index, req.Option); err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"saved": true, "index": *req.Index})
}

// Navigate godoc
// POST /api/v1/exam/navigate
func (h *ExamHandler) Navigate(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.Navigate(c.Request.Context(), clientID, *req.Index); err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"current_index": *req.Index})
}

// Timer godoc
// GET /api/v1/exam/timer
// Performs one tick. When the deadline has passed this triggers the forced
// finish and returns the terminal result.
func (h *ExamHandler) Timer(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	tick, result, err := h.sessionService.Tick(c.Request.Context(), clientID, time.Now())
	if err != nil {
		failExam(c, err)
		return
	}

	if result != nil {
		response.Success(c, http.StatusOK, gin.H{
			"finished": true,
			"forced":   true,
			"result":   result,
		})
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"remaining_seconds": int(tick.Remaining.Seconds()),
		"display":           tick.Display,
		"low_time":          tick.LowTime,
	})
}

// RecordViolation godoc
// POST /api/v1/exam/violation
// Counts one focus-loss signal. Reaching the limit hard-resets the attempt.
func (h *ExamHandler) RecordViolation(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	res, err := h.sessionService.RecordViolation(c.Request.Context(), clientID)
	if err != nil {
		failExam(c, err)
		return
	}

	if res.ThresholdReached {
		response.Fail(c, http.StatusConflict, response.ErrViolationLimit)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"violation_count": res.Count,
		"max_violations":  res.Max,
	})
}

// Finish godoc
// POST /api/v1/exam/finish
// Submits the attempt. A voluntary finish with unanswered questions and time
// remaining is rejected with the unanswered count.
func (h *ExamHandler) Finish(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	var req model.FinishRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	result, err := h.sessionService.Finish(c.Request.Context(), clientID, req.Forced)
	if err != nil {
		var incomplete *exam.IncompleteError
		if errors.As(err, &incomplete) {
			response.FailWithFields(c, http.StatusConflict, response.ErrIncomplete, map[string]string{
				"unanswered": strconv.Itoa(incomplete.Unanswered),
			})
			return
		}
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// HardReset godoc
// POST /api/v1/exam/reset
// Discards the attempt and its snapshot unconditionally.
func (h *ExamHandler) HardReset(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	if err := h.sessionService.HardReset(c.Request.Context(), clientID); err != nil {
		failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reset": true})
}

// failExam maps domain errors onto response codes.
func failExam(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoActiveSession):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
	case errors.Is(err, service.ErrNoQuizSelected):
		response.Fail(c, http.StatusConflict, response.ErrNoQuizSelected)
	case errors.Is(err, exam.ErrNotActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
	case errors.Is(err, exam.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidIndex)
	case errors.Is(err, exam.ErrUnknownOption):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownOption)
	case errors.Is(err, exam.ErrNoQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	case errors.Is(err, catalog.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)
	case errors.Is(err, catalog.ErrUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrDataUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
