package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blueskyzii/Latihan-PPKN/internal/catalog"
	"github.com/blueskyzii/Latihan-PPKN/internal/middleware"
	"github.com/blueskyzii/Latihan-PPKN/internal/model"
	"github.com/blueskyzii/Latihan-PPKN/internal/response"
	"github.com/blueskyzii/Latihan-PPKN/internal/service"
	"github.com/blueskyzii/Latihan-PPKN/internal/validator"
)

// DashboardHandler handles the quiz catalog endpoints.
type DashboardHandler struct {
	loader         *catalog.Loader
	sessionService *service.ExamSessionService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(loader *catalog.Loader, sessionService *service.ExamSessionService) *DashboardHandler {
	return &DashboardHandler{
		loader:         loader,
		sessionService: sessionService,
	}
}

// ListQuizzes godoc
// GET /api/v1/quizzes
// Returns the quiz catalog as client-facing cards (no tokens, no file refs).
func (h *DashboardHandler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.loader.Catalog()
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrDataUnavailable)
		return
	}

	cards := make([]model.QuizCard, len(quizzes))
	for i := range quizzes {
		cards[i] = quizzes[i].Card()
	}

	response.Success(c, http.StatusOK, gin.H{"quizzes": cards})
}

// SelectQuiz godoc
// POST /api/v1/quizzes/:quiz_id/select
// Validates the entry token where required, marks the quiz as the client's
// target and discards any previous attempt.
func (h *DashboardHandler) SelectQuiz(c *gin.Context) {
	clientID := middleware.GetClientID(c)
	quizID := c.Param("quiz_id")

	var req model.SelectQuizRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	quiz, err := h.sessionService.SelectQuiz(c.Request.Context(), clientID, quizID, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrQuizNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)
		case errors.Is(err, service.ErrInvalidEntryToken):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidEntryToken)
		case errors.Is(err, catalog.ErrUnavailable):
			response.Fail(c, http.StatusServiceUnavailable, response.ErrDataUnavailable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz.Card()})
}
