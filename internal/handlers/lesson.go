package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anamul94/AITutor/internal/services"
)

type LessonHandler struct {
	lessonService   services.LessonService
	progressService services.ProgressService
}

func NewLessonHandler(lessonService services.LessonService, progressService services.ProgressService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService, progressService: progressService}
}

// Get serves lesson content, triggering just-in-time generation on first
// access.
func (lh *LessonHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrInvalidCredentials)
		return
	}
	lessonID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	content, err := lh.lessonService.GetOrGenerate(c.Request.Context(), user, lessonID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, content)
}

func (lh *LessonHandler) UpdateProgress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrInvalidCredentials)
		return
	}
	lessonID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	req := struct {
		IsCompleted bool `json:"is_completed"`
		QuizScore   *int `json:"quiz_score"`
	}{IsCompleted: true}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("invalid request body"))
		return
	}
	progress, err := lh.progressService.UpdateLessonProgress(c.Request.Context(), user.ID, lessonID, req.IsCompleted, req.QuizScore)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, progress)
}
