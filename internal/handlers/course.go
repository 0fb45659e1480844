package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/anamul94/AITutor/internal/services"
)

type CourseHandler struct {
	courseService   services.CourseService
	progressService services.ProgressService
}

func NewCourseHandler(courseService services.CourseService, progressService services.ProgressService) *CourseHandler {
	return &CourseHandler{courseService: courseService, progressService: progressService}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func (ch *CourseHandler) Generate(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrInvalidCredentials)
		return
	}
	var req struct {
		Topic          string  `json:"topic"`
		LearningGoal   *string `json:"learning_goal"`
		PreferredLevel *string `json:"preferred_level"`
		Language       *string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("invalid request body"))
		return
	}
	input, err := services.NormalizeSyllabusInput(req.Topic, req.LearningGoal, req.PreferredLevel, req.Language)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	course, err := ch.courseService.GenerateCourse(c.Request.Context(), user, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (ch *CourseHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrInvalidCredentials)
		return
	}
	courseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	course, err := ch.courseService.GetCourse(c.Request.Context(), user.ID, courseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, course)
}

func (ch *CourseHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrInvalidCredentials)
		return
	}
	courses, err := ch.courseService.ListCourses(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, courses)
}

func (ch *CourseHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrInvalidCredentials)
		return
	}
	courseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := ch.courseService.DeleteCourse(c.Request.Context(), user.ID, courseID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ch *CourseHandler) GetProgress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrInvalidCredentials)
		return
	}
	courseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	rows, err := ch.progressService.GetCourseProgress(c.Request.Context(), user.ID, courseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, rows)
}
