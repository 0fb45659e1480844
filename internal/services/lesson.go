package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/types"
)

const lessonSchemaName = "lesson_content"

// LessonContent is the lesson payload returned to the client, flattened with
// its course linkage and the caller's progress rows.
type LessonContent struct {
	ID          uuid.UUID             `json:"id"`
	ModuleID    uuid.UUID             `json:"module_id"`
	CourseID    uuid.UUID             `json:"course_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Content     *string               `json:"content"`
	QuizData    datatypes.JSON        `json:"quiz_data"`
	Progress    []*types.UserProgress `json:"progress"`
}

type LessonService interface {
	// GetOrGenerate returns the lesson content, generating it just in time
	// on first access.
	GetOrGenerate(ctx context.Context, user *types.User, lessonID uuid.UUID) (*LessonContent, error)
}

type lessonService struct {
	db           *gorm.DB
	lessonRepo   repos.LessonRepo
	progressRepo repos.UserProgressRepo
	usageRepo    repos.TokenUsageRepo
	planService  PlanService
	llm          LLMClient
	log          *logger.Logger
}

func NewLessonService(
	db *gorm.DB,
	lessonRepo repos.LessonRepo,
	progressRepo repos.UserProgressRepo,
	usageRepo repos.TokenUsageRepo,
	planService PlanService,
	llm LLMClient,
	baseLog *logger.Logger,
) LessonService {
	return &lessonService{
		db:           db,
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		usageRepo:    usageRepo,
		planService:  planService,
		llm:          llm,
		log:          baseLog.With("service", "LessonService"),
	}
}

// GetOrGenerate serves already-generated lessons without locking. For
// ungenerated lessons it takes a row lock, re-checks content under the lock,
// and only then calls the model, so concurrent requests for the same lesson
// produce exactly one generation and one usage log entry. Content, timestamp,
// quiz, and usage are committed together or not at all.
func (ls *lessonService) GetOrGenerate(ctx context.Context, user *types.User, lessonID uuid.UUID) (*LessonContent, error) {
	lesson, err := ls.lessonRepo.GetOwnedByID(ctx, nil, lessonID, user.ID)
	if err != nil {
		return nil, err
	}
	if lesson == nil || lesson.Module == nil || lesson.Module.Course == nil {
		return nil, ErrNotFound
	}
	course := lesson.Module.Course

	progressRows, err := ls.progressRepo.ListByUserAndLesson(ctx, nil, user.ID, lessonID)
	if err != nil {
		return nil, err
	}

	if lesson.Content != nil && *lesson.Content != "" {
		return ls.formatContent(lesson, course.ID, progressRows), nil
	}

	// Finish generation and persist even if the client goes away; an
	// aborted write after a successful model call would burn quota.
	genCtx := context.WithoutCancel(ctx)

	err = ls.db.WithContext(genCtx).Transaction(func(tx *gorm.DB) error {
		locked, txErr := ls.lessonRepo.GetForUpdate(genCtx, tx, lessonID)
		if txErr != nil {
			return txErr
		}
		// Another request may have generated while we waited on the lock.
		if locked.Content != nil && *locked.Content != "" {
			lesson = locked
			return nil
		}

		if txErr := ls.planService.EnforceLessonLimit(genCtx, tx, user); txErr != nil {
			return txErr
		}

		promptInput := &LessonPromptInput{
			CourseTitle:       course.Title,
			ModuleTitle:       lesson.Module.Title,
			LessonTitle:       lesson.Title,
			LessonDescription: lesson.Description,
			LearningGoal:      course.LearningGoal,
			PreferredLevel:    course.PreferredLevel,
			Language:          &course.Language,
		}
		raw, usage, genErr := ls.llm.GenerateJSON(genCtx, lessonSystemPrompt, buildLessonUserPrompt(promptInput), lessonSchemaName, lessonContentSchema())
		if genErr != nil {
			return &GenerationError{Err: genErr}
		}
		generated, genErr := decodeLessonContent(raw)
		if genErr != nil {
			return &GenerationError{Err: genErr}
		}

		quizJSON, marshalErr := json.Marshal(generated.Quiz)
		if marshalErr != nil {
			return marshalErr
		}
		generatedAt := time.Now().UTC()
		if txErr := ls.lessonRepo.SetGeneratedContent(genCtx, tx, lessonID, generated.ContentMarkdown, datatypes.JSON(quizJSON), generatedAt); txErr != nil {
			return txErr
		}

		userID := user.ID
		if _, txErr := ls.usageRepo.Create(genCtx, tx, []*types.TokenUsageLog{{
			UserID:       &userID,
			Operation:    types.UsageOperationLessonContent,
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
			TotalTokens:  usage.TotalTokens,
		}}); txErr != nil {
			return txErr
		}

		content := generated.ContentMarkdown
		lesson.Content = &content
		lesson.QuizData = datatypes.JSON(quizJSON)
		lesson.ContentGeneratedAt = &generatedAt

		ls.log.Info("Lesson content generated",
			"lesson_id", lessonID,
			"course_id", course.ID,
			"user_id", user.ID,
			"total_tokens", usage.TotalTokens,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ls.formatContent(lesson, course.ID, progressRows), nil
}

func (ls *lessonService) formatContent(lesson *types.Lesson, courseID uuid.UUID, progressRows []*types.UserProgress) *LessonContent {
	if progressRows == nil {
		progressRows = []*types.UserProgress{}
	}
	return &LessonContent{
		ID:          lesson.ID,
		ModuleID:    lesson.ModuleID,
		CourseID:    courseID,
		Title:       lesson.Title,
		Description: lesson.Description,
		Content:     lesson.Content,
		QuizData:    lesson.QuizData,
		Progress:    progressRows,
	}
}
