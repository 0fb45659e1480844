package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/types"
)

type ProgressService interface {
	UpdateLessonProgress(ctx context.Context, userID, lessonID uuid.UUID, isCompleted bool, quizScore *int) (*types.UserProgress, error)
	GetCourseProgress(ctx context.Context, userID, courseID uuid.UUID) ([]*types.UserProgress, error)
}

type progressService struct {
	courseRepo   repos.CourseRepo
	lessonRepo   repos.LessonRepo
	progressRepo repos.UserProgressRepo
	log          *logger.Logger
}

func NewProgressService(
	courseRepo repos.CourseRepo,
	lessonRepo repos.LessonRepo,
	progressRepo repos.UserProgressRepo,
	baseLog *logger.Logger,
) ProgressService {
	return &progressService{
		courseRepo:   courseRepo,
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		log:          baseLog.With("service", "ProgressService"),
	}
}

// UpdateLessonProgress upserts the caller's progress row for an owned lesson.
// A nil quizScore leaves any previously recorded score untouched.
func (ps *progressService) UpdateLessonProgress(ctx context.Context, userID, lessonID uuid.UUID, isCompleted bool, quizScore *int) (*types.UserProgress, error) {
	lesson, err := ps.lessonRepo.GetOwnedByID(ctx, nil, lessonID, userID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, ErrNotFound
	}
	return ps.progressRepo.Upsert(ctx, nil, &types.UserProgress{
		UserID:      userID,
		LessonID:    lessonID,
		IsCompleted: isCompleted,
		QuizScore:   quizScore,
	})
}

func (ps *progressService) GetCourseProgress(ctx context.Context, userID, courseID uuid.UUID) ([]*types.UserProgress, error) {
	course, err := ps.courseRepo.GetOwnedByID(ctx, nil, courseID, userID, false)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrNotFound
	}
	rows, err := ps.progressRepo.ListByUserAndCourse(ctx, nil, userID, courseID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*types.UserProgress{}
	}
	return rows, nil
}
