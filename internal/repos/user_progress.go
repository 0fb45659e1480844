package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/types"
)

type CompletedLessonCount struct {
	CourseID uuid.UUID `gorm:"column:course_id"`
	Count    int64     `gorm:"column:count"`
}

type UserProgressRepo interface {
	GetByUserAndLesson(ctx context.Context, tx *gorm.DB, userID, lessonID uuid.UUID) (*types.UserProgress, error)
	ListByUserAndLesson(ctx context.Context, tx *gorm.DB, userID, lessonID uuid.UUID) ([]*types.UserProgress, error)
	ListByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) ([]*types.UserProgress, error)
	Upsert(ctx context.Context, tx *gorm.DB, progress *types.UserProgress) (*types.UserProgress, error)
	CountCompletedByCourseIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, courseIDs []uuid.UUID) ([]CompletedLessonCount, error)
}

type userProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProgressRepo(db *gorm.DB, baseLog *logger.Logger) UserProgressRepo {
	return &userProgressRepo{db: db, log: baseLog.With("repo", "UserProgressRepo")}
}

func (pr *userProgressRepo) GetByUserAndLesson(ctx context.Context, tx *gorm.DB, userID, lessonID uuid.UUID) (*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var progress types.UserProgress
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &progress, nil
}

func (pr *userProgressRepo) ListByUserAndLesson(ctx context.Context, tx *gorm.DB, userID, lessonID uuid.UUID) ([]*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.UserProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *userProgressRepo) ListByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) ([]*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.UserProgress
	if err := transaction.WithContext(ctx).
		Joins(`JOIN "lesson" ON "lesson"."id" = "user_progress"."lesson_id"`).
		Joins(`JOIN "course_module" ON "course_module"."id" = "lesson"."module_id"`).
		Where(`"course_module"."course_id" = ? AND "user_progress"."user_id" = ?`, courseID, userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *userProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, progress *types.UserProgress) (*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	existing, err := pr.GetByUserAndLesson(ctx, transaction, progress.UserID, progress.LessonID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		if progress.ID == uuid.Nil {
			progress.ID = uuid.New()
		}
		if err := transaction.WithContext(ctx).Create(progress).Error; err != nil {
			return nil, err
		}
		return progress, nil
	}
	updates := map[string]interface{}{
		"is_completed": progress.IsCompleted,
	}
	if progress.QuizScore != nil {
		updates["quiz_score"] = *progress.QuizScore
	}
	if err := transaction.WithContext(ctx).
		Model(&types.UserProgress{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return pr.GetByUserAndLesson(ctx, transaction, progress.UserID, progress.LessonID)
}

func (pr *userProgressRepo) CountCompletedByCourseIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, courseIDs []uuid.UUID) ([]CompletedLessonCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var rows []CompletedLessonCount
	if len(courseIDs) == 0 {
		return rows, nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.UserProgress{}).
		Select(`"course_module"."course_id" AS course_id, COUNT(DISTINCT "user_progress"."lesson_id") AS count`).
		Joins(`JOIN "lesson" ON "lesson"."id" = "user_progress"."lesson_id"`).
		Joins(`JOIN "course_module" ON "course_module"."id" = "lesson"."module_id"`).
		Where(`"course_module"."course_id" IN ? AND "user_progress"."user_id" = ? AND "user_progress"."is_completed" = TRUE`, courseIDs, userID).
		Group(`"course_module"."course_id"`).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
