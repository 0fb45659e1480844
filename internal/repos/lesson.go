package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/types"
)

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error)
	// GetOwnedByID loads a lesson with its module and course preloaded,
	// but only when the enclosing course belongs to userID. Returns nil
	// when the lesson is missing or foreign-owned.
	GetOwnedByID(ctx context.Context, tx *gorm.DB, lessonID, userID uuid.UUID) (*types.Lesson, error)
	// GetForUpdate takes a row-level lock on the lesson. Must be called
	// inside a transaction; the lock is held until commit/rollback.
	GetForUpdate(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Lesson, error)
	SetGeneratedContent(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, content string, quizData datatypes.JSON, generatedAt time.Time) error
	CountGeneratedBetweenForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) (int64, error)
	CountGeneratedBetween(ctx context.Context, tx *gorm.DB, start, end time.Time) (int64, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (lr *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	if len(lessons) == 0 {
		return []*types.Lesson{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (lr *lessonRepo) GetOwnedByID(ctx context.Context, tx *gorm.DB, lessonID, userID uuid.UUID) (*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	var lesson types.Lesson
	err := transaction.WithContext(ctx).
		Joins(`JOIN "course_module" ON "course_module"."id" = "lesson"."module_id"`).
		Joins(`JOIN "course" ON "course"."id" = "course_module"."course_id"`).
		Where(`"lesson"."id" = ? AND "course"."user_id" = ?`, lessonID, userID).
		Preload("Module.Course").
		First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lesson, nil
}

func (lr *lessonRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Lesson, error) {
	var lesson types.Lesson
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", lessonID).
		First(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (lr *lessonRepo) SetGeneratedContent(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, content string, quizData datatypes.JSON, generatedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Lesson{}).
		Where("id = ?", lessonID).
		Updates(map[string]interface{}{
			"content":              content,
			"quiz_data":            quizData,
			"content_generated_at": generatedAt,
		}).Error
}

func (lr *lessonRepo) CountGeneratedBetweenForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Lesson{}).
		Joins(`JOIN "course_module" ON "course_module"."id" = "lesson"."module_id"`).
		Joins(`JOIN "course" ON "course"."id" = "course_module"."course_id"`).
		Where(`"course"."user_id" = ?`, userID).
		Where(`"lesson"."content_generated_at" IS NOT NULL AND "lesson"."content_generated_at" >= ? AND "lesson"."content_generated_at" < ?`, start, end).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (lr *lessonRepo) CountGeneratedBetween(ctx context.Context, tx *gorm.DB, start, end time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Lesson{}).
		Where("content_generated_at IS NOT NULL AND content_generated_at >= ? AND content_generated_at < ?", start, end).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
