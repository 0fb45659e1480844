package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/types"
)

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error)
	// GetOwnedByID returns nil (no error) when the course does not exist
	// or belongs to another user.
	GetOwnedByID(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID, preloadTree bool) (*types.Course, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Course, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
	CountCreatedBetweenForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) (int64, error)
	CountCreatedBetween(ctx context.Context, tx *gorm.DB, start, end time.Time) (int64, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func orderedTree(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		})
}

func (cr *courseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(courses) == 0 {
		return []*types.Course{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (cr *courseRepo) GetOwnedByID(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID, preloadTree bool) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	q := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", courseID, userID)
	if preloadTree {
		q = orderedTree(q)
	}
	var course types.Course
	if err := q.First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

func (cr *courseRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Course
	if err := orderedTree(transaction.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *courseRepo) DeleteByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", courseID).
		Delete(&types.Course{}).Error
}

func (cr *courseRepo) CountCreatedBetweenForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (cr *courseRepo) CountCreatedBetween(ctx context.Context, tx *gorm.DB, start, end time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
