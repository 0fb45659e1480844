package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/types"
)

type CourseModuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, modules []*types.CourseModule) ([]*types.CourseModule, error)
	ListByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseModule, error)
}

type courseModuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseModuleRepo(db *gorm.DB, baseLog *logger.Logger) CourseModuleRepo {
	return &courseModuleRepo{db: db, log: baseLog.With("repo", "CourseModuleRepo")}
}

func (mr *courseModuleRepo) Create(ctx context.Context, tx *gorm.DB, modules []*types.CourseModule) ([]*types.CourseModule, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if len(modules) == 0 {
		return []*types.CourseModule{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (mr *courseModuleRepo) ListByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseModule, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.CourseModule
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
