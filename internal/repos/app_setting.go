package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/types"
)

type AppSettingRepo interface {
	Get(ctx context.Context, tx *gorm.DB, key string) (*types.AppSetting, error)
	Upsert(ctx context.Context, tx *gorm.DB, key, value string) error
}

type appSettingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAppSettingRepo(db *gorm.DB, baseLog *logger.Logger) AppSettingRepo {
	return &appSettingRepo{db: db, log: baseLog.With("repo", "AppSettingRepo")}
}

func (sr *appSettingRepo) Get(ctx context.Context, tx *gorm.DB, key string) (*types.AppSetting, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var setting types.AppSetting
	err := transaction.WithContext(ctx).
		Where("key = ?", key).
		First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

func (sr *appSettingRepo) Upsert(ctx context.Context, tx *gorm.DB, key, value string) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	setting := types.AppSetting{Key: key, Value: value}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
		}).
		Create(&setting).Error
}
