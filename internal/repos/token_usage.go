package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/types"
)

type UserTokenUsage struct {
	UserID           uuid.UUID `gorm:"column:user_id" json:"user_id"`
	Email            string    `gorm:"column:email" json:"email"`
	TotalTokens      int64     `gorm:"column:total_tokens" json:"total_tokens"`
	TokenUsageToday  int64     `gorm:"column:token_usage_today" json:"token_usage_today"`
}

type TokenUsageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.TokenUsageLog) ([]*types.TokenUsageLog, error)
	SumTotalTokens(ctx context.Context, tx *gorm.DB) (int64, error)
	SumTotalTokensBetween(ctx context.Context, tx *gorm.DB, start, end time.Time) (int64, error)
	CountDistinctUsersBetween(ctx context.Context, tx *gorm.DB, start, end time.Time) (int64, error)
	CountByUserOperationBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, operation string, start, end time.Time) (int64, error)
	UsagePerUser(ctx context.Context, tx *gorm.DB, todayStart, todayEnd time.Time) ([]UserTokenUsage, error)
}

type tokenUsageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTokenUsageRepo(db *gorm.DB, baseLog *logger.Logger) TokenUsageRepo {
	return &tokenUsageRepo{db: db, log: baseLog.With("repo", "TokenUsageRepo")}
}

func (tr *tokenUsageRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.TokenUsageLog) ([]*types.TokenUsageLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if len(entries) == 0 {
		return []*types.TokenUsageLog{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (tr *tokenUsageRepo) SumTotalTokens(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.TokenUsageLog{}).
		Select("COALESCE(SUM(total_tokens), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (tr *tokenUsageRepo) SumTotalTokensBetween(ctx context.Context, tx *gorm.DB, start, end time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.TokenUsageLog{}).
		Select("COALESCE(SUM(total_tokens), 0)").
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (tr *tokenUsageRepo) CountDistinctUsersBetween(ctx context.Context, tx *gorm.DB, start, end time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.TokenUsageLog{}).
		Where("user_id IS NOT NULL AND created_at >= ? AND created_at < ?", start, end).
		Distinct("user_id").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (tr *tokenUsageRepo) CountByUserOperationBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, operation string, start, end time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.TokenUsageLog{}).
		Where("user_id = ? AND operation = ? AND created_at >= ? AND created_at < ?", userID, operation, start, end).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (tr *tokenUsageRepo) UsagePerUser(ctx context.Context, tx *gorm.DB, todayStart, todayEnd time.Time) ([]UserTokenUsage, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var rows []UserTokenUsage
	if err := transaction.WithContext(ctx).Raw(`
		SELECT u."id" AS user_id,
		       u."email" AS email,
		       COALESCE(SUM(t."total_tokens"), 0) AS total_tokens,
		       COALESCE(SUM(CASE WHEN t."created_at" >= ? AND t."created_at" < ? THEN t."total_tokens" ELSE 0 END), 0) AS token_usage_today
		FROM "user" u
		LEFT JOIN "token_usage_log" t ON t."user_id" = u."id"
		GROUP BY u."id", u."email"
		ORDER BY total_tokens DESC, u."id" ASC
	`, todayStart, todayEnd).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
