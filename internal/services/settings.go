package services

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/types"
)

const (
	trialDaysMin = 0
	trialDaysMax = 365
)

// NormalizeTrialDays clamps a trial-days value into [0, 365].
func NormalizeTrialDays(days int) int {
	if days < trialDaysMin {
		return trialDaysMin
	}
	if days > trialDaysMax {
		return trialDaysMax
	}
	return days
}

// SettingsService mediates runtime-tunable settings stored in app_setting.
// The premium trial length can be changed by admins without a redeploy; the
// env default only applies while no row exists.
type SettingsService interface {
	GetPremiumTrialDays(ctx context.Context, tx *gorm.DB) (int, error)
	SetPremiumTrialDays(ctx context.Context, tx *gorm.DB, days int) (int, error)
}

type settingsService struct {
	settingRepo      repos.AppSettingRepo
	defaultTrialDays int
	log              *logger.Logger
}

func NewSettingsService(settingRepo repos.AppSettingRepo, defaultTrialDays int, baseLog *logger.Logger) SettingsService {
	return &settingsService{
		settingRepo:      settingRepo,
		defaultTrialDays: NormalizeTrialDays(defaultTrialDays),
		log:              baseLog.With("service", "SettingsService"),
	}
}

func (ss *settingsService) GetPremiumTrialDays(ctx context.Context, tx *gorm.DB) (int, error) {
	setting, err := ss.settingRepo.Get(ctx, tx, types.SettingPremiumTrialDays)
	if err != nil {
		return 0, err
	}
	if setting == nil {
		return ss.defaultTrialDays, nil
	}
	days, convErr := strconv.Atoi(setting.Value)
	if convErr != nil {
		// A corrupt row falls back to the env default rather than failing
		// registration.
		ss.log.Warn("Unparseable premium_trial_days setting", "value", setting.Value)
		return ss.defaultTrialDays, nil
	}
	return NormalizeTrialDays(days), nil
}

func (ss *settingsService) SetPremiumTrialDays(ctx context.Context, tx *gorm.DB, days int) (int, error) {
	normalized := NormalizeTrialDays(days)
	if err := ss.settingRepo.Upsert(ctx, tx, types.SettingPremiumTrialDays, strconv.Itoa(normalized)); err != nil {
		return 0, err
	}
	return normalized, nil
}
