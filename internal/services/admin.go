package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/types"
)

const (
	insightsDefaultDays = 14
	insightsMaxDays     = 90
)

// AdminStats is the operational dashboard snapshot. "Active users" means
// users with at least one model-backed generation today.
type AdminStats struct {
	TotalUsers                 int64 `json:"total_users"`
	UsersRegisteredToday       int64 `json:"users_registered_today"`
	ActiveUsers                int64 `json:"active_users"`
	CoursesGeneratedToday      int64 `json:"courses_generated_today"`
	LessonsGeneratedToday      int64 `json:"lessons_generated_today"`
	TotalContentGeneratedToday int64 `json:"total_content_generated_today"`
	TotalTokenUsage            int64 `json:"total_token_usage"`
	TokenUsageToday            int64 `json:"token_usage_today"`
}

type DailyRegistrationStat struct {
	Date      string `json:"date"`
	UserCount int64  `json:"user_count"`
}

type AdminInsights struct {
	LookbackDays         int                     `json:"lookback_days"`
	DailyRegistrations   []DailyRegistrationStat `json:"daily_registrations"`
	TodayRegisteredUsers []*types.User           `json:"today_registered_users"`
	TokenUsagePerUser    []repos.UserTokenUsage  `json:"token_usage_per_user"`
}

type AdminService interface {
	GetStats(ctx context.Context) (*AdminStats, error)
	GetInsights(ctx context.Context, days int) (*AdminInsights, error)
	ListUsers(ctx context.Context) ([]*types.User, error)
	UpdateUserPlan(ctx context.Context, userID uuid.UUID, planType string) (*types.User, error)
	UpdateUserStatus(ctx context.Context, userID uuid.UUID, isActive bool) (*types.User, error)
	GetTrialDays(ctx context.Context) (int, error)
	SetTrialDays(ctx context.Context, days int) (int, error)
}

type adminService struct {
	userRepo        repos.UserRepo
	courseRepo      repos.CourseRepo
	lessonRepo      repos.LessonRepo
	usageRepo       repos.TokenUsageRepo
	settingsService SettingsService
	log             *logger.Logger
}

func NewAdminService(
	userRepo repos.UserRepo,
	courseRepo repos.CourseRepo,
	lessonRepo repos.LessonRepo,
	usageRepo repos.TokenUsageRepo,
	settingsService SettingsService,
	baseLog *logger.Logger,
) AdminService {
	return &adminService{
		userRepo:        userRepo,
		courseRepo:      courseRepo,
		lessonRepo:      lessonRepo,
		usageRepo:       usageRepo,
		settingsService: settingsService,
		log:             baseLog.With("service", "AdminService"),
	}
}

func (asv *adminService) GetStats(ctx context.Context) (*AdminStats, error) {
	start, end := DayWindowUTC(time.Now())

	totalUsers, err := asv.userRepo.CountAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	usersToday, err := asv.userRepo.CountCreatedBetween(ctx, nil, start, end)
	if err != nil {
		return nil, err
	}
	activeUsers, err := asv.usageRepo.CountDistinctUsersBetween(ctx, nil, start, end)
	if err != nil {
		return nil, err
	}
	coursesToday, err := asv.courseRepo.CountCreatedBetween(ctx, nil, start, end)
	if err != nil {
		return nil, err
	}
	lessonsToday, err := asv.lessonRepo.CountGeneratedBetween(ctx, nil, start, end)
	if err != nil {
		return nil, err
	}
	totalTokens, err := asv.usageRepo.SumTotalTokens(ctx, nil)
	if err != nil {
		return nil, err
	}
	tokensToday, err := asv.usageRepo.SumTotalTokensBetween(ctx, nil, start, end)
	if err != nil {
		return nil, err
	}

	return &AdminStats{
		TotalUsers:                 totalUsers,
		UsersRegisteredToday:       usersToday,
		ActiveUsers:                activeUsers,
		CoursesGeneratedToday:      coursesToday,
		LessonsGeneratedToday:      lessonsToday,
		TotalContentGeneratedToday: coursesToday + lessonsToday,
		TotalTokenUsage:            totalTokens,
		TokenUsageToday:            tokensToday,
	}, nil
}

// GetInsights returns the registration trend over the lookback window, the
// users who signed up today, and cumulative token usage per user. Days
// outside [1, 90] fall back to the 14-day default.
func (asv *adminService) GetInsights(ctx context.Context, days int) (*AdminInsights, error) {
	if days < 1 || days > insightsMaxDays {
		days = insightsDefaultDays
	}
	todayStart, todayEnd := DayWindowUTC(time.Now())
	lookbackStart := todayStart.AddDate(0, 0, -(days - 1))

	dailyRows, err := asv.userRepo.DailyRegistrationCounts(ctx, nil, lookbackStart, todayEnd)
	if err != nil {
		return nil, err
	}
	dailyRegistrations := buildDailySeries(lookbackStart, days, dailyRows)

	todayUsers, err := asv.userRepo.ListCreatedBetween(ctx, nil, todayStart, todayEnd)
	if err != nil {
		return nil, err
	}
	if todayUsers == nil {
		todayUsers = []*types.User{}
	}

	usagePerUser, err := asv.usageRepo.UsagePerUser(ctx, nil, todayStart, todayEnd)
	if err != nil {
		return nil, err
	}
	if usagePerUser == nil {
		usagePerUser = []repos.UserTokenUsage{}
	}

	return &AdminInsights{
		LookbackDays:         days,
		DailyRegistrations:   dailyRegistrations,
		TodayRegisteredUsers: todayUsers,
		TokenUsagePerUser:    usagePerUser,
	}, nil
}

// buildDailySeries zero-fills the per-day registration counts so the series
// always has exactly one entry per day in the window.
func buildDailySeries(start time.Time, days int, rows []repos.DailyRegistrationCount) []DailyRegistrationStat {
	countsByDate := make(map[string]int64, len(rows))
	for _, row := range rows {
		countsByDate[row.Day.UTC().Format("2006-01-02")] = row.Count
	}
	series := make([]DailyRegistrationStat, 0, days)
	for offset := 0; offset < days; offset++ {
		date := start.AddDate(0, 0, offset).Format("2006-01-02")
		series = append(series, DailyRegistrationStat{
			Date:      date,
			UserCount: countsByDate[date],
		})
	}
	return series
}

func (asv *adminService) ListUsers(ctx context.Context) ([]*types.User, error) {
	return asv.userRepo.ListAll(ctx, nil)
}

// UpdateUserPlan sets a non-admin user's plan. Manual assignments clear the
// trial expiry so they stay stable until changed again.
func (asv *adminService) UpdateUserPlan(ctx context.Context, userID uuid.UUID, planType string) (*types.User, error) {
	if planType != types.PlanFree && planType != types.PlanPremium {
		return nil, validationErrorf("plan_type must be one of: free, premium")
	}
	target, err := asv.getTargetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin {
		return nil, validationErrorf("admin plan cannot be changed from this endpoint")
	}
	updates := map[string]interface{}{
		"plan_type":        planType,
		"trial_expires_at": nil,
	}
	if err := asv.userRepo.UpdateFields(ctx, nil, userID, updates); err != nil {
		return nil, err
	}
	asv.log.Info("User plan updated", "user_id", userID, "plan_type", planType)
	return asv.getTargetUser(ctx, userID)
}

func (asv *adminService) UpdateUserStatus(ctx context.Context, userID uuid.UUID, isActive bool) (*types.User, error) {
	target, err := asv.getTargetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin {
		return nil, validationErrorf("admin status cannot be changed from this endpoint")
	}
	if err := asv.userRepo.UpdateFields(ctx, nil, userID, map[string]interface{}{"is_active": isActive}); err != nil {
		return nil, err
	}
	asv.log.Info("User status updated", "user_id", userID, "is_active", isActive)
	return asv.getTargetUser(ctx, userID)
}

func (asv *adminService) GetTrialDays(ctx context.Context) (int, error) {
	return asv.settingsService.GetPremiumTrialDays(ctx, nil)
}

func (asv *adminService) SetTrialDays(ctx context.Context, days int) (int, error) {
	normalized, err := asv.settingsService.SetPremiumTrialDays(ctx, nil, days)
	if err != nil {
		return 0, err
	}
	asv.log.Info("Premium trial days updated", "days", normalized)
	return normalized, nil
}

func (asv *adminService) getTargetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := asv.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return users[0], nil
}
