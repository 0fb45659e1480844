package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/types"
)

// DayWindowUTC returns the half-open UTC calendar-day window [start, end)
// containing now. Daily quotas are counted against this window.
func DayWindowUTC(now time.Time) (time.Time, time.Time) {
	utc := now.UTC()
	start := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

// EffectivePlan computes the plan a user is entitled to at the given instant.
// A premium plan whose trial has expired evaluates as free; persisting the
// downgrade is the caller's concern.
func EffectivePlan(now time.Time, planType string, trialExpiresAt *time.Time) string {
	if planType == types.PlanPremium && trialExpiresAt != nil && !trialExpiresAt.After(now) {
		return types.PlanFree
	}
	return planType
}

type PlanService interface {
	ResolveEffectivePlan(ctx context.Context, tx *gorm.DB, user *types.User) (string, error)
	EnforceCourseLimit(ctx context.Context, tx *gorm.DB, user *types.User) error
	EnforceLessonLimit(ctx context.Context, tx *gorm.DB, user *types.User) error
}

type planService struct {
	userRepo         repos.UserRepo
	courseRepo       repos.CourseRepo
	lessonRepo       repos.LessonRepo
	dailyCourseLimit int
	dailyLessonLimit int
	log              *logger.Logger
}

func NewPlanService(
	userRepo repos.UserRepo,
	courseRepo repos.CourseRepo,
	lessonRepo repos.LessonRepo,
	dailyCourseLimit int,
	dailyLessonLimit int,
	baseLog *logger.Logger,
) PlanService {
	return &planService{
		userRepo:         userRepo,
		courseRepo:       courseRepo,
		lessonRepo:       lessonRepo,
		dailyCourseLimit: dailyCourseLimit,
		dailyLessonLimit: dailyLessonLimit,
		log:              baseLog.With("service", "PlanService"),
	}
}

// ResolveEffectivePlan evaluates the user's plan lazily: no scheduler expires
// trials, the first request after expiry observes the downgrade. The persisted
// downgrade keeps admin listings consistent with what the user experiences;
// the in-memory user is updated either way.
func (ps *planService) ResolveEffectivePlan(ctx context.Context, tx *gorm.DB, user *types.User) (string, error) {
	effective := EffectivePlan(time.Now(), user.PlanType, user.TrialExpiresAt)
	if effective == user.PlanType {
		return effective, nil
	}
	if err := ps.userRepo.UpdateFields(ctx, tx, user.ID, map[string]interface{}{"plan_type": effective}); err != nil {
		return "", err
	}
	ps.log.Info("Trial expired, user downgraded", "user_id", user.ID, "plan_type", effective)
	user.PlanType = effective
	return effective, nil
}

// EnforceCourseLimit rejects course generation once a free user has created
// dailyCourseLimit courses in the current UTC day. Premium users pass through.
func (ps *planService) EnforceCourseLimit(ctx context.Context, tx *gorm.DB, user *types.User) error {
	plan, err := ps.ResolveEffectivePlan(ctx, tx, user)
	if err != nil {
		return err
	}
	if plan != types.PlanFree {
		return nil
	}
	start, end := DayWindowUTC(time.Now())
	count, err := ps.courseRepo.CountCreatedBetweenForUser(ctx, tx, user.ID, start, end)
	if err != nil {
		return err
	}
	if count >= int64(ps.dailyCourseLimit) {
		return &QuotaExceededError{Resource: "course", Limit: ps.dailyCourseLimit}
	}
	return nil
}

// EnforceLessonLimit rejects lesson generation once a free user has had
// dailyLessonLimit lessons generated across their courses in the current UTC
// day. The count keys off content_generated_at, so pre-created empty lessons
// never count.
func (ps *planService) EnforceLessonLimit(ctx context.Context, tx *gorm.DB, user *types.User) error {
	plan, err := ps.ResolveEffectivePlan(ctx, tx, user)
	if err != nil {
		return err
	}
	if plan != types.PlanFree {
		return nil
	}
	start, end := DayWindowUTC(time.Now())
	count, err := ps.lessonRepo.CountGeneratedBetweenForUser(ctx, tx, user.ID, start, end)
	if err != nil {
		return err
	}
	if count >= int64(ps.dailyLessonLimit) {
		return &QuotaExceededError{Resource: "lessons", Limit: ps.dailyLessonLimit}
	}
	return nil
}
