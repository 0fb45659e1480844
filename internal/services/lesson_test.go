package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/repos/testutil"
	"github.com/anamul94/AITutor/internal/types"
)

// stubLLM returns a fixed valid lesson payload and counts invocations.
type stubLLM struct {
	calls atomic.Int64
	delay time.Duration
}

func (s *stubLLM) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, TokenUsage, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	question := map[string]any{
		"question":             "What does this lesson cover?",
		"options":              []any{"a", "b", "c", "d"},
		"correct_answer_index": 0,
		"explanation":          "Option a is the definition given in the lesson.",
	}
	return map[string]any{
		"content_markdown": "## Why This Matters\nGenerated body.",
		"quiz":             []any{question, question, question},
	}, TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30}, nil
}

func seedCommittedUser(t *testing.T, planType string, trialExpiresAt *time.Time) *types.User {
	t.Helper()
	gdb := testutil.DB(t)
	user := &types.User{
		ID:             uuid.New(),
		Email:          uuid.NewString() + "@example.com",
		Password:       "pw",
		IsActive:       true,
		PlanType:       planType,
		TrialExpiresAt: trialExpiresAt,
	}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	t.Cleanup(func() {
		// Usage rows survive user deletion via SET NULL, remove them first.
		gdb.Where("user_id = ?", user.ID).Delete(&types.TokenUsageLog{})
		gdb.Where("id = ?", user.ID).Delete(&types.User{})
	})
	return user
}

func seedCommittedLesson(t *testing.T, userID uuid.UUID) uuid.UUID {
	t.Helper()
	gdb := testutil.DB(t)
	course := &types.Course{ID: uuid.New(), UserID: userID, Title: "course", Topic: "topic", Language: "english"}
	if err := gdb.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	module := &types.CourseModule{ID: uuid.New(), CourseID: course.ID, Title: "module", OrderIndex: 1}
	if err := gdb.Create(module).Error; err != nil {
		t.Fatalf("seed module: %v", err)
	}
	lesson := &types.Lesson{ID: uuid.New(), ModuleID: module.ID, Title: "lesson", OrderIndex: 1}
	if err := gdb.Create(lesson).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
	return lesson.ID
}

func newLessonServiceForTest(t *testing.T, llm LLMClient, dailyLessonLimit int) LessonService {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(gdb, log)
	courseRepo := repos.NewCourseRepo(gdb, log)
	lessonRepo := repos.NewLessonRepo(gdb, log)
	progressRepo := repos.NewUserProgressRepo(gdb, log)
	usageRepo := repos.NewTokenUsageRepo(gdb, log)
	planService := NewPlanService(userRepo, courseRepo, lessonRepo, 1, dailyLessonLimit, log)
	return NewLessonService(gdb, lessonRepo, progressRepo, usageRepo, planService, llm, log)
}

func TestGetOrGenerateConcurrentSingleGeneration(t *testing.T) {
	gdb := testutil.DB(t)
	user := seedCommittedUser(t, types.PlanPremium, nil)
	lessonID := seedCommittedLesson(t, user.ID)

	llm := &stubLLM{delay: 100 * time.Millisecond}
	svc := newLessonServiceForTest(t, llm, 2)

	const workers = 5
	var wg sync.WaitGroup
	results := make([]*LessonContent, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := *user
			results[i], errs[i] = svc.GetOrGenerate(context.Background(), &u, lessonID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i].Content == nil || *results[i].Content == "" {
			t.Fatalf("worker %d: empty content", i)
		}
	}

	if got := llm.calls.Load(); got != 1 {
		t.Fatalf("expected exactly 1 model call, got %d", got)
	}

	var usageCount int64
	if err := gdb.Model(&types.TokenUsageLog{}).
		Where("user_id = ? AND operation = ?", user.ID, types.UsageOperationLessonContent).
		Count(&usageCount).Error; err != nil {
		t.Fatalf("count usage: %v", err)
	}
	if usageCount != 1 {
		t.Fatalf("expected exactly 1 usage row, got %d", usageCount)
	}

	var lesson types.Lesson
	if err := gdb.Where("id = ?", lessonID).First(&lesson).Error; err != nil {
		t.Fatalf("reload lesson: %v", err)
	}
	if lesson.ContentGeneratedAt == nil {
		t.Fatalf("content_generated_at not set")
	}
}

func TestGetOrGenerateFreeLessonQuota(t *testing.T) {
	user := seedCommittedUser(t, types.PlanFree, nil)
	lessonID := seedCommittedLesson(t, user.ID)

	llm := &stubLLM{}
	svc := newLessonServiceForTest(t, llm, 0)

	_, err := svc.GetOrGenerate(context.Background(), user, lessonID)
	var quotaErr *QuotaExceededError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}
	if got := llm.calls.Load(); got != 0 {
		t.Fatalf("quota rejection must not call the model, got %d calls", got)
	}
}

func TestGetOrGenerateForeignLesson(t *testing.T) {
	owner := seedCommittedUser(t, types.PlanPremium, nil)
	other := seedCommittedUser(t, types.PlanPremium, nil)
	lessonID := seedCommittedLesson(t, owner.ID)

	svc := newLessonServiceForTest(t, &stubLLM{}, 2)

	_, err := svc.GetOrGenerate(context.Background(), other, lessonID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign lesson, got %v", err)
	}
}

func TestResolveEffectivePlanPersistsDowngrade(t *testing.T) {
	gdb := testutil.DB(t)
	expired := time.Now().UTC().Add(-time.Hour)
	user := seedCommittedUser(t, types.PlanPremium, &expired)

	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(gdb, log)
	courseRepo := repos.NewCourseRepo(gdb, log)
	lessonRepo := repos.NewLessonRepo(gdb, log)
	planService := NewPlanService(userRepo, courseRepo, lessonRepo, 1, 2, log)

	plan, err := planService.ResolveEffectivePlan(context.Background(), nil, user)
	if err != nil {
		t.Fatalf("ResolveEffectivePlan: %v", err)
	}
	if plan != types.PlanFree {
		t.Fatalf("expected free, got %s", plan)
	}
	if user.PlanType != types.PlanFree {
		t.Fatalf("in-memory user not downgraded")
	}

	reloaded, err := userRepo.GetByIDs(context.Background(), nil, []uuid.UUID{user.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if reloaded[0].PlanType != types.PlanFree {
		t.Fatalf("downgrade not persisted, got %s", reloaded[0].PlanType)
	}
}
