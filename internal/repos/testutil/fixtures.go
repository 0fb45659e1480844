package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anamul94/AITutor/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		IsActive: true,
		PlanType: types.PlanFree,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:       uuid.New(),
		UserID:   userID,
		Title:    "course",
		Topic:    "topic",
		Language: "english",
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedCourseModule(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, index int) *types.CourseModule {
	tb.Helper()
	m := &types.CourseModule{
		ID:         uuid.New(),
		CourseID:   courseID,
		Title:      "module",
		OrderIndex: index,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed course module: %v", err)
	}
	return m
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, index int) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		ID:         uuid.New(),
		ModuleID:   moduleID,
		Title:      "lesson",
		OrderIndex: index,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

// SeedCourseTree creates a course with one module and the given number of
// ungenerated lessons.
func SeedCourseTree(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, lessonCount int) (*types.Course, *types.CourseModule, []*types.Lesson) {
	tb.Helper()
	course := SeedCourse(tb, ctx, tx, userID)
	module := SeedCourseModule(tb, ctx, tx, course.ID, 1)
	lessons := make([]*types.Lesson, 0, lessonCount)
	for i := 1; i <= lessonCount; i++ {
		lessons = append(lessons, SeedLesson(tb, ctx, tx, module.ID, i))
	}
	return course, module, lessons
}

func PtrTime(v time.Time) *time.Time { return &v }

func PtrString(v string) *string { return &v }

func PtrInt(v int) *int { return &v }
