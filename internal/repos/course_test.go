package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/repos/testutil"
	"github.com/anamul94/AITutor/internal/types"
)

func TestCourseRepoOwnership(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := repos.NewCourseRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "courseowner@example.com")
	other := testutil.SeedUser(t, ctx, tx, "courseother@example.com")
	course, _, lessons := testutil.SeedCourseTree(t, ctx, tx, owner.ID, 3)

	got, err := repo.GetOwnedByID(ctx, tx, course.ID, owner.ID, true)
	if err != nil {
		t.Fatalf("GetOwnedByID: %v", err)
	}
	if got == nil {
		t.Fatalf("GetOwnedByID: expected course")
	}
	if len(got.Modules) != 1 || len(got.Modules[0].Lessons) != len(lessons) {
		t.Fatalf("GetOwnedByID: tree not preloaded: %+v", got)
	}

	foreign, err := repo.GetOwnedByID(ctx, tx, course.ID, other.ID, false)
	if err != nil {
		t.Fatalf("GetOwnedByID (foreign): %v", err)
	}
	if foreign != nil {
		t.Fatalf("GetOwnedByID (foreign): expected nil, got %+v", foreign)
	}

	missing, err := repo.GetOwnedByID(ctx, tx, uuid.New(), owner.ID, false)
	if err != nil {
		t.Fatalf("GetOwnedByID (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("GetOwnedByID (missing): expected nil")
	}

	list, err := repo.ListByUserID(ctx, tx, owner.ID)
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListByUserID: expected 1 course, got %d", len(list))
	}
}

func TestCourseRepoDeleteCascades(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	courseRepo := repos.NewCourseRepo(db, testutil.Logger(t))
	progressRepo := repos.NewUserProgressRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "cascade@example.com")
	course, _, lessons := testutil.SeedCourseTree(t, ctx, tx, owner.ID, 2)

	if _, err := progressRepo.Upsert(ctx, tx, &types.UserProgress{
		UserID:      owner.ID,
		LessonID:    lessons[0].ID,
		IsCompleted: true,
	}); err != nil {
		t.Fatalf("Upsert progress: %v", err)
	}

	if err := courseRepo.DeleteByID(ctx, tx, course.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}

	var moduleCount int64
	if err := tx.Model(&types.CourseModule{}).Where("course_id = ?", course.ID).Count(&moduleCount).Error; err != nil {
		t.Fatalf("count modules: %v", err)
	}
	if moduleCount != 0 {
		t.Fatalf("expected modules cascaded, got %d", moduleCount)
	}

	var lessonCount int64
	if err := tx.Model(&types.Lesson{}).Where("id IN ?", []uuid.UUID{lessons[0].ID, lessons[1].ID}).Count(&lessonCount).Error; err != nil {
		t.Fatalf("count lessons: %v", err)
	}
	if lessonCount != 0 {
		t.Fatalf("expected lessons cascaded, got %d", lessonCount)
	}

	remaining, err := progressRepo.GetByUserAndLesson(ctx, tx, owner.ID, lessons[0].ID)
	if err != nil {
		t.Fatalf("GetByUserAndLesson: %v", err)
	}
	if remaining != nil {
		t.Fatalf("expected progress cascaded, got %+v", remaining)
	}
}

func TestCourseRepoCountCreatedBetweenForUser(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := repos.NewCourseRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "coursecount@example.com")
	testutil.SeedCourse(t, ctx, tx, owner.ID)
	testutil.SeedCourse(t, ctx, tx, owner.ID)

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	count, err := repo.CountCreatedBetweenForUser(ctx, tx, owner.ID, start, end)
	if err != nil {
		t.Fatalf("CountCreatedBetweenForUser: %v", err)
	}
	if count != 2 {
		t.Fatalf("CountCreatedBetweenForUser: expected 2, got %d", count)
	}

	count, err = repo.CountCreatedBetweenForUser(ctx, tx, owner.ID, start.AddDate(0, 0, -2), start.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("CountCreatedBetweenForUser (yesterday): %v", err)
	}
	if count != 0 {
		t.Fatalf("CountCreatedBetweenForUser (yesterday): expected 0, got %d", count)
	}
}
