package repos_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/repos/testutil"
	"github.com/anamul94/AITutor/internal/types"
)

func TestUserProgressRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := repos.NewUserProgressRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "progress@example.com")
	course, _, lessons := testutil.SeedCourseTree(t, ctx, tx, owner.ID, 2)
	lesson := lessons[0]

	created, err := repo.Upsert(ctx, tx, &types.UserProgress{
		UserID:      owner.ID,
		LessonID:    lesson.ID,
		IsCompleted: true,
		QuizScore:   testutil.PtrInt(80),
	})
	if err != nil {
		t.Fatalf("Upsert (create): %v", err)
	}
	if !created.IsCompleted || created.QuizScore == nil || *created.QuizScore != 80 {
		t.Fatalf("Upsert (create): unexpected row: %+v", created)
	}

	// A nil score on a later upsert must not erase the recorded one.
	updated, err := repo.Upsert(ctx, tx, &types.UserProgress{
		UserID:      owner.ID,
		LessonID:    lesson.ID,
		IsCompleted: false,
		QuizScore:   nil,
	})
	if err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("Upsert (update): expected same row, got %s and %s", created.ID, updated.ID)
	}
	if updated.IsCompleted {
		t.Fatalf("Upsert (update): is_completed not updated")
	}
	if updated.QuizScore == nil || *updated.QuizScore != 80 {
		t.Fatalf("Upsert (update): quiz_score should be preserved, got %+v", updated.QuizScore)
	}

	byCourse, err := repo.ListByUserAndCourse(ctx, tx, owner.ID, course.ID)
	if err != nil {
		t.Fatalf("ListByUserAndCourse: %v", err)
	}
	if len(byCourse) != 1 {
		t.Fatalf("ListByUserAndCourse: expected 1 row, got %d", len(byCourse))
	}
}

func TestUserProgressRepoCountCompleted(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := repos.NewUserProgressRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "completed@example.com")
	course, _, lessons := testutil.SeedCourseTree(t, ctx, tx, owner.ID, 3)

	for i, lesson := range lessons {
		if _, err := repo.Upsert(ctx, tx, &types.UserProgress{
			UserID:      owner.ID,
			LessonID:    lesson.ID,
			IsCompleted: i < 2,
		}); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	rows, err := repo.CountCompletedByCourseIDs(ctx, tx, owner.ID, []uuid.UUID{course.ID})
	if err != nil {
		t.Fatalf("CountCompletedByCourseIDs: %v", err)
	}
	if len(rows) != 1 || rows[0].CourseID != course.ID || rows[0].Count != 2 {
		t.Fatalf("CountCompletedByCourseIDs: expected 2 completed, got %+v", rows)
	}
}
