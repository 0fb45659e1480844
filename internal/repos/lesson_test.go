package repos_test

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/repos/testutil"
)

func TestLessonRepoOwnershipAndGeneration(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := repos.NewLessonRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "lessonowner@example.com")
	other := testutil.SeedUser(t, ctx, tx, "lessonother@example.com")
	course, module, lessons := testutil.SeedCourseTree(t, ctx, tx, owner.ID, 2)
	lesson := lessons[0]

	got, err := repo.GetOwnedByID(ctx, tx, lesson.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetOwnedByID: %v", err)
	}
	if got == nil {
		t.Fatalf("GetOwnedByID: expected lesson")
	}
	if got.Module == nil || got.Module.Course == nil {
		t.Fatalf("GetOwnedByID: module/course not preloaded")
	}
	if got.Module.ID != module.ID || got.Module.Course.ID != course.ID {
		t.Fatalf("GetOwnedByID: wrong linkage: %+v", got)
	}

	foreign, err := repo.GetOwnedByID(ctx, tx, lesson.ID, other.ID)
	if err != nil {
		t.Fatalf("GetOwnedByID (foreign): %v", err)
	}
	if foreign != nil {
		t.Fatalf("GetOwnedByID (foreign): expected nil")
	}

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	count, err := repo.CountGeneratedBetweenForUser(ctx, tx, owner.ID, start, end)
	if err != nil {
		t.Fatalf("CountGeneratedBetweenForUser: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 generated lessons before generation, got %d", count)
	}

	quiz := datatypes.JSON([]byte(`[{"question":"q","options":["a","b","c","d"],"correct_answer_index":0,"explanation":"e"}]`))
	if err := repo.SetGeneratedContent(ctx, tx, lesson.ID, "# Lesson", quiz, now); err != nil {
		t.Fatalf("SetGeneratedContent: %v", err)
	}

	reloaded, err := repo.GetOwnedByID(ctx, tx, lesson.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetOwnedByID after generation: %v", err)
	}
	if reloaded.Content == nil || *reloaded.Content != "# Lesson" {
		t.Fatalf("content not persisted: %+v", reloaded.Content)
	}
	if reloaded.ContentGeneratedAt == nil {
		t.Fatalf("content_generated_at not set")
	}

	count, err = repo.CountGeneratedBetweenForUser(ctx, tx, owner.ID, start, end)
	if err != nil {
		t.Fatalf("CountGeneratedBetweenForUser after generation: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 generated lesson, got %d", count)
	}

	// Other users' generations never count against this owner.
	count, err = repo.CountGeneratedBetweenForUser(ctx, tx, other.ID, start, end)
	if err != nil {
		t.Fatalf("CountGeneratedBetweenForUser (other): %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 for other user, got %d", count)
	}
}
