package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/repos/testutil"
	"github.com/anamul94/AITutor/internal/types"
)

func TestTokenUsageRepoAggregates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := repos.NewTokenUsageRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u1 := testutil.SeedUser(t, ctx, tx, "usage1@example.com")
	u2 := testutil.SeedUser(t, ctx, tx, "usage2@example.com")

	entries := []*types.TokenUsageLog{
		{UserID: &u1.ID, Operation: types.UsageOperationCourseSyllabus, InputTokens: 100, OutputTokens: 50, TotalTokens: 150},
		{UserID: &u1.ID, Operation: types.UsageOperationLessonContent, InputTokens: 200, OutputTokens: 100, TotalTokens: 300},
		{UserID: &u2.ID, Operation: types.UsageOperationLessonContent, InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
	if _, err := repo.Create(ctx, tx, entries); err != nil {
		t.Fatalf("Create: %v", err)
	}

	total, err := repo.SumTotalTokens(ctx, tx)
	if err != nil {
		t.Fatalf("SumTotalTokens: %v", err)
	}
	if total < 465 {
		t.Fatalf("SumTotalTokens: expected at least 465, got %d", total)
	}

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	distinct, err := repo.CountDistinctUsersBetween(ctx, tx, start, end)
	if err != nil {
		t.Fatalf("CountDistinctUsersBetween: %v", err)
	}
	if distinct < 2 {
		t.Fatalf("CountDistinctUsersBetween: expected at least 2, got %d", distinct)
	}

	lessonOps, err := repo.CountByUserOperationBetween(ctx, tx, u1.ID, types.UsageOperationLessonContent, start, end)
	if err != nil {
		t.Fatalf("CountByUserOperationBetween: %v", err)
	}
	if lessonOps != 1 {
		t.Fatalf("CountByUserOperationBetween: expected 1, got %d", lessonOps)
	}

	perUser, err := repo.UsagePerUser(ctx, tx, start, end)
	if err != nil {
		t.Fatalf("UsagePerUser: %v", err)
	}
	found := false
	for _, row := range perUser {
		if row.UserID == u1.ID {
			found = true
			if row.TotalTokens != 450 || row.TokenUsageToday != 450 {
				t.Fatalf("UsagePerUser: unexpected totals for u1: %+v", row)
			}
		}
	}
	if !found {
		t.Fatalf("UsagePerUser: u1 not present")
	}
}
