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

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := repos.NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*types.User{
		{
			ID:       uuid.New(),
			Email:    "userrepo@example.com",
			Password: "pw",
			IsActive: true,
			PlanType: types.PlanFree,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	gotByIDs, err := repo.GetByIDs(ctx, tx, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	gotByEmails, err := repo.GetByEmails(ctx, tx, []string{created[0].Email})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(gotByEmails) != 1 || gotByEmails[0].Email != created[0].Email {
		t.Fatalf("GetByEmails: unexpected result: %+v", gotByEmails)
	}

	exists, err := repo.EmailExists(ctx, tx, created[0].Email)
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}

	exists, err = repo.EmailExists(ctx, tx, "does-not-exist@example.com")
	if err != nil {
		t.Fatalf("EmailExists (missing): %v", err)
	}
	if exists {
		t.Fatalf("EmailExists (missing): expected false")
	}

	if err := repo.UpdateFields(ctx, tx, created[0].ID, map[string]interface{}{
		"plan_type": types.PlanPremium,
		"is_active": false,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	updated, err := repo.GetByIDs(ctx, tx, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs after update: %v", err)
	}
	if updated[0].PlanType != types.PlanPremium || updated[0].IsActive {
		t.Fatalf("UpdateFields: not applied: %+v", updated[0])
	}
}

func TestUserRepoDailyRegistrationCounts(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := repos.NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u1 := testutil.SeedUser(t, ctx, tx, "daily1@example.com")
	u2 := testutil.SeedUser(t, ctx, tx, "daily2@example.com")
	_ = u1
	_ = u2

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	count, err := repo.CountCreatedBetween(ctx, tx, start, end)
	if err != nil {
		t.Fatalf("CountCreatedBetween: %v", err)
	}
	if count < 2 {
		t.Fatalf("CountCreatedBetween: expected at least 2, got %d", count)
	}

	rows, err := repo.DailyRegistrationCounts(ctx, tx, start, end)
	if err != nil {
		t.Fatalf("DailyRegistrationCounts: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("DailyRegistrationCounts: expected 1 bucket, got %d", len(rows))
	}
	if rows[0].Count < 2 {
		t.Fatalf("DailyRegistrationCounts: expected at least 2 registrations, got %d", rows[0].Count)
	}
}
