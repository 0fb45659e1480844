package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/repos/testutil"
	"github.com/anamul94/AITutor/internal/types"
)

func newAuthServiceForTest(t *testing.T, trialDays int) AuthService {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(gdb, log)
	settingRepo := repos.NewAppSettingRepo(gdb, log)
	settingsService := NewSettingsService(settingRepo, trialDays, log)
	return NewAuthService(userRepo, settingsService, "test-secret", time.Hour, log)
}

func cleanupUserByEmail(t *testing.T, email string) {
	t.Helper()
	gdb := testutil.DB(t)
	t.Cleanup(func() {
		gdb.Where("email = ?", email).Delete(&types.User{})
	})
}

func TestRegisterBootstrapsTrial(t *testing.T) {
	svc := newAuthServiceForTest(t, 7)
	ctx := context.Background()

	email := "trialuser@example.com"
	cleanupUserByEmail(t, email)

	user, err := svc.Register(ctx, "  TrialUser@Example.com ", "secret123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != email {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.PlanType != types.PlanPremium {
		t.Fatalf("expected premium trial, got %s", user.PlanType)
	}
	if user.TrialExpiresAt == nil || !user.TrialExpiresAt.After(time.Now()) {
		t.Fatalf("trial expiry not set in the future: %v", user.TrialExpiresAt)
	}
	if user.Password == "secret123" {
		t.Fatalf("password stored in plaintext")
	}

	_, err = svc.Register(ctx, email, "othersecret")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterZeroTrialDaysStartsFree(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)

	// Pin the runtime setting to zero regardless of any previous value.
	settingRepo := repos.NewAppSettingRepo(gdb, log)
	settingsService := NewSettingsService(settingRepo, 7, log)
	if _, err := settingsService.SetPremiumTrialDays(context.Background(), nil, 0); err != nil {
		t.Fatalf("SetPremiumTrialDays: %v", err)
	}
	t.Cleanup(func() {
		gdb.Where("key = ?", types.SettingPremiumTrialDays).Delete(&types.AppSetting{})
	})

	userRepo := repos.NewUserRepo(gdb, log)
	svc := NewAuthService(userRepo, settingsService, "test-secret", time.Hour, log)

	email := "freeuser@example.com"
	cleanupUserByEmail(t, email)

	user, err := svc.Register(context.Background(), email, "secret123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PlanType != types.PlanFree || user.TrialExpiresAt != nil {
		t.Fatalf("expected free plan without expiry, got %s %v", user.PlanType, user.TrialExpiresAt)
	}
}

func TestLoginAndTokenRoundTrip(t *testing.T) {
	svc := newAuthServiceForTest(t, 0)
	ctx := context.Background()

	email := "loginuser@example.com"
	cleanupUserByEmail(t, email)

	if _, err := svc.Register(ctx, email, "secret123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, user, err := svc.Login(ctx, email, "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}

	resolved, err := svc.UserFromToken(ctx, token)
	if err != nil {
		t.Fatalf("UserFromToken: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("token resolved to wrong user")
	}

	if _, _, err := svc.Login(ctx, email, "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.UserFromToken(ctx, "not-a-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for garbage token, got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newAuthServiceForTest(t, 0)
	ctx := context.Background()

	email := "inactiveuser@example.com"
	cleanupUserByEmail(t, email)

	user, err := svc.Register(ctx, email, "secret123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := gdb.Model(&types.User{}).Where("id = ?", user.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, _, err := svc.Login(ctx, email, "secret123"); !errors.Is(err, ErrInactiveUser) {
		t.Fatalf("expected ErrInactiveUser, got %v", err)
	}
}
