package services

import (
	"testing"
	"time"

	"github.com/anamul94/AITutor/internal/types"
)

func TestEffectivePlan(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name           string
		planType       string
		trialExpiresAt *time.Time
		want           string
	}{
		{"free stays free", types.PlanFree, nil, types.PlanFree},
		{"free with stale expiry stays free", types.PlanFree, &past, types.PlanFree},
		{"premium without expiry stays premium", types.PlanPremium, nil, types.PlanPremium},
		{"premium trial still running", types.PlanPremium, &future, types.PlanPremium},
		{"premium trial expired", types.PlanPremium, &past, types.PlanFree},
		{"premium trial expiring exactly now", types.PlanPremium, &now, types.PlanFree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectivePlan(now, tt.planType, tt.trialExpiresAt)
			if got != tt.want {
				t.Fatalf("EffectivePlan(%s, %v) = %s, want %s", tt.planType, tt.trialExpiresAt, got, tt.want)
			}
		})
	}
}

func TestDayWindowUTC(t *testing.T) {
	// 23:30 in UTC+2 is 21:30 UTC, so the window is the UTC day, not the
	// local one.
	loc := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2025, 6, 15, 23, 30, 0, 0, loc)

	start, end := DayWindowUTC(now)
	wantStart := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantStart.Add(24 * time.Hour)) {
		t.Fatalf("end = %v, want %v", end, wantStart.Add(24*time.Hour))
	}
	if !start.Before(now.UTC()) || !end.After(now.UTC()) {
		t.Fatalf("window [%v, %v) does not contain %v", start, end, now.UTC())
	}
}

func TestNormalizeTrialDays(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-5, 0},
		{0, 0},
		{7, 7},
		{365, 365},
		{400, 365},
	}
	for _, tt := range tests {
		if got := NormalizeTrialDays(tt.in); got != tt.want {
			t.Fatalf("NormalizeTrialDays(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
