package scheduler

import (
	"testing"
	"time"

	"github.com/jacobdurrah/auction-bdding/pkg/config"
)

func TestClassify(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		closing time.Time
		want    Tier
	}{
		{"45 minutes out", now.Add(45 * time.Minute), TierImmediate},
		{"2 hours out", now.Add(2 * time.Hour), TierUrgent},
		{"5 hours out", now.Add(5 * time.Hour), TierRegular},
		{"10 hours out", now.Add(10 * time.Hour), TierStandard},
		{"1 minute past", now.Add(-1 * time.Minute), TierExpired},
		{"exactly now", now, TierExpired},
		{"exactly 1 hour", now.Add(time.Hour), TierImmediate},
		{"exactly 3 hours", now.Add(3 * time.Hour), TierUrgent},
		{"exactly 6 hours", now.Add(6 * time.Hour), TierRegular},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(now, tc.closing); got != tc.want {
				t.Errorf("Classify = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestIntervalFor(t *testing.T) {
	cfg := &config.SchedulerConfig{
		ImmediateInterval: 1 * time.Minute,
		UrgentInterval:    5 * time.Minute,
		RegularInterval:   10 * time.Minute,
		StandardInterval:  60 * time.Minute,
	}

	cases := map[Tier]time.Duration{
		TierImmediate: 1 * time.Minute,
		TierUrgent:    5 * time.Minute,
		TierRegular:   10 * time.Minute,
		TierStandard:  60 * time.Minute,
	}
	for tier, want := range cases {
		if got := IntervalFor(cfg, tier); got != want {
			t.Errorf("IntervalFor(%s) = %s, want %s", tier, got, want)
		}
	}
}

func TestQuickTier(t *testing.T) {
	if !quickTier(TierImmediate) || !quickTier(TierUrgent) {
		t.Error("immediate and urgent should run the quick cycle")
	}
	if quickTier(TierRegular) || quickTier(TierStandard) {
		t.Error("regular and standard should run the full cycle")
	}
}
