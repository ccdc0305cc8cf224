package services

import (
	"testing"
	"time"

	"github.com/courseloft/api/model"
)

func mustExpiry(t *testing.T, accessType string, purchasedAt time.Time) *time.Time {
	t.Helper()
	expiry, err := ExpiryFor(accessType, purchasedAt)
	if err != nil {
		t.Fatalf("ExpiryFor(%q, %v): %v", accessType, purchasedAt, err)
	}
	return expiry
}

func TestExpiryForPerpetualTiers(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	for _, accessType := range []string{model.AccessFree, model.AccessLifetime} {
		if expiry := mustExpiry(t, accessType, now); expiry != nil {
			t.Errorf("%s access should never expire, got %v", accessType, expiry)
		}
	}
}

func TestExpiryForInvalidAccessType(t *testing.T) {
	if _, err := ExpiryFor("weekly", time.Now()); err == nil {
		t.Error("expected an error for an unknown access type")
	}
}

func TestExpiryForMonthlyClamping(t *testing.T) {
	tests := []struct {
		name        string
		purchasedAt time.Time
		want        time.Time
	}{
		{
			name:        "plain mid-month purchase",
			purchasedAt: time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
			want:        time.Date(2024, 4, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:        "jan 31 clamps to feb 29 in a leap year",
			purchasedAt: time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC),
			want:        time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
		},
		{
			name:        "jan 31 clamps to feb 28 outside a leap year",
			purchasedAt: time.Date(2023, 1, 31, 12, 0, 0, 0, time.UTC),
			want:        time.Date(2023, 2, 28, 12, 0, 0, 0, time.UTC),
		},
		{
			name:        "may 31 clamps to jun 30",
			purchasedAt: time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
			want:        time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "december rolls into january of the next year",
			purchasedAt: time.Date(2024, 12, 10, 18, 45, 0, 0, time.UTC),
			want:        time.Date(2025, 1, 10, 18, 45, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustExpiry(t, model.AccessMonthly, tt.purchasedAt)
			if got == nil || !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpiryForYearlyClamping(t *testing.T) {
	tests := []struct {
		name        string
		purchasedAt time.Time
		want        time.Time
	}{
		{
			name:        "plain yearly purchase",
			purchasedAt: time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
			want:        time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			name:        "feb 29 clamps to feb 28 of the next year",
			purchasedAt: time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC),
			want:        time.Date(2025, 2, 28, 8, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustExpiry(t, model.AccessYearly, tt.purchasedAt)
			if got == nil || !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpiryForIsDeterministic(t *testing.T) {
	purchasedAt := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)

	first := mustExpiry(t, model.AccessMonthly, purchasedAt)
	second := mustExpiry(t, model.AccessMonthly, purchasedAt)
	if !first.Equal(*second) {
		t.Errorf("same input produced different expiries: %v vs %v", first, second)
	}
}

func TestCheckAccessFreeCourse(t *testing.T) {
	course := &model.Course{AccessType: model.AccessFree}
	decision := CheckAccess(nil, course, time.Now())
	if !decision.Granted {
		t.Error("free courses must be accessible without an entitlement")
	}
}

func TestCheckAccessMatrix(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(10 * 24 * time.Hour)

	course := &model.Course{AccessType: model.AccessMonthly}
	course.ID = 7

	tests := []struct {
		name         string
		entitlements []model.Entitlement
		wantGranted  bool
		wantReason   string
	}{
		{
			name:         "no entitlement",
			entitlements: nil,
			wantGranted:  false,
			wantReason:   ReasonNotPurchased,
		},
		{
			name:         "entitlement for a different course",
			entitlements: []model.Entitlement{{CourseID: 99, ExpiresAt: &future}},
			wantGranted:  false,
			wantReason:   ReasonNotPurchased,
		},
		{
			name:         "active entitlement",
			entitlements: []model.Entitlement{{CourseID: 7, ExpiresAt: &future}},
			wantGranted:  true,
		},
		{
			name:         "expired entitlement",
			entitlements: []model.Entitlement{{CourseID: 7, ExpiresAt: &past}},
			wantGranted:  false,
			wantReason:   ReasonExpired,
		},
		{
			name:         "perpetual entitlement",
			entitlements: []model.Entitlement{{CourseID: 7, ExpiresAt: nil}},
			wantGranted:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := CheckAccess(tt.entitlements, course, now)
			if decision.Granted != tt.wantGranted {
				t.Errorf("Granted = %v, want %v", decision.Granted, tt.wantGranted)
			}
			if decision.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", decision.Reason, tt.wantReason)
			}
		})
	}
}

func TestCheckAccessExpiryBoundary(t *testing.T) {
	expiresAt := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	course := &model.Course{AccessType: model.AccessMonthly}
	course.ID = 1
	entitlements := []model.Entitlement{{CourseID: 1, ExpiresAt: &expiresAt}}

	// Access holds up to and including the expiry instant itself
	at := CheckAccess(entitlements, course, expiresAt)
	if !at.Granted {
		t.Error("access at the exact expiry instant should still be granted")
	}

	after := CheckAccess(entitlements, course, expiresAt.Add(time.Nanosecond))
	if after.Granted {
		t.Error("access after the expiry instant should be denied")
	}
	if after.Reason != ReasonExpired {
		t.Errorf("Reason = %q, want %q", after.Reason, ReasonExpired)
	}
}

func TestRemaining(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		expiresAt   time.Time
		wantExpired bool
		wantDays    int
		wantHuman   string
	}{
		{"already expired", now.Add(-time.Minute), true, 0, "expired"},
		{"expires exactly now", now, true, 0, "expired"},
		{"three days left", now.Add(3 * 24 * time.Hour), false, 3, "3 days"},
		{"one day left", now.Add(26 * time.Hour), false, 1, "1 day"},
		{"five hours left", now.Add(5 * time.Hour), false, 0, "5 hours"},
		{"minutes left", now.Add(30 * time.Minute), false, 0, "less than an hour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Remaining(tt.expiresAt, now)
			if r.Expired != tt.wantExpired {
				t.Errorf("Expired = %v, want %v", r.Expired, tt.wantExpired)
			}
			if r.Days != tt.wantDays {
				t.Errorf("Days = %d, want %d", r.Days, tt.wantDays)
			}
			if r.Human != tt.wantHuman {
				t.Errorf("Human = %q, want %q", r.Human, tt.wantHuman)
			}
		})
	}
}

func TestIsExpiringSoon(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	within := now.Add(3 * 24 * time.Hour)
	edge := now.Add(7*24*time.Hour + time.Hour)
	far := now.Add(30 * 24 * time.Hour)
	lapsed := now.Add(-time.Hour)

	if !IsExpiringSoon(&within, now) {
		t.Error("3 days out should count as expiring soon")
	}
	if !IsExpiringSoon(&edge, now) {
		t.Error("7 days out should count as expiring soon")
	}
	if IsExpiringSoon(&far, now) {
		t.Error("30 days out should not count as expiring soon")
	}
	if IsExpiringSoon(&lapsed, now) {
		t.Error("an already lapsed entitlement is not expiring soon")
	}
	if IsExpiringSoon(nil, now) {
		t.Error("perpetual access never expires")
	}
}
