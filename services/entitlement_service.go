package services

import (
	"fmt"
	"time"

	"github.com/courseloft/api/model"
)

// Access denial reasons
const (
	ReasonNotPurchased = "not_purchased"
	ReasonExpired      = "expired"
)

// AccessDecision is the result of an entitlement check for one user/course pair
type AccessDecision struct {
	Granted   bool           `json:"granted"`
	Tier      string         `json:"tier,omitempty"`
	Reason    string         `json:"reason,omitempty"` // not_purchased, expired
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	Remaining *RemainingTime `json:"remaining,omitempty"`
}

// RemainingTime describes how much access time is left on an entitlement
type RemainingTime struct {
	Expired bool   `json:"expired"`
	Days    int    `json:"days"`
	Hours   int    `json:"hours"`
	Human   string `json:"human"`
}

// ExpiryFor computes the absolute expiry instant for a purchase. Free and
// lifetime access never expire (nil). Monthly and yearly use calendar
// arithmetic: same day next month/year, clamped to the last valid day when the
// day does not exist (Jan 31 -> Feb 28/29, Feb 29 -> Feb 28).
func ExpiryFor(accessType string, purchasedAt time.Time) (*time.Time, error) {
	switch accessType {
	case model.AccessFree, model.AccessLifetime:
		return nil, nil
	case model.AccessMonthly:
		t := addMonthsClamped(purchasedAt, 1)
		return &t, nil
	case model.AccessYearly:
		t := addYearsClamped(purchasedAt, 1)
		return &t, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccessType, accessType)
	}
}

// addMonthsClamped adds calendar months without the roll-over behavior of
// time.AddDate (which turns Jan 31 + 1 month into Mar 2/3).
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysInMonth(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func addYearsClamped(t time.Time, years int) time.Time {
	y, m, d := t.Date()
	if last := daysInMonth(y+years, m); d > last {
		d = last
	}
	return time.Date(y+years, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CheckAccess decides whether a user with the given entitlements may view a
// course right now. It is read-only; expired entitlements are reported, never
// deleted.
func CheckAccess(entitlements []model.Entitlement, course *model.Course, now time.Time) AccessDecision {
	if course.IsFree() {
		return AccessDecision{Granted: true, Tier: model.AccessFree}
	}

	var ent *model.Entitlement
	for i := range entitlements {
		if entitlements[i].CourseID == course.ID {
			ent = &entitlements[i]
			break
		}
	}
	if ent == nil {
		return AccessDecision{Granted: false, Reason: ReasonNotPurchased}
	}

	if ent.ExpiresAt == nil {
		return AccessDecision{Granted: true, Tier: model.AccessLifetime}
	}

	if now.After(*ent.ExpiresAt) {
		return AccessDecision{Granted: false, Reason: ReasonExpired, ExpiresAt: ent.ExpiresAt}
	}

	remaining := Remaining(*ent.ExpiresAt, now)
	return AccessDecision{
		Granted:   true,
		Tier:      course.AccessType,
		ExpiresAt: ent.ExpiresAt,
		Remaining: &remaining,
	}
}

// Remaining reports the time left until expiresAt, for API responses and the
// "access expiring soon" banner
func Remaining(expiresAt, now time.Time) RemainingTime {
	if !now.Before(expiresAt) {
		return RemainingTime{Expired: true, Human: "expired"}
	}

	left := expiresAt.Sub(now)
	days := int(left.Hours()) / 24
	hours := int(left.Hours()) % 24

	var human string
	switch {
	case days > 0:
		human = fmt.Sprintf("%d days", days)
		if days == 1 {
			human = "1 day"
		}
	case hours > 0:
		human = fmt.Sprintf("%d hours", hours)
		if hours == 1 {
			human = "1 hour"
		}
	default:
		human = "less than an hour"
	}

	return RemainingTime{Days: days, Hours: hours, Human: human}
}

// IsExpiringSoon reports whether an entitlement lapses within the next week
// but has not lapsed yet
func IsExpiringSoon(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return false
	}
	r := Remaining(*expiresAt, now)
	if r.Expired {
		return false
	}
	return r.Days > 0 && r.Days <= 7
}
