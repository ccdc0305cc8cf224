package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/courseloft/api/model"
	"github.com/courseloft/api/services"
	"github.com/courseloft/api/utils/auth"
)

// stalePaymentAge is how long a pending payment may sit before the sweep
// abandons it. Abandoning frees the one-pending-order-per-course slot so the
// user can start a fresh checkout.
const stalePaymentAge = 48 * time.Hour

// SweepStalePayments fails pending records whose buyer never completed the
// gateway flow. The conditional status update keeps the sweep safe against a
// verification racing in at the same moment.
func (m *CronManager) SweepStalePayments() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-stalePaymentAge)

	var stale []model.PaymentRecord
	if err := m.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.PaymentPending, cutoff).
		Find(&stale).Error; err != nil {
		log.Printf("stale payment sweep query failed: %v", err)
		return
	}

	swept := 0
	for i := range stale {
		meta, err := stale[i].DecodeMetadata()
		if err != nil {
			log.Printf("stale sweep: bad metadata on order %s: %v", stale[i].OrderID, err)
			continue
		}
		now := time.Now().UTC()
		meta.FailedAt = &now
		meta.FailureReason = "abandoned"

		stub := model.PaymentRecord{}
		if err := stub.SetMetadata(meta); err != nil {
			continue
		}

		res := m.db.WithContext(ctx).Model(&model.PaymentRecord{}).
			Where("id = ? AND status = ?", stale[i].ID, model.PaymentPending).
			Updates(map[string]interface{}{
				"status":   model.PaymentFailed,
				"metadata": stub.Metadata,
			})
		if res.Error == nil && res.RowsAffected == 1 {
			swept++
		}
	}

	if swept > 0 {
		log.Printf("stale payment sweep abandoned %d orders", swept)
	}
}

// CleanupBlacklist removes expired JWT blacklist entries
func (m *CronManager) CleanupBlacklist() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := auth.NewBlacklistService(m.db).CleanupExpiredTokens(ctx); err != nil {
		log.Printf("blacklist cleanup failed: %v", err)
	}
}

// SendExpiryReminders emails users whose entitlement lapses within the next
// week. A Redis marker keyed by entitlement and expiry date keeps each lapse
// to a single reminder.
func (m *CronManager) SendExpiryReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	horizon := now.Add(7 * 24 * time.Hour)

	var expiring []model.Entitlement
	if err := m.db.WithContext(ctx).
		Preload("User").Preload("Course").
		Where("expires_at IS NOT NULL AND expires_at > ? AND expires_at <= ?", now, horizon).
		Find(&expiring).Error; err != nil {
		log.Printf("expiry reminder query failed: %v", err)
		return
	}

	for i := range expiring {
		ent := &expiring[i]
		if !services.IsExpiringSoon(ent.ExpiresAt, now) {
			continue
		}
		if ent.User.Blocked || ent.User.Email == "" {
			continue
		}

		marker := fmt.Sprintf("expiry_reminder:%d:%s", ent.ID, ent.ExpiresAt.Format("2006-01-02"))
		if m.cache != nil {
			sent, err := m.cache.SetNX(ctx, marker, "1", 8*24*time.Hour)
			if err == nil && !sent {
				continue // already reminded for this lapse
			}
		}

		remaining := services.Remaining(*ent.ExpiresAt, now)
		if err := m.email.SendExpiryReminder(ent.User.Email, ent.User.Name, ent.Course.Title, remaining); err != nil {
			log.Printf("expiry reminder for user %d failed: %v", ent.UserID, err)
		}
	}
}
