package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PendingReferralUnlocks returns how many bonus spins a referrer is entitled
// to but has not yet received: one per full threshold multiple reached.
func PendingReferralUnlocks(verifiedReferrals, required, alreadyUnlocked uint) uint {
	if required == 0 {
		return 0
	}
	entitled := verifiedReferrals / required
	if entitled <= alreadyUnlocked {
		return 0
	}
	return entitled - alreadyUnlocked
}

// EvaluateReferralUnlock grants any newly-unlocked referral bonus spins to a
// referrer. Called after each referred customer completes verification. The
// referrer row is locked for the whole evaluation so concurrent verifications
// cannot both read the same unlocked counter and double-grant one threshold.
// The grant goes through GrantBonusSpins, so a referrer who has never spun
// stays locked until their first spin (the next verification retries).
func EvaluateReferralUnlock(db *gorm.DB, referrerID uint) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var referrer models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&referrer, referrerID).Error; err != nil {
			return err
		}

		var campaign models.Campaign
		if err := tx.Where("tenant_id = ? AND is_active = ?", referrer.TenantID, true).
			Order("id DESC").
			First(&campaign).Error; err != nil {
			return err
		}

		var verified int64
		if err := tx.Model(&models.User{}).
			Where("tenant_id = ? AND reff_by = ? AND verified_at IS NOT NULL", referrer.TenantID, referrer.ID).
			Count(&verified).Error; err != nil {
			return err
		}

		pending := PendingReferralUnlocks(uint(verified), campaign.ReferralsRequired, referrer.ReferralsUnlocked)
		if pending == 0 {
			return nil
		}

		reason := fmt.Sprintf("Referral reward (%d/%d verified)", verified, campaign.ReferralsRequired)
		if _, err := GrantBonusSpins(tx, referrer.ID, pending, reason, "system:referral"); err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", referrer.ID).
			UpdateColumn("referrals_unlocked", gorm.Expr("referrals_unlocked + ?", pending)).Error
	})
	if err != nil {
		// ErrNotEligible just means the referrer has not spun yet; the
		// unlocked counter stays behind so a later verification retries.
		if errors.Is(err, ErrNotEligible) || errors.Is(err, gorm.ErrRecordNotFound) {
			return
		}
		log.Printf("[referral] unlock evaluation failed: user_id=%d err=%v", referrerID, err)
	}
}
