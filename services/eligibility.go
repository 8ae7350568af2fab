package services

import (
	"errors"
	"math"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"

	"gorm.io/gorm"
)

// SpinStatus is the evaluator result consumed by the landing page and by the
// spin handler's precondition check.
type SpinStatus struct {
	CanSpin             bool   `json:"can_spin"`
	Reason              string `json:"reason,omitempty"`
	BaseSpinsAvailable  int    `json:"base_spins_available"`
	BonusSpinsAvailable int    `json:"bonus_spins_available"`
	TotalAvailable      int    `json:"total_available"`
	NextSpinInHours     int    `json:"next_spin_in_hours"`
	ReferralsProgress   int    `json:"referrals_progress"`
	ReferralsRequired   int    `json:"referrals_required"`
}

const (
	ReasonCampaignInactive = "campaignInactive"
	ReasonCooldown         = "cooldown"
	ReasonNoSpins          = "noSpins"
)

// ComputeSpinStatus derives the spin status from raw counts. Pure so the
// cooldown and allowance arithmetic is testable without a database.
//
// The bonus pool reports already-earned bonus even before the customer's
// first base spin: the "must have spun once" precondition is enforced at
// grant time, not at read time.
func ComputeSpinStatus(c models.Campaign, baseUsed, bonusEarned, bonusUsed int, lastBaseSpin *time.Time, now time.Time) SpinStatus {
	st := SpinStatus{
		ReferralsRequired: int(c.ReferralsRequired),
	}

	base := int(c.SpinLimit) - baseUsed
	if base < 0 {
		base = 0
	}

	// Cooldown forces the base pool to zero regardless of remaining allowance.
	if base > 0 && lastBaseSpin != nil && c.SpinCooldownHours > 0 {
		cooldown := time.Duration(c.SpinCooldownHours) * time.Hour
		elapsed := now.Sub(*lastBaseSpin)
		if elapsed < cooldown {
			base = 0
			st.Reason = ReasonCooldown
			st.NextSpinInHours = int(math.Ceil((cooldown - elapsed).Hours()))
		}
	}

	bonus := bonusEarned - bonusUsed
	if bonus < 0 {
		bonus = 0
	}

	st.BaseSpinsAvailable = base
	st.BonusSpinsAvailable = bonus
	st.TotalAvailable = base + bonus
	st.CanSpin = base > 0 || bonus > 0

	if !c.IsLive(now) {
		st.CanSpin = false
		st.Reason = ReasonCampaignInactive
		return st
	}
	if !st.CanSpin && st.Reason == "" {
		st.Reason = ReasonNoSpins
	}
	return st
}

// spinCounts holds the per-user per-campaign aggregates the evaluator needs.
type spinCounts struct {
	baseUsed     int
	bonusUsed    int
	lastBaseSpin *time.Time
}

func loadSpinCounts(db *gorm.DB, userID, campaignID uint) (spinCounts, error) {
	var sc spinCounts

	var baseUsed, bonusUsed int64
	if err := db.Model(&models.Spin{}).
		Where("user_id = ? AND campaign_id = ? AND is_referral_bonus = ?", userID, campaignID, false).
		Count(&baseUsed).Error; err != nil {
		return sc, err
	}
	if err := db.Model(&models.Spin{}).
		Where("user_id = ? AND campaign_id = ? AND is_referral_bonus = ?", userID, campaignID, true).
		Count(&bonusUsed).Error; err != nil {
		return sc, err
	}

	var last models.Spin
	err := db.Where("user_id = ? AND campaign_id = ? AND is_referral_bonus = ?", userID, campaignID, false).
		Order("created_at DESC").
		First(&last).Error
	if err == nil {
		sc.lastBaseSpin = &last.CreatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return sc, err
	}

	sc.baseUsed = int(baseUsed)
	sc.bonusUsed = int(bonusUsed)
	return sc, nil
}

// GetSpinStatus resolves the user and campaign (same tenant) and computes the
// current spin status. Consumption is derived by counting spin rows, never by
// decrementing the earned ledger.
func GetSpinStatus(db *gorm.DB, userID, campaignID uint) (*SpinStatus, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	var campaign models.Campaign
	if err := db.Where("id = ? AND tenant_id = ?", campaignID, user.TenantID).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}

	sc, err := loadSpinCounts(db, userID, campaignID)
	if err != nil {
		return nil, err
	}

	var referrals int64
	if err := db.Model(&models.User{}).
		Where("tenant_id = ? AND reff_by = ? AND verified_at IS NOT NULL", user.TenantID, user.ID).
		Count(&referrals).Error; err != nil {
		return nil, err
	}

	st := ComputeSpinStatus(campaign, sc.baseUsed, int(user.BonusSpinsEarned), sc.bonusUsed, sc.lastBaseSpin, time.Now())
	st.ReferralsProgress = int(referrals)
	return &st, nil
}
