package services

import (
	"errors"
	"log"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SpinResult is what the landing page renders after one spin resolves.
type SpinResult struct {
	SpinID   uint            `json:"spin_id"`
	WonPrize bool            `json:"won_prize"`
	Prize    *models.Prize   `json:"prize,omitempty"`
	TryAgain bool            `json:"try_again"`
	Message  string          `json:"message,omitempty"`
	Voucher  *models.Voucher `json:"voucher,omitempty"`
}

// ExecuteSpin runs the full spin pipeline: eligibility gate, weighted draw
// with atomic prize reservation, and the append-only spin record. Everything
// runs inside one transaction with the user's row locked, so two concurrent
// requests cannot both consume the same last available spin.
//
// Voucher issuance and notification run after commit; their failures never
// invalidate the spin.
func ExecuteSpin(db *gorm.DB, userID, campaignID uint) (*SpinResult, error) {
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

	result := &SpinResult{}
	var spin models.Spin
	err := db.Transaction(func(tx *gorm.DB) error {
		// The lock serializes spins per user; the eligibility counts below
		// are then stable until commit.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return err
		}

		sc, err := loadSpinCounts(tx, userID, campaignID)
		if err != nil {
			return err
		}
		st := ComputeSpinStatus(campaign, sc.baseUsed, int(user.BonusSpinsEarned), sc.bonusUsed, sc.lastBaseSpin, time.Now())
		if !st.CanSpin {
			if st.Reason == ReasonCampaignInactive {
				return ErrCampaignInactive
			}
			return ErrNoSpinsAvailable
		}
		fromBonus := st.BaseSpinsAvailable == 0

		outcome, err := SelectPrize(tx, campaignID)
		if err != nil {
			return err
		}

		spin = models.Spin{
			TenantID:        user.TenantID,
			UserID:          userID,
			CampaignID:      campaignID,
			WonPrize:        outcome.WonPrize,
			IsReferralBonus: fromBonus,
		}
		if outcome.Prize != nil {
			spin.PrizeID = &outcome.Prize.ID
		}
		if err := tx.Create(&spin).Error; err != nil {
			return err
		}

		result.WonPrize = outcome.WonPrize
		result.Prize = outcome.Prize
		result.TryAgain = !outcome.WonPrize
		result.Message = outcome.Message
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.SpinID = spin.ID

	if result.WonPrize && result.Prize != nil {
		finishWinningSpin(db, &user, spin, result)
	}

	return result, nil
}

// finishWinningSpin mints the voucher (when configured) and fires the
// customer notification. Both are best-effort relative to the spin.
func finishWinningSpin(db *gorm.DB, user *models.User, spin models.Spin, result *SpinResult) {
	prize := result.Prize

	if prize.VoucherValidityDays > 0 {
		var tenant models.Tenant
		slug := ""
		if err := db.First(&tenant, user.TenantID).Error; err == nil {
			slug = tenant.Slug
		}
		voucher, err := CreateVoucher(db, VoucherParams{
			SpinID:          spin.ID,
			PrizeID:         prize.ID,
			UserID:          user.ID,
			TenantID:        user.TenantID,
			TenantSlug:      slug,
			ValidityDays:    prize.VoucherValidityDays,
			RedemptionLimit: prize.VoucherRedeemLimit,
			GenerateQR:      prize.VoucherGenerateQR,
		})
		if err != nil {
			// The win stands; the missing voucher is an operator follow-up.
			log.Printf("[spin] voucher creation failed: spin_id=%d prize_id=%d user_id=%d err=%v", spin.ID, prize.ID, user.ID, err)
		} else {
			result.Voucher = voucher
		}
	}

	userID, tenantID, prizeName := user.ID, user.TenantID, prize.Name
	voucher := result.Voucher
	go func() {
		if voucher != nil {
			_, _ = SendVoucherNotification(db, voucher, prizeName)
			return
		}
		_, _ = SendPrizeNotification(db, userID, tenantID, prizeName)
	}()
}
