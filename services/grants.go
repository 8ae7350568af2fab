package services

import (
	"errors"
	"log"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantBonusSpins atomically increments a customer's earned bonus spins and
// returns the new total. The customer must have at least one spin on record;
// the check and the increment run in one transaction so a concurrent call
// cannot interleave a partial state.
//
// This is the single ledger-mutation primitive shared by task approval,
// referral unlock and direct manager grants.
func GrantBonusSpins(db *gorm.DB, userID uint, amount uint, reason string, grantedBy string) (uint, error) {
	if amount == 0 {
		return 0, errors.New("amount must be a positive integer")
	}

	var newTotal uint
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		var spins int64
		if err := tx.Model(&models.Spin{}).Where("user_id = ?", userID).Limit(1).Count(&spins).Error; err != nil {
			return err
		}
		if spins == 0 {
			return ErrNotEligible
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("bonus_spins_earned", gorm.Expr("bonus_spins_earned + ?", amount)).Error; err != nil {
			return err
		}

		newTotal = user.BonusSpinsEarned + amount
		return nil
	})
	if err != nil {
		log.Printf("[grant] bonus grant failed: user_id=%d amount=%d reason=%q granted_by=%s err=%v", userID, amount, reason, grantedBy, err)
		return 0, err
	}

	log.Printf("[grant] bonus spins granted: user_id=%d amount=%d new_total=%d reason=%q granted_by=%s", userID, amount, newTotal, reason, grantedBy)
	return newTotal, nil
}
