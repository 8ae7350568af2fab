package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DirectGrantResult reports the outcome of a manager-initiated grant. On
// ErrLimitReached it still carries the current totals so the manager sees
// the exhausted headroom.
type DirectGrantResult struct {
	SpinsGranted       uint `json:"spins_granted"`
	TotalGrantedToUser uint `json:"total_granted_to_user"`
	RemainingLimit     uint `json:"remaining_limit"`
}

// SpinsToGrant returns how many spins a single grant call hands out given the
// cap and the already-granted total: always 1, capped by remaining headroom.
func SpinsToGrant(maxPerUser, totalGranted uint) uint {
	if totalGranted >= maxPerUser {
		return 0
	}
	return 1
}

// GrantDirectSpin hands one bonus spin from a manager to a customer,
// bounded by the manager's per-customer cap. The cap check and the grant-log
// insert share one transaction that locks the (manager, user) grant range,
// so concurrent calls cannot overshoot the cap.
//
// The grant row is written before the ledger mutation and is kept when the
// ledger grant fails: the audit trail records attempted actions, and a
// counted failed attempt only under-grants.
func GrantDirectSpin(db *gorm.DB, managerID, userID uint, comment string) (*DirectGrantResult, error) {
	var manager models.Manager
	if err := db.First(&manager, managerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManagerNotFound
		}
		return nil, err
	}
	if manager.Status != "Active" {
		return nil, ErrManagerInactive
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	// Hard security boundary, not a soft validation.
	if user.TenantID != manager.TenantID {
		return nil, ErrTenantMismatch
	}

	res := &DirectGrantResult{}
	var grantID uint
	err := db.Transaction(func(tx *gorm.DB) error {
		var total uint
		if err := tx.Model(&models.DirectSpinGrant{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("manager_id = ? AND user_id = ?", managerID, userID).
			Select("COALESCE(SUM(spins_granted), 0)").
			Scan(&total).Error; err != nil {
			return err
		}

		grant := SpinsToGrant(manager.MaxSpinsPerUser, total)
		if grant == 0 {
			res.TotalGrantedToUser = total
			res.RemainingLimit = 0
			return ErrLimitReached
		}

		row := models.DirectSpinGrant{
			TenantID:     manager.TenantID,
			ManagerID:    managerID,
			UserID:       userID,
			SpinsGranted: grant,
		}
		if comment != "" {
			row.Comment = &comment
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		grantID = row.ID

		res.SpinsGranted = grant
		res.TotalGrantedToUser = total + grant
		res.RemainingLimit = manager.MaxSpinsPerUser - res.TotalGrantedToUser
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrLimitReached) {
			return res, err
		}
		return nil, err
	}

	reason := "Direct spin grant by manager"
	if comment != "" {
		reason = reason + ": " + comment
	}
	if _, err := GrantBonusSpins(db, userID, res.SpinsGranted, reason, fmt.Sprintf("manager:%d", managerID)); err != nil {
		// The grant row stays on record as an attempted action.
		log.Printf("[direct-grant] ledger grant failed after audit row: grant_id=%d manager_id=%d user_id=%d err=%v", grantID, managerID, userID, err)
		return nil, err
	}

	audit := models.ManagerAuditLog{
		TenantID:  manager.TenantID,
		ManagerID: managerID,
		UserID:    &userID,
		Action:    models.AuditActionDirectGrant,
		Detail:    fmt.Sprintf("granted %d spin to %s (total %d/%d)", res.SpinsGranted, user.Number, res.TotalGrantedToUser, manager.MaxSpinsPerUser),
	}
	if err := db.Create(&audit).Error; err != nil {
		log.Printf("[direct-grant] audit log write failed: manager_id=%d user_id=%d err=%v", managerID, userID, err)
	}

	return res, nil
}

// CustomerMatch is one search hit annotated with the calling manager's
// remaining direct-grant headroom for that customer.
type CustomerMatch struct {
	ID             uint    `json:"id"`
	Name           *string `json:"name,omitempty"`
	Number         string  `json:"number"`
	TotalGranted   uint    `json:"total_granted"`
	RemainingLimit uint    `json:"remaining_limit"`
}

const searchCustomersLimit = 50

// SearchCustomers finds tenant customers by phone (raw substring, digit-only
// substring, or last-10-digit suffix to tolerate country-code variance) or by
// case-insensitive name substring.
func SearchCustomers(db *gorm.DB, managerID uint, query string) ([]CustomerMatch, error) {
	var manager models.Manager
	if err := db.First(&manager, managerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManagerNotFound
		}
		return nil, err
	}

	like := "%" + query + "%"
	q := db.Model(&models.User{}).Where("tenant_id = ?", manager.TenantID)

	digits := utils.NormalizeDigits(query)
	cond := db.Where("name LIKE ? OR number LIKE ?", like, like)
	if digits != "" {
		normalized := "REPLACE(REPLACE(REPLACE(number, '+', ''), '-', ''), ' ', '')"
		cond = cond.Or(normalized+" LIKE ?", "%"+digits+"%")
		if suffix := utils.LastDigits(query, 10); len(suffix) == 10 {
			cond = cond.Or(normalized+" LIKE ?", "%"+suffix)
		}
	}

	var users []models.User
	if err := q.Where(cond).Order("id ASC").Limit(searchCustomersLimit).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []CustomerMatch{}, nil
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	type grantAgg struct {
		UserID uint
		Total  uint
	}
	var aggs []grantAgg
	if err := db.Model(&models.DirectSpinGrant{}).
		Select("user_id, COALESCE(SUM(spins_granted), 0) AS total").
		Where("manager_id = ? AND user_id IN ?", managerID, ids).
		Group("user_id").
		Scan(&aggs).Error; err != nil {
		return nil, err
	}
	granted := make(map[uint]uint, len(aggs))
	for _, a := range aggs {
		granted[a.UserID] = a.Total
	}

	matches := make([]CustomerMatch, 0, len(users))
	for _, u := range users {
		total := granted[u.ID]
		remaining := uint(0)
		if manager.MaxSpinsPerUser > total {
			remaining = manager.MaxSpinsPerUser - total
		}
		matches = append(matches, CustomerMatch{
			ID:             u.ID,
			Name:           u.Name,
			Number:         u.Number,
			TotalGranted:   total,
			RemainingLimit: remaining,
		})
	}
	return matches, nil
}
