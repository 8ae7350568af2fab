package users

import (
	"net/http"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/database"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/services"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"
)

// GET /api/referrals
//
// Shows the customer's referral code, progress toward the next bonus spin
// unlock, and the list of people who joined through them. Numbers are
// censored since referred friends never consented to being shown in full.
func ReferralHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromAuthHeader(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Akun tidak ditemukan"})
		return
	}

	var referrals []models.User
	if err := db.Where("reff_by = ?", userID).Order("id DESC").Find(&referrals).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	verified := 0
	type referralEntry struct {
		Number   string `json:"number"`
		Name     string `json:"name,omitempty"`
		Verified bool   `json:"verified"`
	}
	entries := make([]referralEntry, 0, len(referrals))
	for _, ref := range referrals {
		isVerified := ref.VerifiedAt != nil
		if isVerified {
			verified++
		}
		entries = append(entries, referralEntry{
			Number:   utils.CensorNumber(ref.Number),
			Name:     utils.GetStringValue(ref.Name),
			Verified: isVerified,
		})
	}

	required := uint(0)
	var campaign models.Campaign
	if err := db.Where("tenant_id = ? AND is_active = ?", user.TenantID, true).
		Order("id DESC").First(&campaign).Error; err == nil {
		required = campaign.ReferralsRequired
	}

	pending := services.PendingReferralUnlocks(uint(verified), required, user.ReferralsUnlocked)
	progress := 0
	if required > 0 {
		progress = verified % int(required)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Berhasil mengambil data referral",
		Data: map[string]interface{}{
			"reff_code":          user.ReffCode,
			"total_referrals":    len(referrals),
			"verified_referrals": verified,
			"referrals_required": required,
			"progress":           progress,
			"unlocks_pending":    pending,
			"referrals":          entries,
		},
	})
}
