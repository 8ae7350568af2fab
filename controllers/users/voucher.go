package users

import (
	"net/http"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/database"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"
)

// GET /api/vouchers
func MyVouchersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromAuthHeader(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB

	var vouchers []models.Voucher
	if err := db.Where("user_id = ?", userID).Order("id DESC").Find(&vouchers).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	prizeNames := make(map[uint]string)
	if len(vouchers) > 0 {
		ids := make([]uint, 0, len(vouchers))
		for _, v := range vouchers {
			ids = append(ids, v.PrizeID)
		}
		var prizes []models.Prize
		if err := db.Select("id, name").Where("id IN ?", ids).Find(&prizes).Error; err == nil {
			for _, p := range prizes {
				prizeNames[p.ID] = p.Name
			}
		}
	}

	now := time.Now()
	type voucherResponse struct {
		Code            string    `json:"code"`
		PrizeName       string    `json:"prize_name"`
		ExpiresAt       time.Time `json:"expires_at"`
		Expired         bool      `json:"expired"`
		RedemptionLimit uint      `json:"redemption_limit"`
		RedemptionsUsed uint      `json:"redemptions_used"`
		QRImageURL      *string   `json:"qr_image_url,omitempty"`
	}
	response := make([]voucherResponse, 0, len(vouchers))
	for _, v := range vouchers {
		response = append(response, voucherResponse{
			Code:            v.Code,
			PrizeName:       prizeNames[v.PrizeID],
			ExpiresAt:       v.ExpiresAt,
			Expired:         now.After(v.ExpiresAt),
			RedemptionLimit: v.RedemptionLimit,
			RedemptionsUsed: v.RedemptionsUsed,
			QRImageURL:      v.QRImageURL,
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Berhasil mengambil daftar voucher",
		Data:    response,
	})
}

// GET /api/spins
//
// The customer's own spin history, newest first.
func SpinHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromAuthHeader(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB

	var spins []models.Spin
	if err := db.Where("user_id = ?", userID).Order("id DESC").Limit(100).Find(&spins).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	prizeNames := make(map[uint]string)
	var ids []uint
	for _, s := range spins {
		if s.PrizeID != nil {
			ids = append(ids, *s.PrizeID)
		}
	}
	if len(ids) > 0 {
		var prizes []models.Prize
		if err := db.Select("id, name").Where("id IN ?", ids).Find(&prizes).Error; err == nil {
			for _, p := range prizes {
				prizeNames[p.ID] = p.Name
			}
		}
	}

	type spinResponse struct {
		ID        uint      `json:"id"`
		WonPrize  bool      `json:"won_prize"`
		PrizeName string    `json:"prize_name,omitempty"`
		FromBonus bool      `json:"from_bonus"`
		CreatedAt time.Time `json:"created_at"`
	}
	response := make([]spinResponse, 0, len(spins))
	for _, s := range spins {
		entry := spinResponse{
			ID:        s.ID,
			WonPrize:  s.WonPrize,
			FromBonus: s.IsReferralBonus,
			CreatedAt: s.CreatedAt,
		}
		if s.PrizeID != nil {
			entry.PrizeName = prizeNames[*s.PrizeID]
		}
		response = append(response, entry)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Berhasil mengambil riwayat spin",
		Data:    response,
	})
}
