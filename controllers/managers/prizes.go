package managers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/database"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"
)

// GET /manager/campaigns/{id}/prizes
//
// The configuration view: raw weights, daily counters and stock, plus
// all-time win counts per prize.
func PrizeListHandler(w http.ResponseWriter, r *http.Request) {
	_, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)
	campaignID, err := pathUint(r, "id")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Program tidak valid"})
		return
	}

	db := database.DB

	var campaign models.Campaign
	if err := db.Where("id = ? AND tenant_id = ?", campaignID, tenantID).First(&campaign).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Program tidak ditemukan"})
		return
	}

	var prizes []models.Prize
	if err := db.Where("campaign_id = ?", campaignID).Order("position ASC").Find(&prizes).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	type winAgg struct {
		PrizeID uint
		Wins    int64
	}
	var aggs []winAgg
	_ = db.Model(&models.Spin{}).
		Select("prize_id, COUNT(*) AS wins").
		Where("campaign_id = ? AND won_prize = ?", campaignID, true).
		Group("prize_id").
		Scan(&aggs).Error
	wins := make(map[uint]int64, len(aggs))
	for _, a := range aggs {
		wins[a.PrizeID] = a.Wins
	}

	// effective chance as the wheel applies it, including normalization when
	// active weights exceed 100
	activeTotal := 0
	for _, p := range prizes {
		if p.IsActive {
			activeTotal += int(p.Probability)
		}
	}
	span := float64(activeTotal)
	if span < 100 {
		span = 100
	}

	type prizeResponse struct {
		models.Prize
		TotalWins       int64   `json:"total_wins"`
		EffectiveChance float64 `json:"effective_chance"`
	}
	response := make([]prizeResponse, 0, len(prizes))
	for _, p := range prizes {
		chance := 0.0
		if p.IsActive {
			chance = utils.RoundFloat(float64(p.Probability)/span*100, 2)
		}
		response = append(response, prizeResponse{Prize: p, TotalWins: wins[p.ID], EffectiveChance: chance})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Berhasil mengambil daftar hadiah",
		Data:    response,
	})
}

type prizeRequest struct {
	Name                string  `json:"name"`
	Probability         uint    `json:"probability"`
	Position            uint    `json:"position"`
	DailyLimit          uint    `json:"daily_limit"`
	CurrentStock        *int    `json:"current_stock"`
	LowStockAlert       *int    `json:"low_stock_alert"`
	IsActive            *bool   `json:"is_active"`
	ShowTryAgainMessage bool    `json:"show_try_again_message"`
	TryAgainMessage     *string `json:"try_again_message"`
	VoucherValidityDays uint    `json:"voucher_validity_days"`
	VoucherRedeemLimit  uint    `json:"voucher_redeem_limit"`
	VoucherGenerateQR   bool    `json:"voucher_generate_qr"`
}

// POST /manager/campaigns/{id}/prizes
func CreatePrizeHandler(w http.ResponseWriter, r *http.Request) {
	_, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)
	campaignID, err := pathUint(r, "id")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Program tidak valid"})
		return
	}

	var req prizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nama hadiah wajib diisi"})
		return
	}
	if req.Probability == 0 || req.Probability > 100 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Probabilitas harus antara 1 dan 100"})
		return
	}

	db := database.DB

	var campaign models.Campaign
	if err := db.Where("id = ? AND tenant_id = ?", campaignID, tenantID).First(&campaign).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Program tidak ditemukan"})
		return
	}

	redeemLimit := req.VoucherRedeemLimit
	if redeemLimit == 0 {
		redeemLimit = 1
	}
	prize := models.Prize{
		TenantID:            tenantID,
		CampaignID:          campaignID,
		Name:                req.Name,
		Probability:         req.Probability,
		Position:            req.Position,
		DailyLimit:          req.DailyLimit,
		CurrentStock:        req.CurrentStock,
		LowStockAlert:       req.LowStockAlert,
		IsActive:            req.IsActive == nil || *req.IsActive,
		ShowTryAgainMessage: req.ShowTryAgainMessage,
		TryAgainMessage:     req.TryAgainMessage,
		VoucherValidityDays: req.VoucherValidityDays,
		VoucherRedeemLimit:  redeemLimit,
		VoucherGenerateQR:   req.VoucherGenerateQR,
	}
	if err := db.Create(&prize).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Hadiah berhasil dibuat",
		Data:    prize,
	})
}

// PUT /manager/prizes/{id}
func UpdatePrizeHandler(w http.ResponseWriter, r *http.Request) {
	_, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)
	prizeID, err := pathUint(r, "id")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Hadiah tidak valid"})
		return
	}

	var req prizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Permintaan tidak valid"})
		return
	}

	db := database.DB

	var prize models.Prize
	if err := db.Where("id = ? AND tenant_id = ?", prizeID, tenantID).First(&prize).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Hadiah tidak ditemukan"})
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Probability > 0 && req.Probability <= 100 {
		updates["probability"] = req.Probability
	}
	updates["position"] = req.Position
	updates["daily_limit"] = req.DailyLimit
	if req.CurrentStock != nil {
		updates["current_stock"] = *req.CurrentStock
	}
	if req.LowStockAlert != nil {
		updates["low_stock_alert"] = *req.LowStockAlert
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	updates["show_try_again_message"] = req.ShowTryAgainMessage
	if req.TryAgainMessage != nil {
		updates["try_again_message"] = *req.TryAgainMessage
	}
	updates["voucher_validity_days"] = req.VoucherValidityDays
	if req.VoucherRedeemLimit > 0 {
		updates["voucher_redeem_limit"] = req.VoucherRedeemLimit
	}
	updates["voucher_generate_qr"] = req.VoucherGenerateQR

	if err := db.Model(&prize).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Hadiah berhasil diperbarui",
		Data:    prize,
	})
}

// DELETE /manager/prizes/{id}
//
// Prizes with spin history are deactivated instead of removed so history
// lookups keep resolving.
func DeletePrizeHandler(w http.ResponseWriter, r *http.Request) {
	_, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)
	prizeID, err := pathUint(r, "id")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Hadiah tidak valid"})
		return
	}

	db := database.DB

	var prize models.Prize
	if err := db.Where("id = ? AND tenant_id = ?", prizeID, tenantID).First(&prize).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Hadiah tidak ditemukan"})
		return
	}

	var spinCount int64
	if err := db.Model(&models.Spin{}).Where("prize_id = ?", prizeID).Count(&spinCount).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	if spinCount > 0 {
		if err := db.Model(&prize).UpdateColumn("is_active", false).Error; err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Hadiah dinonaktifkan karena sudah memiliki riwayat"})
		return
	}

	if err := db.Delete(&prize).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Hadiah berhasil dihapus"})
}
