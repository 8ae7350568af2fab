package managers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/database"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"
)

// GET /manager/campaigns
func CampaignListHandler(w http.ResponseWriter, r *http.Request) {
	_, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)

	var campaigns []models.Campaign
	if err := database.DB.Where("tenant_id = ?", tenantID).Order("id DESC").Find(&campaigns).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	now := time.Now()
	type campaignResponse struct {
		models.Campaign
		IsLive bool `json:"is_live"`
	}
	response := make([]campaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		response = append(response, campaignResponse{Campaign: c, IsLive: c.IsLive(now)})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Berhasil mengambil daftar program",
		Data:    response,
	})
}

type campaignRequest struct {
	Name              string     `json:"name"`
	SpinLimit         uint       `json:"spin_limit"`
	SpinCooldownHours *uint      `json:"spin_cooldown_hours"`
	ReferralsRequired *uint      `json:"referrals_required"`
	StartsAt          *time.Time `json:"starts_at"`
	EndsAt            *time.Time `json:"ends_at"`
	IsActive          *bool      `json:"is_active"`
}

// POST /manager/campaigns
func CreateCampaignHandler(w http.ResponseWriter, r *http.Request) {
	_, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)

	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nama program wajib diisi"})
		return
	}

	campaign := models.Campaign{
		TenantID:  tenantID,
		Name:      req.Name,
		SpinLimit: 1,
		IsActive:  req.IsActive == nil || *req.IsActive,
	}
	if req.SpinLimit > 0 {
		campaign.SpinLimit = req.SpinLimit
	}
	campaign.SpinCooldownHours = 24
	if req.SpinCooldownHours != nil {
		campaign.SpinCooldownHours = *req.SpinCooldownHours
	}
	campaign.ReferralsRequired = 3
	if req.ReferralsRequired != nil {
		campaign.ReferralsRequired = *req.ReferralsRequired
	}
	if req.StartsAt != nil {
		campaign.StartsAt = *req.StartsAt
	} else {
		campaign.StartsAt = time.Now()
	}
	if req.EndsAt != nil {
		campaign.EndsAt = *req.EndsAt
	}

	if err := database.DB.Create(&campaign).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Program berhasil dibuat",
		Data:    campaign,
	})
}

// PUT /manager/campaigns/{id}
func UpdateCampaignHandler(w http.ResponseWriter, r *http.Request) {
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

	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Permintaan tidak valid"})
		return
	}

	db := database.DB

	var campaign models.Campaign
	if err := db.Where("id = ? AND tenant_id = ?", campaignID, tenantID).First(&campaign).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Program tidak ditemukan"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.SpinLimit > 0 {
		updates["spin_limit"] = req.SpinLimit
	}
	if req.SpinCooldownHours != nil {
		updates["spin_cooldown_hours"] = *req.SpinCooldownHours
	}
	if req.ReferralsRequired != nil {
		updates["referrals_required"] = *req.ReferralsRequired
	}
	if req.StartsAt != nil {
		updates["starts_at"] = *req.StartsAt
	}
	if req.EndsAt != nil {
		updates["ends_at"] = *req.EndsAt
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Tidak ada perubahan"})
		return
	}

	if err := db.Model(&campaign).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Program berhasil diperbarui",
		Data:    campaign,
	})
}
