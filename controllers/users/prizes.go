package users

import (
	"net/http"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/database"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"
)

// GET /api/campaigns/{id}/prizes
//
// Returns the wheel layout with displayed chances. When configured weights sum
// below 100 the remainder shows up as an implicit "try again" slot; above 100
// the displayed chances are normalized so they still total 100.
func PrizeListHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := utils.GetTenantID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
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
	if err := db.Where("campaign_id = ? AND is_active = ?", campaignID, true).
		Order("position ASC").Find(&prizes).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	type prizeResponse struct {
		ID       uint    `json:"id"`
		Name     string  `json:"name"`
		Position uint    `json:"position"`
		Chance   float64 `json:"chance"`
		InStock  bool    `json:"in_stock"`
	}

	total := 0
	for _, p := range prizes {
		total += int(p.Probability)
	}
	span := float64(total)
	if span < 100 {
		span = 100
	}

	response := make([]prizeResponse, 0, len(prizes)+1)
	for _, p := range prizes {
		inStock := p.CurrentStock == nil || *p.CurrentStock > 0
		response = append(response, prizeResponse{
			ID:       p.ID,
			Name:     p.Name,
			Position: p.Position,
			Chance:   utils.RoundFloat(float64(p.Probability)/span*100, 2),
			InStock:  inStock,
		})
	}
	if total < 100 {
		response = append(response, prizeResponse{
			Name:    "Coba Lagi",
			Chance:  utils.RoundFloat(float64(100-total), 2),
			InStock: true,
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Berhasil mengambil daftar hadiah",
		Data: map[string]interface{}{
			"campaign": map[string]interface{}{
				"id":        campaign.ID,
				"name":      campaign.Name,
				"is_live":   campaign.IsLive(time.Now()),
				"starts_at": campaign.StartsAt,
				"ends_at":   campaign.EndsAt,
			},
			"prizes": response,
		},
	})
}
