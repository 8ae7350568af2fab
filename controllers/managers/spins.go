package managers

import (
	"net/http"
	"strings"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/database"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"
)

// GET /manager/spins?page=&per_page=&q=&won=
//
// The tenant-wide spin activity log, newest first, searchable by customer
// number or name.
func SpinLogHandler(w http.ResponseWriter, r *http.Request) {
	_, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 25)
	if perPage > 100 {
		perPage = 100
	}

	db := database.DB

	query := db.Model(&models.Spin{}).Where("spins.tenant_id = ?", tenantID)

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + q + "%"
		query = query.Joins("JOIN users ON users.id = spins.user_id").
			Where("users.number LIKE ? OR users.name LIKE ?", like, like)
	}
	if won := r.URL.Query().Get("won"); won == "true" {
		query = query.Where("spins.won_prize = ?", true)
	} else if won == "false" {
		query = query.Where("spins.won_prize = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	var spins []models.Spin
	if err := query.Order("spins.id DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&spins).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	var userIDs, prizeIDs []uint
	for _, s := range spins {
		userIDs = append(userIDs, s.UserID)
		if s.PrizeID != nil {
			prizeIDs = append(prizeIDs, *s.PrizeID)
		}
	}
	users := make(map[uint]models.User)
	if len(userIDs) > 0 {
		var rows []models.User
		if err := db.Select("id, number, name").Where("id IN ?", userIDs).Find(&rows).Error; err == nil {
			for _, u := range rows {
				users[u.ID] = u
			}
		}
	}
	prizes := make(map[uint]string)
	if len(prizeIDs) > 0 {
		var rows []models.Prize
		if err := db.Select("id, name").Where("id IN ?", prizeIDs).Find(&rows).Error; err == nil {
			for _, p := range rows {
				prizes[p.ID] = p.Name
			}
		}
	}

	type spinLogEntry struct {
		ID         uint      `json:"id"`
		UserID     uint      `json:"user_id"`
		UserNumber string    `json:"user_number"`
		UserName   string    `json:"user_name,omitempty"`
		WonPrize   bool      `json:"won_prize"`
		PrizeName  string    `json:"prize_name,omitempty"`
		FromBonus  bool      `json:"from_bonus"`
		CreatedAt  time.Time `json:"created_at"`
	}
	entries := make([]spinLogEntry, 0, len(spins))
	for _, s := range spins {
		entry := spinLogEntry{
			ID:        s.ID,
			UserID:    s.UserID,
			WonPrize:  s.WonPrize,
			FromBonus: s.IsReferralBonus,
			CreatedAt: s.CreatedAt,
		}
		if u, ok := users[s.UserID]; ok {
			entry.UserNumber = u.Number
			entry.UserName = utils.GetStringValue(u.Name)
		}
		if s.PrizeID != nil {
			entry.PrizeName = prizes[*s.PrizeID]
		}
		entries = append(entries, entry)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Berhasil mengambil riwayat spin",
		Data: map[string]interface{}{
			"spins":    entries,
			"page":     page,
			"per_page": perPage,
			"total":    total,
		},
	})
}
