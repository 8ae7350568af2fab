package users

import (
	"encoding/json"
	"net/http"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/database"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"
)

// GET /api/campaigns/{id}/tasks
//
// Lists the campaign's active tasks together with the customer's own
// submission state so the frontend can disable already-submitted tasks.
func TaskListHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromAuthHeader(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	campaignID, err := pathUint(r, "id")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Program tidak valid"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)

	db := database.DB

	var tasks []models.SocialTask
	if err := db.Where("tenant_id = ? AND campaign_id = ? AND status = ?", tenantID, campaignID, "Active").
		Order("id ASC").Find(&tasks).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	var submissions []models.TaskSubmission
	if err := db.Where("user_id = ?", userID).Find(&submissions).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}
	byTask := make(map[uint]models.TaskSubmission, len(submissions))
	for _, s := range submissions {
		// keep the latest submission per task
		if prev, ok := byTask[s.TaskID]; !ok || s.ID > prev.ID {
			byTask[s.TaskID] = s
		}
	}

	type taskResponse struct {
		ID               uint    `json:"id"`
		Name             string  `json:"name"`
		TaskType         string  `json:"task_type"`
		Description      string  `json:"description"`
		BonusSpins       uint    `json:"bonus_spins"`
		SubmissionStatus *string `json:"submission_status,omitempty"`
		RejectReason     *string `json:"reject_reason,omitempty"`
	}

	response := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		entry := taskResponse{
			ID:          t.ID,
			Name:        t.Name,
			TaskType:    t.TaskType,
			Description: t.Description,
			BonusSpins:  t.BonusSpins,
		}
		if s, ok := byTask[t.ID]; ok {
			status := s.Status
			entry.SubmissionStatus = &status
			entry.RejectReason = s.RejectReason
		}
		response = append(response, entry)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Berhasil mengambil daftar tugas",
		Data:    response,
	})
}

type taskSubmitRequest struct {
	ProofURL *string `json:"proof_url,omitempty"`
}

// POST /api/tasks/{id}/submit
func TaskSubmitHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromAuthHeader(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	taskID, err := pathUint(r, "id")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Tugas tidak valid"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)

	var req taskSubmitRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	db := database.DB

	var task models.SocialTask
	if err := db.Where("id = ? AND tenant_id = ? AND status = ?", taskID, tenantID, "Active").First(&task).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Tugas tidak ditemukan"})
		return
	}

	// pending or approved submissions block a resubmit; rejected ones allow it
	var blocking int64
	if err := db.Model(&models.TaskSubmission{}).
		Where("task_id = ? AND user_id = ? AND status IN ?", taskID, userID, []string{"pending", "approved"}).
		Count(&blocking).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}
	if blocking > 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Tugas ini sudah anda kerjakan"})
		return
	}

	submission := models.TaskSubmission{
		TenantID: tenantID,
		TaskID:   taskID,
		UserID:   userID,
		ProofURL: req.ProofURL,
		Status:   "pending",
	}
	if err := db.Create(&submission).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Tugas berhasil dikirim, menunggu persetujuan",
		Data:    submission,
	})
}
