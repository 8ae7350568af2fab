package managers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/database"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/services"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"

	"gorm.io/gorm"
)

// GET /manager/submissions?status=pending
func SubmissionListHandler(w http.ResponseWriter, r *http.Request) {
	_, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)

	status := r.URL.Query().Get("status")
	if status == "" {
		status = "pending"
	}

	db := database.DB

	var submissions []models.TaskSubmission
	if err := db.Where("tenant_id = ? AND status = ?", tenantID, status).
		Order("id ASC").Limit(200).Find(&submissions).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	taskNames := make(map[uint]models.SocialTask)
	userNumbers := make(map[uint]models.User)
	var taskIDs, userIDs []uint
	for _, s := range submissions {
		taskIDs = append(taskIDs, s.TaskID)
		userIDs = append(userIDs, s.UserID)
	}
	if len(submissions) > 0 {
		var tasks []models.SocialTask
		if err := db.Where("id IN ?", taskIDs).Find(&tasks).Error; err == nil {
			for _, t := range tasks {
				taskNames[t.ID] = t
			}
		}
		var users []models.User
		if err := db.Where("id IN ?", userIDs).Find(&users).Error; err == nil {
			for _, u := range users {
				userNumbers[u.ID] = u
			}
		}
	}

	type submissionResponse struct {
		ID          uint      `json:"id"`
		TaskID      uint      `json:"task_id"`
		TaskName    string    `json:"task_name"`
		TaskType    string    `json:"task_type"`
		BonusSpins  uint      `json:"bonus_spins"`
		UserID      uint      `json:"user_id"`
		UserNumber  string    `json:"user_number"`
		UserName    string    `json:"user_name,omitempty"`
		ProofURL    *string   `json:"proof_url,omitempty"`
		Status      string    `json:"status"`
		SubmittedAt time.Time `json:"submitted_at"`
	}
	response := make([]submissionResponse, 0, len(submissions))
	for _, s := range submissions {
		entry := submissionResponse{
			ID:          s.ID,
			TaskID:      s.TaskID,
			UserID:      s.UserID,
			ProofURL:    s.ProofURL,
			Status:      s.Status,
			SubmittedAt: s.CreatedAt,
		}
		if t, ok := taskNames[s.TaskID]; ok {
			entry.TaskName = t.Name
			entry.TaskType = t.TaskType
			entry.BonusSpins = t.BonusSpins
		}
		if u, ok := userNumbers[s.UserID]; ok {
			entry.UserNumber = u.Number
			entry.UserName = utils.GetStringValue(u.Name)
		}
		response = append(response, entry)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Berhasil mengambil daftar pengajuan tugas",
		Data:    response,
	})
}

// loadPendingSubmission fetches a submission that is still reviewable and
// belongs to the manager's tenant.
func loadPendingSubmission(db *gorm.DB, id, tenantID uint) (*models.TaskSubmission, *models.SocialTask, error) {
	var submission models.TaskSubmission
	if err := db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&submission).Error; err != nil {
		return nil, nil, err
	}
	if submission.Status != "pending" {
		return &submission, nil, fmt.Errorf("already reviewed")
	}
	var task models.SocialTask
	if err := db.First(&task, submission.TaskID).Error; err != nil {
		return nil, nil, err
	}
	return &submission, &task, nil
}

// POST /manager/submissions/{id}/approve
//
// Approval flips the status, credits the task's bonus spins, notifies the
// customer and writes the audit row. The status flip and the grant commit
// in one transaction, so a failed grant leaves the submission pending; the
// notification rides behind it and may fail without undoing the approval.
func ApproveSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	managerID, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)
	submissionID, err := pathUint(r, "id")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Pengajuan tidak valid"})
		return
	}

	db := database.DB

	submission, task, err := loadPendingSubmission(db, submissionID, tenantID)
	if err != nil {
		if submission != nil {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Pengajuan ini sudah ditinjau"})
			return
		}
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Pengajuan tidak ditemukan"})
		return
	}

	now := time.Now()
	reason := fmt.Sprintf("Task approved: %s", task.Name)
	var alreadyReviewed bool
	err = db.Transaction(func(tx *gorm.DB) error {
		// conditional update so two managers reviewing at once cannot both win
		res := tx.Model(&models.TaskSubmission{}).
			Where("id = ? AND status = ?", submission.ID, "pending").
			Updates(map[string]interface{}{
				"status":      "approved",
				"reviewed_by": managerID,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			alreadyReviewed = true
			return errors.New("already reviewed")
		}
		if task.BonusSpins == 0 {
			return nil
		}
		_, err := services.GrantBonusSpins(tx, submission.UserID, task.BonusSpins, reason, fmt.Sprintf("manager:%d", managerID))
		return err
	})
	if alreadyReviewed {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Pengajuan ini sudah ditinjau"})
		return
	}
	if err != nil {
		log.Printf("[task-review] approval failed: submission_id=%d user_id=%d err=%v", submission.ID, submission.UserID, err)
		writeServiceError(w, err)
		return
	}

	audit := models.ManagerAuditLog{
		TenantID:  tenantID,
		ManagerID: managerID,
		UserID:    &submission.UserID,
		Action:    models.AuditActionTaskApprove,
		Detail:    fmt.Sprintf("approved submission %d for task %q (%d spins)", submission.ID, task.Name, task.BonusSpins),
	}
	if err := db.Create(&audit).Error; err != nil {
		log.Printf("[task-review] audit log write failed: %v", err)
	}

	go func() {
		_, _ = services.SendApprovalNotification(db, submission.UserID, tenantID, task.TaskType, task.BonusSpins)
	}()

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Pengajuan disetujui",
		Data: map[string]interface{}{
			"submission_id": submission.ID,
			"bonus_spins":   task.BonusSpins,
		},
	})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// POST /manager/submissions/{id}/reject
func RejectSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	managerID, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)
	submissionID, err := pathUint(r, "id")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Pengajuan tidak valid"})
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Alasan penolakan wajib diisi"})
		return
	}
	reason := strings.TrimSpace(req.Reason)

	db := database.DB

	submission, task, err := loadPendingSubmission(db, submissionID, tenantID)
	if err != nil {
		if submission != nil {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Pengajuan ini sudah ditinjau"})
			return
		}
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Pengajuan tidak ditemukan"})
		return
	}

	now := time.Now()
	res := db.Model(&models.TaskSubmission{}).
		Where("id = ? AND status = ?", submission.ID, "pending").
		Updates(map[string]interface{}{
			"status":        "rejected",
			"reject_reason": reason,
			"reviewed_by":   managerID,
			"reviewed_at":   now,
		})
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Pengajuan ini sudah ditinjau"})
		return
	}

	audit := models.ManagerAuditLog{
		TenantID:  tenantID,
		ManagerID: managerID,
		UserID:    &submission.UserID,
		Action:    models.AuditActionTaskReject,
		Detail:    fmt.Sprintf("rejected submission %d for task %q: %s", submission.ID, task.Name, reason),
	}
	if err := db.Create(&audit).Error; err != nil {
		log.Printf("[task-review] audit log write failed: %v", err)
	}

	go func() {
		_, _ = services.SendRejectionNotification(db, submission.UserID, tenantID, task.TaskType, reason)
	}()

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Pengajuan ditolak",
		Data: map[string]interface{}{
			"submission_id": submission.ID,
		},
	})
}
