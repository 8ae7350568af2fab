package users

import (
	"net/http"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/database"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/services"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"
)

// GET /api/campaigns/{id}/spin-status
func SpinStatusHandler(w http.ResponseWriter, r *http.Request) {
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

	status, err := services.GetSpinStatus(database.DB, userID, campaignID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Berhasil mengambil status spin",
		Data:    status,
	})
}

// POST /api/campaigns/{id}/spin
func SpinHandler(w http.ResponseWriter, r *http.Request) {
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

	result, err := services.ExecuteSpin(database.DB, userID, campaignID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	message := "Belum beruntung, coba lagi ya!"
	if result.WonPrize && result.Prize != nil {
		message = "Selamat! Anda memenangkan " + result.Prize.Name
	} else if result.Message != "" {
		message = result.Message
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: message,
		Data:    result,
	})
}
