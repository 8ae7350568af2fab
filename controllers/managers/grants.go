package managers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/database"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/services"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"
)

// GET /manager/customers/search?q=
func SearchCustomersHandler(w http.ResponseWriter, r *http.Request) {
	managerID, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < 3 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Kata kunci pencarian minimal 3 karakter"})
		return
	}

	matches, err := services.SearchCustomers(database.DB, managerID, query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Berhasil mencari pelanggan",
		Data:    matches,
	})
}

type directGrantRequest struct {
	Comment string `json:"comment,omitempty"`
}

// POST /manager/customers/{id}/grant
func DirectGrantHandler(w http.ResponseWriter, r *http.Request) {
	managerID, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	userID, err := pathUint(r, "id")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Pelanggan tidak valid"})
		return
	}

	var req directGrantRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	result, err := services.GrantDirectSpin(database.DB, managerID, userID, strings.TrimSpace(req.Comment))
	if err != nil {
		// the limit response still carries totals so the UI can show headroom
		if result != nil {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{
				Success: false,
				Message: "Batas pemberian spin untuk pelanggan ini sudah tercapai",
				Data:    result,
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Bonus spin berhasil diberikan",
		Data:    result,
	})
}
