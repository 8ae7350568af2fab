package managers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/services"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"

	"github.com/gorilla/mux"
)

func managerIDFromContext(r *http.Request) (uint, error) {
	if mid, ok := utils.GetManagerID(r); ok && mid != 0 {
		return mid, nil
	}
	return 0, fmt.Errorf("unauthorized")
}

func pathUint(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(v), nil
}

func queryInt(r *http.Request, name string, def int) int {
	if s := r.URL.Query().Get(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrManagerNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Manager tidak ditemukan"})
	case errors.Is(err, services.ErrManagerInactive):
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Akun manager tidak aktif"})
	case errors.Is(err, services.ErrCustomerNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Pelanggan tidak ditemukan"})
	case errors.Is(err, services.ErrVoucherNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Voucher tidak ditemukan"})
	case errors.Is(err, services.ErrTenantMismatch):
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Pelanggan berada di luar program anda"})
	case errors.Is(err, services.ErrNotEligible):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Pelanggan belum pernah melakukan spin"})
	case errors.Is(err, services.ErrLimitReached):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Batas pemberian spin untuk pelanggan ini sudah tercapai"})
	case errors.Is(err, services.ErrVoucherExpired):
		utils.WriteJSON(w, http.StatusGone, utils.APIResponse{Success: false, Message: "Voucher sudah kedaluwarsa"})
	case errors.Is(err, services.ErrVoucherExhausted):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Voucher sudah mencapai batas penggunaan"})
	default:
		log.Println(err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
	}
}
