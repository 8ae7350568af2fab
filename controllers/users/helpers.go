package users

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

func userIDFromAuthHeader(r *http.Request) (uint, error) {
	if uid, ok := utils.GetUserID(r); ok && uid != 0 {
		return uid, nil
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

// writeServiceError maps service sentinels onto HTTP responses with
// customer-safe messages. Anything unmapped is a 500 with a generic message.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCampaignNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Program tidak ditemukan"})
	case errors.Is(err, services.ErrCustomerNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Akun tidak ditemukan"})
	case errors.Is(err, services.ErrVoucherNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Voucher tidak ditemukan"})
	case errors.Is(err, services.ErrCampaignInactive):
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Program sedang tidak aktif"})
	case errors.Is(err, services.ErrNoSpinsAvailable):
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Kesempatan spin Anda habis"})
	case errors.Is(err, services.ErrNotEligible):
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Anda belum memenuhi syarat"})
	case errors.Is(err, services.ErrVoucherExpired):
		utils.WriteJSON(w, http.StatusGone, utils.APIResponse{Success: false, Message: "Voucher sudah kedaluwarsa"})
	case errors.Is(err, services.ErrVoucherExhausted):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Voucher sudah digunakan"})
	default:
		log.Println(err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
	}
}
