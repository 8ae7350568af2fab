package managers

import (
	"net/http"
	"strings"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/database"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/services"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"

	"github.com/gorilla/mux"
)

func voucherCodeFromPath(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(mux.Vars(r)["code"]))
}

// GET /manager/vouchers/{code}
//
// Counter-side lookup before handing over the prize: shows validity, the
// owning customer and redemptions left without consuming anything.
func ValidateVoucherHandler(w http.ResponseWriter, r *http.Request) {
	_, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)
	code := voucherCodeFromPath(r)

	voucher, err := services.ValidateVoucher(database.DB, code, tenantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Voucher valid",
		Data:    voucherDetail(voucher),
	})
}

// POST /manager/vouchers/{code}/redeem
func RedeemVoucherHandler(w http.ResponseWriter, r *http.Request) {
	_, err := managerIDFromContext(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	tenantID, _ := utils.GetTenantID(r)
	code := voucherCodeFromPath(r)

	voucher, err := services.RedeemVoucher(database.DB, code, tenantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Voucher berhasil digunakan",
		Data:    voucherDetail(voucher),
	})
}

func voucherDetail(v *models.Voucher) map[string]interface{} {
	db := database.DB

	detail := map[string]interface{}{
		"code":             v.Code,
		"expires_at":       v.ExpiresAt,
		"redemption_limit": v.RedemptionLimit,
		"redemptions_used": v.RedemptionsUsed,
		"qr_image_url":     v.QRImageURL,
	}

	var prize models.Prize
	if err := db.Select("id, name").First(&prize, v.PrizeID).Error; err == nil {
		detail["prize_name"] = prize.Name
	}
	var user models.User
	if err := db.Select("id, number, name").First(&user, v.UserID).Error; err == nil {
		detail["customer"] = map[string]interface{}{
			"id":     user.ID,
			"number": user.Number,
			"name":   utils.GetStringValue(user.Name),
		}
	}
	return detail
}
