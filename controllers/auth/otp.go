package auth

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/database"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/middleware"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/services"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"

	"gorm.io/gorm"
)

const otpValidity = 5 * time.Minute

type requestOTPRequest struct {
	TenantSlug string `json:"tenant"`
	Number     string `json:"number"`
}

type verifyOTPRequest struct {
	TenantSlug string  `json:"tenant"`
	Number     string  `json:"number"`
	Code       string  `json:"code"`
	Name       *string `json:"name,omitempty"`
	ReffCode   string  `json:"reff_code,omitempty"`
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func tenantBySlug(slug string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := database.DB.Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// POST /auth/otp/request
func RequestOTPHandler(w http.ResponseWriter, r *http.Request) {
	var req requestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Permintaan tidak valid"})
		return
	}
	number := utils.NormalizeDigits(req.Number)
	if len(number) < 9 || len(number) > 15 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nomor telepon tidak valid"})
		return
	}

	tenant, err := tenantBySlug(req.TenantSlug)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Program tidak ditemukan"})
		return
	}

	limiter := middleware.GetOTPRateLimiter()
	ip := middleware.GetClientIP(r)
	if ok, wait, msg := limiter.CheckIP(ip); !ok {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
			Success: false,
			Message: msg,
			Data:    map[string]interface{}{"retry_after_seconds": int(wait.Seconds())},
		})
		return
	}
	if ok, wait, msg := limiter.CheckPhone(number); !ok {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
			Success: false,
			Message: msg,
			Data:    map[string]interface{}{"retry_after_seconds": int(wait.Seconds())},
		})
		return
	}

	code, err := generateOTPCode()
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	otp := models.OTPCode{
		TenantID:  tenant.ID,
		Number:    number,
		Code:      code,
		ExpiresAt: time.Now().Add(otpValidity),
	}
	if err := database.DB.Create(&otp).Error; err != nil {
		log.Printf("[otp] store failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	if ok, err := services.SendOTP(database.DB, tenant.ID, number, code); !ok {
		log.Printf("[otp] delivery failed: tenant=%d number=%s err=%v", tenant.ID, utils.CensorNumber(number), err)
		utils.WriteJSON(w, http.StatusBadGateway, utils.APIResponse{Success: false, Message: "Gagal mengirim kode OTP, silakan coba lagi"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Kode OTP telah dikirim melalui WhatsApp",
		Data:    map[string]interface{}{"expires_in_seconds": int(otpValidity.Seconds())},
	})
}

// reffCodeCharset drops ambiguous characters, same alphabet as voucher codes.
const reffCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateReffCode(db *gorm.DB) (string, error) {
	for attempt := 0; attempt < 20; attempt++ {
		b := make([]byte, 8)
		for i := range b {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(reffCodeCharset))))
			if err != nil {
				return "", err
			}
			b[i] = reffCodeCharset[n.Int64()]
		}
		code := string(b)
		var count int64
		if err := db.Model(&models.User{}).Where("reff_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate unique referral code")
}

// POST /auth/otp/verify
//
// Verifies the code, creates the customer account on first login, attributes
// the referral when a reff_code rides along, and issues the access token.
func VerifyOTPHandler(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Permintaan tidak valid"})
		return
	}
	number := utils.NormalizeDigits(req.Number)

	tenant, err := tenantBySlug(req.TenantSlug)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Program tidak ditemukan"})
		return
	}

	db := database.DB

	var otp models.OTPCode
	err = db.Where("tenant_id = ? AND number = ? AND code = ? AND consumed_at IS NULL AND expires_at > ?",
		tenant.ID, number, req.Code, time.Now()).
		Order("id DESC").First(&otp).Error
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Kode OTP salah atau sudah kedaluwarsa"})
		return
	}

	now := time.Now()
	if err := db.Model(&otp).UpdateColumn("consumed_at", now).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	var user models.User
	var referrerID *uint
	created := false
	err = db.Where("tenant_id = ? AND number = ?", tenant.ID, number).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		reffCode, genErr := generateReffCode(db)
		if genErr != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
			return
		}
		user = models.User{
			TenantID:   tenant.ID,
			Number:     number,
			Name:       req.Name,
			ReffCode:   reffCode,
			VerifiedAt: &now,
			Status:     "Active",
		}
		// referral attribution happens once, at account creation
		if req.ReffCode != "" {
			var referrer models.User
			if err := db.Where("tenant_id = ? AND reff_code = ?", tenant.ID, req.ReffCode).First(&referrer).Error; err == nil {
				user.ReffBy = &referrer.ID
				referrerID = &referrer.ID
			}
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("[auth] user create failed: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
			return
		}
		created = true
	case err != nil:
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	default:
		if user.Status != "Active" {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Akun anda tidak aktif"})
			return
		}
		if user.VerifiedAt == nil {
			_ = db.Model(&user).UpdateColumn("verified_at", now).Error
			user.VerifiedAt = &now
			referrerID = user.ReffBy
		}
	}

	// a newly verified referral may push the referrer over the next unlock
	if referrerID != nil {
		go services.EvaluateReferralUnlock(db, *referrerID)
	}

	middleware.GetOTPRateLimiter().ResetPhone(number)

	token, err := utils.GenerateJWT(user.ID, tenant.ID, "user")
	if err != nil {
		log.Printf("[auth] token issue failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login berhasil",
		Data: map[string]interface{}{
			"token":       token,
			"new_account": created,
			"user": map[string]interface{}{
				"id":        user.ID,
				"number":    user.Number,
				"name":      utils.GetStringValue(user.Name),
				"reff_code": user.ReffCode,
			},
		},
	})
}
