package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageKind tags the notification variants sharing the retry/logging core.
type MessageKind string

const (
	MessageApproval  MessageKind = "approval"
	MessageRejection MessageKind = "rejection"
	MessageVoucher   MessageKind = "voucher"
	MessagePrize     MessageKind = "prize"
	MessageOTP       MessageKind = "otp"
)

const maxDeliveryAttempts = 3

// Swapped out in tests.
var (
	waSend  = utils.SendWhatsApp
	sleepFn = time.Sleep
)

// deliver runs the bounded retry loop: up to 3 attempts with 2s/4s backoff
// between them. Returns the attempt count and the last error.
func deliver(cfg utils.WaConfig, phone, message string) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= maxDeliveryAttempts; attempt++ {
		lastErr = waSend(cfg, phone, message)
		if lastErr == nil {
			return attempt, nil
		}
		log.Printf("[notify] delivery attempt %d/%d failed: phone=%s err=%v", attempt, maxDeliveryAttempts, utils.CensorNumber(phone), lastErr)
		if attempt < maxDeliveryAttempts {
			sleepFn(time.Duration(1<<attempt) * time.Second)
		}
	}
	return maxDeliveryAttempts, lastErr
}

// NotifyCustomer sends one WhatsApp message to a customer with bounded retry
// and writes an audit row. It never panics and its failure must never be
// treated as the calling operation's failure; callers fire and forget.
func NotifyCustomer(db *gorm.DB, userID, tenantID uint, kind MessageKind, message string) (bool, error) {
	var user models.User
	if err := db.Where("id = ? AND tenant_id = ?", userID, tenantID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCustomerNotFound
		}
		return false, err
	}

	return NotifyPhone(db, user.ID, tenantID, user.Number, kind, message)
}

// NotifyPhone is the phone-addressed dispatch core, used directly for OTP
// delivery before a customer row exists. userID may be 0 in that case.
func NotifyPhone(db *gorm.DB, userID, tenantID uint, phone string, kind MessageKind, message string) (bool, error) {
	cfg := ResolveMessagingConfig(db, tenantID)
	attempts, sendErr := deliver(cfg, phone, message)

	entry := models.NotificationLog{
		TenantID:    tenantID,
		UserID:      userID,
		Phone:       phone,
		MessageID:   uuid.NewString(),
		MessageType: string(kind),
		Attempts:    attempts,
		Success:     sendErr == nil,
	}
	if sendErr != nil {
		msg := sendErr.Error()
		entry.Error = &msg
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("[notify] audit log write failed: user_id=%d kind=%s err=%v", userID, kind, err)
	}

	if sendErr != nil {
		log.Printf("[notify] delivery failed after %d attempts: user_id=%d phone=%s kind=%s err=%v", attempts, userID, utils.CensorNumber(phone), kind, sendErr)
		return false, sendErr
	}
	return true, nil
}

func spinsWord(n uint) string {
	if n == 1 {
		return "spin"
	}
	return "spins"
}

// BuildApprovalMessage includes the task type and the exact bonus count.
func BuildApprovalMessage(taskType string, spins uint) string {
	return fmt.Sprintf("Selamat! Tugas %s kamu sudah disetujui. Kamu mendapat %d bonus %s. Putar rodanya sekarang!", taskType, spins, spinsWord(spins))
}

// BuildRejectionMessage includes the task type and the verbatim reason.
func BuildRejectionMessage(taskType, reason string) string {
	return fmt.Sprintf("Mohon maaf, tugas %s kamu belum bisa disetujui. Alasan: %s", taskType, reason)
}

// BuildVoucherMessage includes the code, prize name, readable expiry and the
// QR URL when present.
func BuildVoucherMessage(code, prizeName string, expiresAt time.Time, qrURL *string) string {
	msg := fmt.Sprintf("Selamat! Kamu memenangkan %s. Kode voucher: %s, berlaku sampai %s.", prizeName, code, expiresAt.Format("2 January 2006"))
	if qrURL != nil && *qrURL != "" {
		msg += " Tunjukkan QR ini saat penukaran: " + *qrURL
	}
	return msg
}

func BuildPrizeMessage(prizeName string) string {
	return fmt.Sprintf("Selamat! Kamu memenangkan %s. Hubungi toko untuk pengambilan hadiah.", prizeName)
}

func BuildOTPMessage(code string) string {
	return fmt.Sprintf("Kode OTP kamu: %s. Berlaku 5 menit. Jangan bagikan kode ini kepada siapa pun.", code)
}

// SendApprovalNotification tells a customer their task submission passed.
func SendApprovalNotification(db *gorm.DB, userID, tenantID uint, taskType string, spins uint) (bool, error) {
	return NotifyCustomer(db, userID, tenantID, MessageApproval, BuildApprovalMessage(taskType, spins))
}

// SendRejectionNotification tells a customer their task submission failed.
func SendRejectionNotification(db *gorm.DB, userID, tenantID uint, taskType, reason string) (bool, error) {
	return NotifyCustomer(db, userID, tenantID, MessageRejection, BuildRejectionMessage(taskType, reason))
}

// SendVoucherNotification delivers the voucher code after a winning spin.
func SendVoucherNotification(db *gorm.DB, voucher *models.Voucher, prizeName string) (bool, error) {
	return NotifyCustomer(db, voucher.UserID, voucher.TenantID, MessageVoucher,
		BuildVoucherMessage(voucher.Code, prizeName, voucher.ExpiresAt, voucher.QRImageURL))
}

// SendPrizeNotification congratulates a winner whose prize has no voucher.
func SendPrizeNotification(db *gorm.DB, userID, tenantID uint, prizeName string) (bool, error) {
	return NotifyCustomer(db, userID, tenantID, MessagePrize, BuildPrizeMessage(prizeName))
}

// SendOTP delivers a login code through the same dispatcher. The customer row
// may not exist yet, so delivery is addressed by phone.
func SendOTP(db *gorm.DB, tenantID uint, phone, code string) (bool, error) {
	return NotifyPhone(db, 0, tenantID, phone, MessageOTP, BuildOTPMessage(code))
}
