package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

// VoucherParams carries everything needed to mint a voucher for a winning spin.
type VoucherParams struct {
	SpinID          uint
	PrizeID         uint
	UserID          uint
	TenantID        uint
	TenantSlug      string
	ValidityDays    uint
	RedemptionLimit uint
	GenerateQR      bool
}

const (
	voucherCodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	voucherRandomLen  = 12
	voucherGenRetries = 20
)

// VoucherCodePrefix derives the 4-character code prefix from the tenant slug:
// uppercase alphanumerics only, padded with X for short slugs.
func VoucherCodePrefix(slug string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(slug) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 4 {
				break
			}
		}
	}
	for b.Len() < 4 {
		b.WriteByte('X')
	}
	return b.String()
}

func randomVoucherSuffix() (string, error) {
	b := make([]byte, voucherRandomLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	var code strings.Builder
	for _, v := range b {
		code.WriteByte(voucherCodeChars[int(v)%len(voucherCodeChars)])
	}
	return code.String(), nil
}

func generateVoucherCode(db *gorm.DB, slug string) (string, error) {
	prefix := VoucherCodePrefix(slug)
	for attempt := 0; attempt < voucherGenRetries; attempt++ {
		suffix, err := randomVoucherSuffix()
		if err != nil {
			return "", err
		}
		code := prefix + "-" + suffix
		var count int64
		if err := db.Model(&models.Voucher{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate unique voucher code")
}

// CreateVoucher mints a redeemable voucher for a winning spin. Idempotent per
// spin: a second call for the same SpinID returns the existing voucher. The
// caller treats any error as non-fatal to the spin itself.
func CreateVoucher(db *gorm.DB, p VoucherParams) (*models.Voucher, error) {
	var existing models.Voucher
	err := db.Where("spin_id = ?", p.SpinID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code, err := generateVoucherCode(db, p.TenantSlug)
	if err != nil {
		return nil, err
	}

	voucher := models.Voucher{
		TenantID:        p.TenantID,
		SpinID:          p.SpinID,
		PrizeID:         p.PrizeID,
		UserID:          p.UserID,
		Code:            code,
		ExpiresAt:       time.Now().AddDate(0, 0, int(p.ValidityDays)),
		RedemptionLimit: p.RedemptionLimit,
	}

	if p.GenerateQR {
		if url, err := uploadVoucherQR(p.TenantID, code); err != nil {
			// The voucher stands without its QR image.
			log.Printf("[voucher] QR generation failed: spin_id=%d code=%s err=%v", p.SpinID, code, err)
		} else {
			voucher.QRImageURL = &url
		}
	}

	if err := db.Create(&voucher).Error; err != nil {
		// A concurrent retry may have won the spin_id unique index.
		var again models.Voucher
		if lookupErr := db.Where("spin_id = ?", p.SpinID).First(&again).Error; lookupErr == nil {
			return &again, nil
		}
		return nil, err
	}
	return &voucher, nil
}

func uploadVoucherQR(tenantID uint, code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("vouchers/%d/%s.png", tenantID, uuid.NewString())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return utils.UploadQRImage(ctx, key, png)
}

// ValidateVoucher checks tenant ownership, expiry and remaining redemptions.
func ValidateVoucher(db *gorm.DB, code string, tenantID uint) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := db.Where("code = ? AND tenant_id = ?", code, tenantID).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}
	if time.Now().After(voucher.ExpiresAt) {
		return &voucher, ErrVoucherExpired
	}
	if voucher.RedemptionsUsed >= voucher.RedemptionLimit {
		return &voucher, ErrVoucherExhausted
	}
	return &voucher, nil
}

// RedeemVoucher consumes one redemption with a conditional UPDATE so two
// concurrent redemptions cannot both pass the remaining-count check.
func RedeemVoucher(db *gorm.DB, code string, tenantID uint) (*models.Voucher, error) {
	voucher, err := ValidateVoucher(db, code, tenantID)
	if err != nil {
		return voucher, err
	}

	res := db.Model(&models.Voucher{}).
		Where("id = ? AND redemptions_used < redemption_limit AND expires_at > ?", voucher.ID, time.Now()).
		UpdateColumn("redemptions_used", gorm.Expr("redemptions_used + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return voucher, ErrVoucherExhausted
	}

	voucher.RedemptionsUsed++
	return voucher, nil
}
