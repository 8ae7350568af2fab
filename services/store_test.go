package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testSchema mirrors the production tables the service layer touches. Written
// out by hand because the models carry MySQL enum column types that sqlite
// cannot parse through AutoMigrate.
var testSchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		number TEXT NOT NULL,
		name TEXT,
		email TEXT,
		reff_code TEXT NOT NULL UNIQUE,
		reff_by INTEGER,
		bonus_spins_earned INTEGER NOT NULL DEFAULT 0,
		referrals_unlocked INTEGER NOT NULL DEFAULT 0,
		verified_at DATETIME,
		status TEXT NOT NULL DEFAULT 'Active',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE managers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		max_spins_per_user INTEGER NOT NULL DEFAULT 3,
		status TEXT NOT NULL DEFAULT 'Active',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE campaigns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		spin_limit INTEGER NOT NULL DEFAULT 1,
		spin_cooldown_hours INTEGER NOT NULL DEFAULT 24,
		referrals_required INTEGER NOT NULL DEFAULT 3,
		starts_at DATETIME,
		ends_at DATETIME,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE spins (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		campaign_id INTEGER NOT NULL,
		prize_id INTEGER,
		won_prize BOOLEAN NOT NULL DEFAULT false,
		is_referral_bonus BOOLEAN NOT NULL DEFAULT false,
		created_at DATETIME
	)`,
	`CREATE TABLE prizes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		campaign_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		probability INTEGER NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		daily_limit INTEGER NOT NULL DEFAULT 0,
		daily_awarded INTEGER NOT NULL DEFAULT 0,
		daily_awarded_date DATETIME,
		current_stock INTEGER,
		low_stock_alert INTEGER,
		is_active BOOLEAN NOT NULL DEFAULT true,
		show_try_again_message BOOLEAN NOT NULL DEFAULT false,
		try_again_message TEXT,
		voucher_validity_days INTEGER NOT NULL DEFAULT 0,
		voucher_redeem_limit INTEGER NOT NULL DEFAULT 1,
		voucher_generate_qr BOOLEAN NOT NULL DEFAULT false,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE vouchers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		spin_id INTEGER NOT NULL UNIQUE,
		prize_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		code TEXT NOT NULL UNIQUE,
		expires_at DATETIME,
		redemption_limit INTEGER NOT NULL DEFAULT 1,
		redemptions_used INTEGER NOT NULL DEFAULT 0,
		qr_image_url TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE direct_spin_grants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		manager_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		spins_granted INTEGER NOT NULL,
		comment TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE manager_audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		manager_id INTEGER NOT NULL,
		user_id INTEGER,
		action TEXT NOT NULL,
		detail TEXT,
		created_at DATETIME
	)`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// a single connection so every session sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	for _, stmt := range testSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, tenantID uint, number, reffCode string) *models.User {
	t.Helper()
	u := &models.User{TenantID: tenantID, Number: number, ReffCode: reffCode, Status: "Active"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedSpin(t *testing.T, db *gorm.DB, u *models.User, campaignID uint) *models.Spin {
	t.Helper()
	s := &models.Spin{TenantID: u.TenantID, UserID: u.ID, CampaignID: campaignID}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("seed spin: %v", err)
	}
	return s
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return u
}

func TestGrantBonusSpins_RequiresPriorSpin(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, 1, "6281234500001", "AAAA1111")

	if _, err := GrantBonusSpins(db, u.ID, 2, "Task approved: Follow", "manager:1"); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}
	if got := reloadUser(t, db, u.ID).BonusSpinsEarned; got != 0 {
		t.Fatalf("ledger moved on a failed grant: bonus_spins_earned = %d", got)
	}
}

func TestGrantBonusSpins_IncrementsExactlyByAmount(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, 1, "6281234500002", "AAAA2222")
	seedSpin(t, db, u, 1)

	total, err := GrantBonusSpins(db, u.ID, 3, "Task approved: Share", "manager:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Fatalf("new total = %d, want 3", total)
	}

	total, err = GrantBonusSpins(db, u.ID, 2, "Referral reward (3/3 verified)", "system:referral")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 {
		t.Fatalf("new total = %d, want 5", total)
	}
	if got := reloadUser(t, db, u.ID).BonusSpinsEarned; got != 5 {
		t.Fatalf("stored total = %d, want 5", got)
	}
}

func TestGrantBonusSpins_UnknownCustomer(t *testing.T) {
	db := newTestDB(t)
	if _, err := GrantBonusSpins(db, 999, 1, "x", "manager:1"); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func seedManager(t *testing.T, db *gorm.DB, tenantID, maxPerUser uint) *models.Manager {
	t.Helper()
	m := &models.Manager{
		TenantID:        tenantID,
		Name:            "Budi",
		Username:        fmt.Sprintf("budi-%d-%d", tenantID, maxPerUser),
		Password:        "x",
		MaxSpinsPerUser: maxPerUser,
		Status:          "Active",
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed manager: %v", err)
	}
	return m
}

func TestGrantDirectSpin_CapSequence(t *testing.T) {
	db := newTestDB(t)
	m := seedManager(t, db, 1, 3)
	u := seedUser(t, db, 1, "6281234500003", "AAAA3333")
	seedSpin(t, db, u, 1)

	wantRemaining := []uint{2, 1, 0}
	for i, remaining := range wantRemaining {
		res, err := GrantDirectSpin(db, m.ID, u.ID, "")
		if err != nil {
			t.Fatalf("grant %d: unexpected error: %v", i+1, err)
		}
		if res.SpinsGranted != 1 || res.TotalGrantedToUser != uint(i+1) || res.RemainingLimit != remaining {
			t.Fatalf("grant %d: got %+v, want granted=1 total=%d remaining=%d", i+1, res, i+1, remaining)
		}
	}

	res, err := GrantDirectSpin(db, m.ID, u.ID, "")
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached on fourth grant, got %v", err)
	}
	if res == nil || res.TotalGrantedToUser != 3 || res.RemainingLimit != 0 {
		t.Fatalf("exhausted result = %+v, want total=3 remaining=0", res)
	}

	if got := reloadUser(t, db, u.ID).BonusSpinsEarned; got != 3 {
		t.Fatalf("ledger total = %d, want 3", got)
	}
	var rows int64
	if err := db.Model(&models.DirectSpinGrant{}).Where("manager_id = ? AND user_id = ?", m.ID, u.ID).Count(&rows).Error; err != nil {
		t.Fatalf("count grants: %v", err)
	}
	if rows != 3 {
		t.Fatalf("grant rows = %d, want 3", rows)
	}
}

func TestGrantDirectSpin_TenantMismatch(t *testing.T) {
	db := newTestDB(t)
	m := seedManager(t, db, 1, 3)
	u := seedUser(t, db, 2, "6281234500004", "AAAA4444")
	seedSpin(t, db, u, 1)

	if _, err := GrantDirectSpin(db, m.ID, u.ID, ""); !errors.Is(err, ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch, got %v", err)
	}
}

func TestGrantDirectSpin_AttemptRowKeptOnIneligibleCustomer(t *testing.T) {
	db := newTestDB(t)
	m := seedManager(t, db, 1, 3)
	u := seedUser(t, db, 1, "6281234500005", "AAAA5555")

	if _, err := GrantDirectSpin(db, m.ID, u.ID, "belum spin"); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}
	// the attempt is on record, the ledger is not
	var rows int64
	if err := db.Model(&models.DirectSpinGrant{}).Where("manager_id = ? AND user_id = ?", m.ID, u.ID).Count(&rows).Error; err != nil {
		t.Fatalf("count grants: %v", err)
	}
	if rows != 1 {
		t.Fatalf("grant rows = %d, want 1", rows)
	}
	if got := reloadUser(t, db, u.ID).BonusSpinsEarned; got != 0 {
		t.Fatalf("ledger total = %d, want 0", got)
	}
}

func seedPrize(t *testing.T, db *gorm.DB, p *models.Prize) *models.Prize {
	t.Helper()
	if p.Name == "" {
		p.Name = "Hadiah"
	}
	if p.Probability == 0 {
		p.Probability = 10
	}
	p.TenantID = 1
	p.CampaignID = 1
	p.IsActive = true
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed prize: %v", err)
	}
	return p
}

func reloadPrize(t *testing.T, db *gorm.DB, id uint) models.Prize {
	t.Helper()
	var p models.Prize
	if err := db.First(&p, id).Error; err != nil {
		t.Fatalf("reload prize: %v", err)
	}
	return p
}

func TestReservePrize_DailyLimitStopsAtCap(t *testing.T) {
	db := newTestDB(t)
	p := seedPrize(t, db, &models.Prize{DailyLimit: 2})
	today := dayOf(time.Now())

	for i := 0; i < 2; i++ {
		ok, err := reservePrize(db, p.ID, today)
		if err != nil {
			t.Fatalf("reserve %d: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("reserve %d should have won", i+1)
		}
	}
	ok, err := reservePrize(db, p.ID, today)
	if err != nil {
		t.Fatalf("reserve 3: %v", err)
	}
	if ok {
		t.Fatal("third reservation exceeded the daily limit")
	}
	if got := reloadPrize(t, db, p.ID).DailyAwarded; got != 2 {
		t.Fatalf("daily_awarded = %d, want 2", got)
	}
}

func TestReservePrize_DailyCounterResetsNextDay(t *testing.T) {
	db := newTestDB(t)
	p := seedPrize(t, db, &models.Prize{DailyLimit: 1})
	today := dayOf(time.Now())

	if ok, err := reservePrize(db, p.ID, today); err != nil || !ok {
		t.Fatalf("first reservation: ok=%v err=%v", ok, err)
	}
	if ok, err := reservePrize(db, p.ID, today); err != nil || ok {
		t.Fatalf("same-day reservation past the limit: ok=%v err=%v", ok, err)
	}

	tomorrow := today.AddDate(0, 0, 1)
	if ok, err := reservePrize(db, p.ID, tomorrow); err != nil || !ok {
		t.Fatalf("next-day reservation: ok=%v err=%v", ok, err)
	}
	got := reloadPrize(t, db, p.ID)
	if got.DailyAwarded != 1 {
		t.Fatalf("daily_awarded after reset = %d, want 1", got.DailyAwarded)
	}
}

func TestReservePrize_StockDepletes(t *testing.T) {
	db := newTestDB(t)
	stock := 1
	p := seedPrize(t, db, &models.Prize{CurrentStock: &stock})
	today := dayOf(time.Now())

	if ok, err := reservePrize(db, p.ID, today); err != nil || !ok {
		t.Fatalf("first reservation: ok=%v err=%v", ok, err)
	}
	got := reloadPrize(t, db, p.ID)
	if got.CurrentStock == nil || *got.CurrentStock != 0 {
		t.Fatalf("current_stock = %v, want 0", got.CurrentStock)
	}
	if ok, err := reservePrize(db, p.ID, today); err != nil || ok {
		t.Fatalf("reservation on empty stock: ok=%v err=%v", ok, err)
	}
}

func TestReservePrize_UnlimitedStockStaysUnlimited(t *testing.T) {
	db := newTestDB(t)
	p := seedPrize(t, db, &models.Prize{})
	today := dayOf(time.Now())

	if ok, err := reservePrize(db, p.ID, today); err != nil || !ok {
		t.Fatalf("reservation: ok=%v err=%v", ok, err)
	}
	if got := reloadPrize(t, db, p.ID); got.CurrentStock != nil {
		t.Fatalf("current_stock = %v, want NULL", *got.CurrentStock)
	}
}

func TestCreateVoucher_OnePerSpin(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, 1, "6281234500006", "AAAA6666")
	spin := seedSpin(t, db, u, 1)

	params := VoucherParams{
		SpinID:          spin.ID,
		PrizeID:         1,
		UserID:          u.ID,
		TenantID:        1,
		TenantSlug:      "kopikenangan",
		ValidityDays:    7,
		RedemptionLimit: 1,
	}
	first, err := CreateVoucher(db, params)
	if err != nil {
		t.Fatalf("first mint: %v", err)
	}
	if !strings.HasPrefix(first.Code, "KOPI-") {
		t.Fatalf("code %q missing tenant prefix", first.Code)
	}

	second, err := CreateVoucher(db, params)
	if err != nil {
		t.Fatalf("second mint: %v", err)
	}
	if second.ID != first.ID || second.Code != first.Code {
		t.Fatalf("second call minted a new voucher: first=%d/%s second=%d/%s", first.ID, first.Code, second.ID, second.Code)
	}
	var rows int64
	if err := db.Model(&models.Voucher{}).Where("spin_id = ?", spin.ID).Count(&rows).Error; err != nil {
		t.Fatalf("count vouchers: %v", err)
	}
	if rows != 1 {
		t.Fatalf("voucher rows = %d, want 1", rows)
	}
}

func TestRedeemVoucher_CountsDownThenExhausts(t *testing.T) {
	db := newTestDB(t)
	v := models.Voucher{
		TenantID:        1,
		SpinID:          1,
		PrizeID:         1,
		UserID:          1,
		Code:            "KOPI-TESTTESTTEST",
		ExpiresAt:       time.Now().AddDate(0, 0, 7),
		RedemptionLimit: 2,
	}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("seed voucher: %v", err)
	}

	for i := 1; i <= 2; i++ {
		got, err := RedeemVoucher(db, v.Code, 1)
		if err != nil {
			t.Fatalf("redeem %d: %v", i, err)
		}
		if got.RedemptionsUsed != uint(i) {
			t.Fatalf("redeem %d: used = %d, want %d", i, got.RedemptionsUsed, i)
		}
	}
	if _, err := RedeemVoucher(db, v.Code, 1); !errors.Is(err, ErrVoucherExhausted) {
		t.Fatalf("expected ErrVoucherExhausted, got %v", err)
	}
	if _, err := RedeemVoucher(db, v.Code, 2); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("expected ErrVoucherNotFound for the wrong tenant, got %v", err)
	}
}

func seedVerifiedReferral(t *testing.T, db *gorm.DB, referrer *models.User, number, reffCode string) {
	t.Helper()
	now := time.Now()
	u := &models.User{
		TenantID:   referrer.TenantID,
		Number:     number,
		ReffCode:   reffCode,
		ReffBy:     &referrer.ID,
		VerifiedAt: &now,
		Status:     "Active",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed referral: %v", err)
	}
}

func TestEvaluateReferralUnlock_SingleGrantPerThreshold(t *testing.T) {
	db := newTestDB(t)
	campaign := models.Campaign{TenantID: 1, Name: "Gebyar", ReferralsRequired: 3, IsActive: true, StartsAt: time.Now()}
	if err := db.Create(&campaign).Error; err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
	referrer := seedUser(t, db, 1, "6281234500007", "AAAA7777")
	seedSpin(t, db, referrer, campaign.ID)
	for i := 0; i < 3; i++ {
		seedVerifiedReferral(t, db, referrer, fmt.Sprintf("62812345100%02d", i), fmt.Sprintf("BBBB77%02d", i))
	}

	EvaluateReferralUnlock(db, referrer.ID)
	got := reloadUser(t, db, referrer.ID)
	if got.BonusSpinsEarned != 1 || got.ReferralsUnlocked != 1 {
		t.Fatalf("after unlock: earned=%d unlocked=%d, want 1/1", got.BonusSpinsEarned, got.ReferralsUnlocked)
	}

	// a repeat evaluation of the same threshold must not credit again
	EvaluateReferralUnlock(db, referrer.ID)
	got = reloadUser(t, db, referrer.ID)
	if got.BonusSpinsEarned != 1 || got.ReferralsUnlocked != 1 {
		t.Fatalf("double credit: earned=%d unlocked=%d, want 1/1", got.BonusSpinsEarned, got.ReferralsUnlocked)
	}

	for i := 3; i < 6; i++ {
		seedVerifiedReferral(t, db, referrer, fmt.Sprintf("62812345100%02d", i), fmt.Sprintf("BBBB77%02d", i))
	}
	EvaluateReferralUnlock(db, referrer.ID)
	got = reloadUser(t, db, referrer.ID)
	if got.BonusSpinsEarned != 2 || got.ReferralsUnlocked != 2 {
		t.Fatalf("second threshold: earned=%d unlocked=%d, want 2/2", got.BonusSpinsEarned, got.ReferralsUnlocked)
	}
}

func TestEvaluateReferralUnlock_WaitsForFirstSpin(t *testing.T) {
	db := newTestDB(t)
	campaign := models.Campaign{TenantID: 1, Name: "Gebyar", ReferralsRequired: 2, IsActive: true, StartsAt: time.Now()}
	if err := db.Create(&campaign).Error; err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
	referrer := seedUser(t, db, 1, "6281234500008", "AAAA8888")
	seedVerifiedReferral(t, db, referrer, "6281234510100", "BBBB8800")
	seedVerifiedReferral(t, db, referrer, "6281234510101", "BBBB8801")

	// no spin yet: nothing is credited and nothing is marked unlocked
	EvaluateReferralUnlock(db, referrer.ID)
	got := reloadUser(t, db, referrer.ID)
	if got.BonusSpinsEarned != 0 || got.ReferralsUnlocked != 0 {
		t.Fatalf("premature credit: earned=%d unlocked=%d, want 0/0", got.BonusSpinsEarned, got.ReferralsUnlocked)
	}

	// after the first spin the next evaluation catches up
	seedSpin(t, db, referrer, campaign.ID)
	EvaluateReferralUnlock(db, referrer.ID)
	got = reloadUser(t, db, referrer.ID)
	if got.BonusSpinsEarned != 1 || got.ReferralsUnlocked != 1 {
		t.Fatalf("catch-up grant: earned=%d unlocked=%d, want 1/1", got.BonusSpinsEarned, got.ReferralsUnlocked)
	}
}
