package managers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/database"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// reviewSchema is the hand-written slice of the schema the review handlers
// touch; the production models carry MySQL enum column types that sqlite
// cannot parse through AutoMigrate.
var reviewSchema = []string{
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
	`CREATE TABLE social_tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		campaign_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		task_type TEXT NOT NULL,
		description TEXT,
		bonus_spins INTEGER NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'Active',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE task_submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		task_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		proof_url TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		reject_reason TEXT,
		reviewed_by INTEGER,
		reviewed_at DATETIME,
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
	`CREATE TABLE notification_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		phone TEXT NOT NULL,
		message_id TEXT NOT NULL UNIQUE,
		message_type TEXT NOT NULL,
		attempts INTEGER NOT NULL,
		success BOOLEAN NOT NULL,
		error TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE settings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		wa_base_url TEXT,
		wa_api_key TEXT,
		wa_sender TEXT,
		maintenance BOOLEAN NOT NULL DEFAULT false,
		updated_at DATETIME
	)`,
	`CREATE TABLE tenants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT,
		slug TEXT,
		wa_api_key TEXT,
		wa_sender TEXT,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

func useReviewDB(t *testing.T) *gorm.DB {
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
	sqlDB.SetMaxOpenConns(1)
	for _, stmt := range reviewSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

type reviewFixture struct {
	user       models.User
	task       models.SocialTask
	submission models.TaskSubmission
}

func seedReviewFixture(t *testing.T, db *gorm.DB, withSpin bool) reviewFixture {
	t.Helper()
	user := models.User{TenantID: 1, Number: "6281234567890", ReffCode: "CCCC0001", Status: "Active"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if withSpin {
		if err := db.Create(&models.Spin{TenantID: 1, UserID: user.ID, CampaignID: 1}).Error; err != nil {
			t.Fatalf("seed spin: %v", err)
		}
	}
	task := models.SocialTask{TenantID: 1, CampaignID: 1, Name: "Follow IG", TaskType: "follow", BonusSpins: 2, Status: "Active"}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
	submission := models.TaskSubmission{TenantID: 1, TaskID: task.ID, UserID: user.ID, Status: "pending"}
	if err := db.Create(&submission).Error; err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	return reviewFixture{user: user, task: task, submission: submission}
}

func approveRequest(submissionID, managerID, tenantID uint) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/manager/submissions/"+strconv.Itoa(int(submissionID))+"/approve", nil)
	r = mux.SetURLVars(r, map[string]string{"id": strconv.Itoa(int(submissionID))})
	ctx := context.WithValue(r.Context(), utils.ManagerIDKey, managerID)
	ctx = context.WithValue(ctx, utils.TenantIDKey, tenantID)
	return r.WithContext(ctx)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var resp utils.APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestApproveSubmission_GrantFailureKeepsPending(t *testing.T) {
	db := useReviewDB(t)
	fx := seedReviewFixture(t, db, false) // customer has never spun

	w := httptest.NewRecorder()
	ApproveSubmissionHandler(w, approveRequest(fx.submission.ID, 7, 1))

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Success {
		t.Fatal("expected a failure response")
	}

	var submission models.TaskSubmission
	if err := db.First(&submission, fx.submission.ID).Error; err != nil {
		t.Fatalf("reload submission: %v", err)
	}
	if submission.Status != "pending" || submission.ReviewedBy != nil {
		t.Fatalf("submission was consumed by a failed grant: status=%s reviewed_by=%v", submission.Status, submission.ReviewedBy)
	}
	var user models.User
	if err := db.First(&user, fx.user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.BonusSpinsEarned != 0 {
		t.Fatalf("bonus credited despite failed grant: %d", user.BonusSpinsEarned)
	}
}

func TestApproveSubmission_CreditsAndApproves(t *testing.T) {
	db := useReviewDB(t)
	fx := seedReviewFixture(t, db, true)

	w := httptest.NewRecorder()
	ApproveSubmissionHandler(w, approveRequest(fx.submission.ID, 7, 1))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	if resp := decodeResponse(t, w); !resp.Success {
		t.Fatal("expected a success response")
	}

	var submission models.TaskSubmission
	if err := db.First(&submission, fx.submission.ID).Error; err != nil {
		t.Fatalf("reload submission: %v", err)
	}
	if submission.Status != "approved" {
		t.Fatalf("status = %s, want approved", submission.Status)
	}
	if submission.ReviewedBy == nil || *submission.ReviewedBy != 7 || submission.ReviewedAt == nil {
		t.Fatalf("review stamp missing: reviewed_by=%v reviewed_at=%v", submission.ReviewedBy, submission.ReviewedAt)
	}
	var user models.User
	if err := db.First(&user, fx.user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.BonusSpinsEarned != fx.task.BonusSpins {
		t.Fatalf("bonus_spins_earned = %d, want %d", user.BonusSpinsEarned, fx.task.BonusSpins)
	}
	var audits int64
	if err := db.Model(&models.ManagerAuditLog{}).
		Where("manager_id = ? AND action = ?", 7, models.AuditActionTaskApprove).
		Count(&audits).Error; err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if audits != 1 {
		t.Fatalf("audit rows = %d, want 1", audits)
	}
}

func TestApproveSubmission_AlreadyReviewed(t *testing.T) {
	db := useReviewDB(t)
	fx := seedReviewFixture(t, db, true)
	now := time.Now()
	reviewer := uint(3)
	if err := db.Model(&models.TaskSubmission{}).Where("id = ?", fx.submission.ID).
		Updates(map[string]interface{}{"status": "approved", "reviewed_by": reviewer, "reviewed_at": now}).Error; err != nil {
		t.Fatalf("mark reviewed: %v", err)
	}

	w := httptest.NewRecorder()
	ApproveSubmissionHandler(w, approveRequest(fx.submission.ID, 7, 1))

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	var user models.User
	if err := db.First(&user, fx.user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.BonusSpinsEarned != 0 {
		t.Fatalf("bonus credited on an already-reviewed submission: %d", user.BonusSpinsEarned)
	}
}
