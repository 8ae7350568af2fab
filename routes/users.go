package routes

import (
	"net/http"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/controllers/auth"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/controllers/users"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes registers the customer-facing surface: OTP login plus the
// landing-page endpoints (wheel, status, spin, referrals, tasks, vouchers).
func UsersRoutes(api *mux.Router) {
	// OTP endpoints carry their own per-phone ladder inside the handler; this
	// IP window is a coarse outer fence.
	otpLimiter := middleware.NewIPRateLimiter(30, 5*time.Minute)
	// Per-user session limiter, 60s sliding window
	userLimiter := middleware.NewUserRateLimiter(60)

	api.Handle("/auth/otp/request", otpLimiter.Middleware(http.HandlerFunc(auth.RequestOTPHandler))).Methods(http.MethodPost)
	api.Handle("/auth/otp/verify", otpLimiter.Middleware(http.HandlerFunc(auth.VerifyOTPHandler))).Methods(http.MethodPost)

	authed := func(h http.HandlerFunc) http.Handler {
		return userLimiter.Middleware(middleware.AuthMiddleware(h))
	}

	// Wheel layout and spin status
	api.Handle("/api/campaigns/{id}/prizes", authed(users.PrizeListHandler)).Methods(http.MethodGet)
	api.Handle("/api/campaigns/{id}/spin-status", authed(users.SpinStatusHandler)).Methods(http.MethodGet)

	// Spin execution
	api.Handle("/api/campaigns/{id}/spin", authed(users.SpinHandler)).Methods(http.MethodPost)

	// Referrals
	api.Handle("/api/referrals", authed(users.ReferralHandler)).Methods(http.MethodGet)

	// Social tasks
	api.Handle("/api/campaigns/{id}/tasks", authed(users.TaskListHandler)).Methods(http.MethodGet)
	api.Handle("/api/tasks/{id}/submit", authed(users.TaskSubmitHandler)).Methods(http.MethodPost)

	// Vouchers and history
	api.Handle("/api/vouchers", authed(users.MyVouchersHandler)).Methods(http.MethodGet)
	api.Handle("/api/spins", authed(users.SpinHistoryHandler)).Methods(http.MethodGet)
}
