package routes

import (
	"net/http"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/controllers/managers"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/middleware"

	"github.com/gorilla/mux"
)

// ManagersRoutes registers the tenant staff surface: login, customer search
// and direct grants, submission review, voucher counter ops and campaign
// configuration.
func ManagersRoutes(api *mux.Router) {
	loginLimiter := middleware.NewIPRateLimiter(30, 5*time.Minute)
	managerLimiter := middleware.NewUserRateLimiter(60)

	api.Handle("/manager/login", loginLimiter.Middleware(http.HandlerFunc(managers.LoginHandler))).Methods(http.MethodPost)

	authed := func(h http.HandlerFunc) http.Handler {
		return managerLimiter.Middleware(middleware.ManagerAuthMiddleware(h))
	}

	api.Handle("/manager/logout", authed(managers.LogoutHandler)).Methods(http.MethodPost)

	// Customer search and direct grants
	api.Handle("/manager/customers/search", authed(managers.SearchCustomersHandler)).Methods(http.MethodGet)
	api.Handle("/manager/customers/{id}/grant", authed(managers.DirectGrantHandler)).Methods(http.MethodPost)

	// Task submission review
	api.Handle("/manager/submissions", authed(managers.SubmissionListHandler)).Methods(http.MethodGet)
	api.Handle("/manager/submissions/{id}/approve", authed(managers.ApproveSubmissionHandler)).Methods(http.MethodPost)
	api.Handle("/manager/submissions/{id}/reject", authed(managers.RejectSubmissionHandler)).Methods(http.MethodPost)

	// Voucher counter operations
	api.Handle("/manager/vouchers/{code}", authed(managers.ValidateVoucherHandler)).Methods(http.MethodGet)
	api.Handle("/manager/vouchers/{code}/redeem", authed(managers.RedeemVoucherHandler)).Methods(http.MethodPost)

	// Campaign and prize configuration
	api.Handle("/manager/campaigns", authed(managers.CampaignListHandler)).Methods(http.MethodGet)
	api.Handle("/manager/campaigns", authed(managers.CreateCampaignHandler)).Methods(http.MethodPost)
	api.Handle("/manager/campaigns/{id}", authed(managers.UpdateCampaignHandler)).Methods(http.MethodPut)
	api.Handle("/manager/campaigns/{id}/prizes", authed(managers.PrizeListHandler)).Methods(http.MethodGet)
	api.Handle("/manager/campaigns/{id}/prizes", authed(managers.CreatePrizeHandler)).Methods(http.MethodPost)
	api.Handle("/manager/prizes/{id}", authed(managers.UpdatePrizeHandler)).Methods(http.MethodPut)
	api.Handle("/manager/prizes/{id}", authed(managers.DeletePrizeHandler)).Methods(http.MethodDelete)

	// Activity log
	api.Handle("/manager/spins", authed(managers.SpinLogHandler)).Methods(http.MethodGet)
}
