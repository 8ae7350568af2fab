package services

import "errors"

// Service errors are sentinels so handlers can branch without string matching.
// NotFound-class errors map to 404 at the boundary, eligibility errors to 403,
// limit errors to 429.
var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrManagerNotFound  = errors.New("manager not found")
	ErrManagerInactive  = errors.New("manager is inactive")
	ErrVoucherNotFound  = errors.New("voucher not found")
	ErrTenantMismatch   = errors.New("customer belongs to a different tenant")
	ErrNotEligible      = errors.New("customer must spin at least once before receiving bonus spins")
	ErrCampaignInactive = errors.New("campaign is not live")
	ErrNoSpinsAvailable = errors.New("no spins available")
	ErrLimitReached     = errors.New("direct grant limit reached for this customer")
	ErrVoucherExpired   = errors.New("voucher has expired")
	ErrVoucherExhausted = errors.New("voucher redemption limit reached")
)
