package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrPromoNotFound       = errors.New("promo code not found")
	ErrPromoCodeTaken      = errors.New("promo code already taken")
	ErrPromoCodeInvalid    = errors.New("promo code is empty or malformed")
	ErrSelfReferral        = errors.New("organization cannot refer itself")
	ErrReferralNotFound    = errors.New("referral registration not found")
	ErrTransactionNotFound = errors.New("referral transaction not found")
	ErrInvalidTransition   = errors.New("invalid referral transaction status transition")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrSchemeTargetInvalid = errors.New("salary scheme must target exactly one of job title or user")
	ErrBonusRuleInvalid    = errors.New("bonus rule configuration is invalid")
	ErrInvalidMonth        = errors.New("invalid month, expected YYYY-MM")
	ErrUnsupportedAction   = errors.New("unsupported automation action")
	ErrActionConfigInvalid = errors.New("automation action config is invalid")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryExists      = errors.New("category already exists")
	ErrCategoryNameEmpty   = errors.New("category name is required")
	ErrRecordNotFound      = errors.New("payroll record not found")
)
