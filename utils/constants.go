package utils

import (
	"time"
)

// ContextKey is the type used for request-scoped context values.
type ContextKey string

// Request context keys set by the HTTP handlers and consumed by the
// business flows for audit logging and timeout management.
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// HTTP timing constants
const (
	// RequestTimeout is the default timeout applied to handler request contexts
	RequestTimeout = 30 * time.Second

	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Leasing constants
const (
	// EurCurrency is the only currency the catalog and pricing operate in
	EurCurrency = "EUR"

	// DefaultVATRate is the VAT rate applied when deriving TTC figures (20%)
	DefaultVATRate = 0.20

	// MaxOrderItems caps the number of distinct lines a single order may carry
	MaxOrderItems = 200

	// MaxDurationMonths is the longest lease the back office may configure
	MaxDurationMonths = 84
)
