package constants

import (
	"time"
)

// Quote expiry windows
const (
	PublicQuoteExpiry = 30 * 24 * time.Hour // website intake
	AdminQuoteExpiry  = 7 * 24 * time.Hour  // staff-created quotes
)

// Quote defaults
const (
	DefaultAdminRampHeight         = 20.0
	DefaultAdminEstimatedDuration  = "6-12 months"
	LongInstallEstimatedDuration   = "2-3 hours"
	ShortInstallEstimatedDuration  = "1-2 hours"
	LongInstallHeightThresholdInch = 24.0
	DefaultIntakeSource            = "website"
	DefaultAdminSource             = "admin"
	DefaultPriority                = "normal"
	QuoteReferenceLength           = 6 // trailing id characters shown to customers
)

// Listing
const (
	DefaultPageSize     = 10
	MaxPageSize         = 100
	RecentQuoteRequests = 10
)

// Background jobs
const (
	QuoteExpirySweepSpec    = "@every 15m"
	QuoteExpirySweepTimeout = 2 * time.Minute
)

const (
	ServerName    = "Same Day Ramps Admin API"
	ServerVersion = "1.0.0"
)
