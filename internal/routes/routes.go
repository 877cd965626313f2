package routes

const (
	// Health
	Health = "/api/health"

	// Public intake (website form)
	QuoteRequests = "/api/quote-requests"

	// Quotes
	Quotes      = "/api/quotes"
	QuoteByID   = "/api/quotes/{id}"
	QuoteStatus = "/api/quotes/{id}/status"
	QuoteSend   = "/api/quotes/{id}/send"

	// Customers
	Customers    = "/api/customers"
	CustomerByID = "/api/customers/{id}"

	// Business settings
	Settings        = "/api/settings"
	SettingsPricing = "/api/settings/pricing"

	// Generic forwarder
	Proxy = "/api/proxy"
)

// PublicPaths get the permissive CORS policy; every other /api route is
// limited to the configured origin.
var PublicPaths = []string{QuoteRequests, Health, Proxy}
