package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/samedayramps/app.samedayramps.com/internal/controllers"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

// Controllers groups every handler set mounted by NewRouter.
type Controllers struct {
	Health        *controllers.HealthController
	QuoteRequests *controllers.QuoteRequestController
	Quotes        *controllers.QuotesController
	Customers     *controllers.CustomersController
	Settings      *controllers.SettingsController
	Proxy         *controllers.ProxyController
}

// NewRouter registers the API routes. CORS and security headers wrap the
// returned router so preflight requests never reach mux.
func NewRouter(c Controllers, mw ...mux.MiddlewareFunc) *mux.Router {
	router := mux.NewRouter()
	router.Use(mw...)

	router.HandleFunc(Health, c.Health.HealthCheckHandler).Methods(http.MethodGet)

	router.HandleFunc(QuoteRequests, c.QuoteRequests.CreateQuoteRequestHandler).Methods(http.MethodPost)
	router.HandleFunc(QuoteRequests, c.QuoteRequests.ListQuoteRequestsHandler).Methods(http.MethodGet)

	router.HandleFunc(Quotes, c.Quotes.ListQuotesHandler).Methods(http.MethodGet)
	router.HandleFunc(Quotes, c.Quotes.CreateQuoteHandler).Methods(http.MethodPost)
	router.HandleFunc(QuoteStatus, c.Quotes.UpdateQuoteStatusHandler).Methods(http.MethodPut, http.MethodPatch)
	router.HandleFunc(QuoteSend, c.Quotes.SendQuoteHandler).Methods(http.MethodPost)
	router.HandleFunc(QuoteByID, c.Quotes.GetQuoteHandler).Methods(http.MethodGet)
	router.HandleFunc(QuoteByID, c.Quotes.UpdateQuoteHandler).Methods(http.MethodPut, http.MethodPatch)
	router.HandleFunc(QuoteByID, c.Quotes.DeleteQuoteHandler).Methods(http.MethodDelete)

	router.HandleFunc(Customers, c.Customers.ListCustomersHandler).Methods(http.MethodGet)
	router.HandleFunc(Customers, c.Customers.CreateCustomerHandler).Methods(http.MethodPost)
	router.HandleFunc(Customers, c.Customers.UpdateCustomerHandler).Methods(http.MethodPut)
	router.HandleFunc(CustomerByID, c.Customers.GetCustomerHandler).Methods(http.MethodGet)

	router.HandleFunc(SettingsPricing, c.Settings.PricingPreviewHandler).Methods(http.MethodGet)
	router.HandleFunc(Settings, c.Settings.GetSettingsHandler).Methods(http.MethodGet)
	router.HandleFunc(Settings, c.Settings.UpdateSettingsHandler).Methods(http.MethodPut)

	router.HandleFunc(Proxy, c.Proxy.ProxyHandler).Methods(
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
	)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Route not found", nil)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondErrorWithCode(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})
	return router
}
