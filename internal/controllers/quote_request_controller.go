package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/samedayramps/app.samedayramps.com/internal/dtos"
	"github.com/samedayramps/app.samedayramps.com/internal/services"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

// QuoteRequestController serves the public website form.
type QuoteRequestController struct {
	quoteService *services.QuoteService
	validate     *validator.Validate
}

func NewQuoteRequestController(s *services.QuoteService) *QuoteRequestController {
	return &QuoteRequestController{quoteService: s, validate: newValidator()}
}

// POST /api/quote-requests
func (c *QuoteRequestController) CreateQuoteRequestHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreateQuoteRequestHandler")
	logger.Info("Request received")

	var req dtos.QuoteRequestInput
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	resp, err := c.quoteService.SubmitQuoteRequest(r.Context(), req)
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		utils.HandleAppError(w, err)
		return
	}

	status := http.StatusCreated
	if resp.Quote.NeedsAssessment {
		status = http.StatusAccepted
	}
	logger.WithField("quoteID", resp.Quote.ID).Info("Service call successful")
	utils.RespondWithJSON(w, status, resp)
}

// GET /api/quote-requests?customerId=|email=
func (c *QuoteRequestController) ListQuoteRequestsHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "ListQuoteRequestsHandler")

	q := r.URL.Query()
	quotes, err := c.quoteService.ListQuoteRequests(r.Context(), q.Get("customerId"), q.Get("email"))
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.QuoteRequestsListResponse{Quotes: quotes})
}
