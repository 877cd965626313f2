package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/samedayramps/app.samedayramps.com/internal/dtos"
	"github.com/samedayramps/app.samedayramps.com/internal/services"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

type QuotesController struct {
	quoteService *services.QuoteService
	validate     *validator.Validate
}

func NewQuotesController(s *services.QuoteService) *QuotesController {
	return &QuotesController{quoteService: s, validate: newValidator()}
}

// GET /api/quotes
func (c *QuotesController) ListQuotesHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "ListQuotesHandler")

	q := r.URL.Query()
	resp, err := c.quoteService.ListQuotes(r.Context(), dtos.QuoteListParams{
		Search:     q.Get("search"),
		Status:     q.Get("status"),
		Timeline:   q.Get("timeline"),
		CustomerID: q.Get("customerId"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	})
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/quotes
func (c *QuotesController) CreateQuoteHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreateQuoteHandler")
	logger.Info("Request received")

	var req dtos.CreateQuoteRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	resp, err := c.quoteService.CreateQuote(r.Context(), req)
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("quoteID", resp.Data.ID).Info("Service call successful")
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// GET /api/quotes/{id}
func (c *QuotesController) GetQuoteHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "GetQuoteHandler")

	id, err := pathUUID(r, "id", "quote")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	quote, err := c.quoteService.GetQuote(r.Context(), id)
	if err != nil {
		logger.WithError(err).WithField("quoteID", id).Warn("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, quote)
}

// PUT /api/quotes/{id}
func (c *QuotesController) UpdateQuoteHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "UpdateQuoteHandler")
	logger.Info("Request received")

	id, err := pathUUID(r, "id", "quote")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.UpdateQuoteRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	quote, err := c.quoteService.UpdateQuote(r.Context(), id, req)
	if err != nil {
		logger.WithError(err).WithField("quoteID", id).Error("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("quoteID", id).Info("Service call successful")
	utils.RespondWithJSON(w, http.StatusOK, quote)
}

// DELETE /api/quotes/{id}
func (c *QuotesController) DeleteQuoteHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "DeleteQuoteHandler")

	id, err := pathUUID(r, "id", "quote")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if err := c.quoteService.DeleteQuote(r.Context(), id); err != nil {
		logger.WithError(err).WithField("quoteID", id).Warn("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Quote deleted successfully"})
}

// PUT /api/quotes/{id}/status
func (c *QuotesController) UpdateQuoteStatusHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "UpdateQuoteStatusHandler")
	logger.Info("Request received")

	id, err := pathUUID(r, "id", "quote")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.UpdateQuoteStatusRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	resp, err := c.quoteService.UpdateQuoteStatus(r.Context(), id, req.Status)
	if err != nil {
		logger.WithError(err).WithField("quoteID", id).Warn("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("quoteID", id).WithField("status", resp.Quote.Status).Info("Service call successful")
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/quotes/{id}/send
func (c *QuotesController) SendQuoteHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "SendQuoteHandler")
	logger.Info("Request received")

	id, err := pathUUID(r, "id", "quote")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	resp, err := c.quoteService.SendQuote(r.Context(), id)
	if err != nil {
		logger.WithError(err).WithField("quoteID", id).Warn("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
