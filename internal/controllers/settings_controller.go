package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/samedayramps/app.samedayramps.com/internal/dtos"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/services"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

type SettingsController struct {
	settings services.SettingsService
}

func NewSettingsController(s services.SettingsService) *SettingsController {
	return &SettingsController{settings: s}
}

// GET /api/settings
func (c *SettingsController) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	cfg, err := c.settings.GetBusinessConfig(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	open, err := c.settings.IsBusinessHours(r.Context(), time.Now())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, newSettingsResponse(cfg, open))
}

// PUT /api/settings
func (c *SettingsController) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "UpdateSettingsHandler")
	logger.Info("Request received")

	var req dtos.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}

	cfg, err := c.settings.UpdateBusinessConfig(r.Context(), req)
	if err != nil {
		logger.WithError(err).Warn("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	open, err := c.settings.IsBusinessHours(r.Context(), time.Now())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, newSettingsResponse(cfg, open))
}

// GET /api/settings/pricing?rampHeight=
func (c *SettingsController) PricingPreviewHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("rampHeight")
	if raw == "" {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "rampHeight is required", nil)
		return
	}
	height, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "rampHeight must be a number", nil, err)
		return
	}

	p, err := c.settings.CalculatePricing(r.Context(), height)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.PricingPreviewResponse{
		RampHeight:            height,
		MonthlyRate:           p.MonthlyRate,
		InstallationFee:       p.InstallationFee,
		TotalFirstMonth:       p.TotalFirstMonth,
		EstimatedMonthlyTotal: p.EstimatedMonthlyTotal,
		Formatted: dtos.FormattedPricing{
			MonthlyRate:     utils.FormatCurrency(p.MonthlyRate),
			InstallationFee: utils.FormatCurrency(p.InstallationFee),
			TotalFirstMonth: utils.FormatCurrency(p.TotalFirstMonth),
		},
	})
}

func newSettingsResponse(cfg *models.BusinessConfig, open bool) dtos.SettingsResponse {
	return dtos.SettingsResponse{
		Pricing: cfg.Pricing,
		BusinessHours: dtos.BusinessHoursView{
			BusinessHours: cfg.BusinessHours,
			Formatted:     formatHours(cfg.BusinessHours),
		},
		Company:         cfg.Company,
		IsBusinessHours: open,
	}
}

// formatHours renders "08:00"-"18:00" as "8:00 AM - 6:00 PM".
func formatHours(h models.BusinessHours) string {
	start, err1 := time.Parse("15:04", h.Start)
	end, err2 := time.Parse("15:04", h.End)
	if err1 != nil || err2 != nil {
		return fmt.Sprintf("%s - %s", h.Start, h.End)
	}
	return fmt.Sprintf("%s - %s", start.Format("3:04 PM"), end.Format("3:04 PM"))
}
