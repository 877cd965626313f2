package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

// SettingsService serves the business configuration: defaults from the
// environment, overridden key by key from the settings table. Nothing is
// cached, so every pricing call sees the latest rate card.
type SettingsService interface {
	GetBusinessConfig(ctx context.Context) (*models.BusinessConfig, error)
	UpdateBusinessConfig(ctx context.Context, updates map[string]json.RawMessage) (*models.BusinessConfig, error)
	CalculatePricing(ctx context.Context, rampHeight float64) (*Pricing, error)
	IsBusinessHours(ctx context.Context, now time.Time) (bool, error)
	SeedDefaults(ctx context.Context) error
}

type settingsService struct {
	repo     repositories.SettingsRepository
	defaults models.BusinessConfig
	audit    AuditService
}

func NewSettingsService(
	repo repositories.SettingsRepository,
	defaults models.BusinessConfig,
	audit AuditService,
) SettingsService {
	return &settingsService{repo: repo, defaults: defaults, audit: audit}
}

func (s *settingsService) GetBusinessConfig(ctx context.Context) (*models.BusinessConfig, error) {
	stored, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load settings", err)
	}

	cfg := s.defaults
	for key, raw := range stored {
		target := settingTarget(&cfg, key)
		if target == nil {
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			// keep the defaults for this key rather than fail every pricing call
			utils.Logger.WithError(err).WithField("key", key).Warn("Ignoring malformed setting")
		}
	}
	return &cfg, nil
}

func (s *settingsService) UpdateBusinessConfig(ctx context.Context, updates map[string]json.RawMessage) (*models.BusinessConfig, error) {
	if len(updates) == 0 {
		return nil, utils.NewBadRequestError(utils.ErrCodeValidation, "No settings provided", nil)
	}

	cfg, err := s.GetBusinessConfig(ctx)
	if err != nil {
		return nil, err
	}

	for key, raw := range updates {
		target := settingTarget(cfg, key)
		if target == nil {
			return nil, utils.NewBadRequestError(utils.ErrCodeValidation,
				fmt.Sprintf("Unknown setting %q", key), nil)
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, utils.NewBadRequestError(utils.ErrCodeValidation,
				fmt.Sprintf("Invalid value for setting %q", key), err)
		}
	}
	if err := validateBusinessConfig(cfg); err != nil {
		return nil, utils.NewBadRequestError(utils.ErrCodeValidation, err.Error(), err)
	}

	values := make(map[string]json.RawMessage, len(updates))
	for key := range updates {
		merged, err := json.Marshal(settingTarget(cfg, key))
		if err != nil {
			return nil, utils.NewInternalError("Failed to encode setting", err)
		}
		values[key] = merged
	}
	if err := s.repo.UpsertMany(ctx, values); err != nil {
		return nil, utils.NewInternalError("Failed to save settings", err)
	}

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	s.audit.Record(ctx, models.EntitySettings, "business_config", models.EventSettingsUpdated, map[string]any{
		"keys":   keys,
		"config": cfg,
	})
	return cfg, nil
}

func (s *settingsService) CalculatePricing(ctx context.Context, rampHeight float64) (*Pricing, error) {
	if rampHeight <= 0 {
		return nil, &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeValidation,
			Message:    "Ramp height must be greater than zero",
			Err:        utils.ErrInvalidRampHeight,
		}
	}
	cfg, err := s.GetBusinessConfig(ctx)
	if err != nil {
		return nil, err
	}
	p := CalculatePricing(rampHeight, cfg.Pricing)
	return &p, nil
}

func (s *settingsService) IsBusinessHours(ctx context.Context, now time.Time) (bool, error) {
	cfg, err := s.GetBusinessConfig(ctx)
	if err != nil {
		return false, err
	}
	loc, err := time.LoadLocation(cfg.BusinessHours.Timezone)
	if err != nil {
		return false, utils.NewInternalError("Invalid business timezone", err)
	}
	open, err := utils.IsBusinessHours(now, cfg.BusinessHours.Start, cfg.BusinessHours.End, loc)
	if err != nil {
		return false, utils.NewInternalError("Invalid business hours", err)
	}
	return open, nil
}

// SeedDefaults writes any missing keys; existing rows are left alone.
func (s *settingsService) SeedDefaults(ctx context.Context) error {
	cfg := s.defaults
	for _, key := range []string{models.SettingKeyPricing, models.SettingKeyBusinessHours, models.SettingKeyCompany} {
		raw, err := json.Marshal(settingTarget(&cfg, key))
		if err != nil {
			return err
		}
		if err := s.repo.InsertIfMissing(ctx, key, raw); err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
	}
	return nil
}

func settingTarget(cfg *models.BusinessConfig, key string) any {
	switch key {
	case models.SettingKeyPricing:
		return &cfg.Pricing
	case models.SettingKeyBusinessHours:
		return &cfg.BusinessHours
	case models.SettingKeyCompany:
		return &cfg.Company
	}
	return nil
}

func validateBusinessConfig(cfg *models.BusinessConfig) error {
	p := cfg.Pricing
	if p.BaseMonthly < 0 || p.PerInchMonthly < 0 || p.BaseInstallation < 0 || p.PerInchInstallation < 0 {
		return fmt.Errorf("pricing coefficients must not be negative")
	}
	start, err := utils.ParseClock(cfg.BusinessHours.Start)
	if err != nil {
		return fmt.Errorf("business_hours.start must be HH:MM")
	}
	end, err := utils.ParseClock(cfg.BusinessHours.End)
	if err != nil {
		return fmt.Errorf("business_hours.end must be HH:MM")
	}
	if end < start {
		return fmt.Errorf("business_hours.end must not be before business_hours.start")
	}
	if _, err := time.LoadLocation(cfg.BusinessHours.Timezone); err != nil {
		return fmt.Errorf("business_hours.timezone is not a known time zone")
	}
	return nil
}
