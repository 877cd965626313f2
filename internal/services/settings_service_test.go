package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories/repotest"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

func newSettingsFixture() (*repotest.Store, SettingsService) {
	store := repotest.NewStore()
	return store, NewSettingsService(store.SettingsRepo(), testBusinessConfig, NewAuditService(store.EventRepo()))
}

func TestGetBusinessConfigMergesStoredKeysOverDefaults(t *testing.T) {
	store, svc := newSettingsFixture()
	store.Settings[models.SettingKeyPricing] = json.RawMessage(`{"base_monthly":150}`)
	store.Settings[models.SettingKeyCompany] = json.RawMessage(`not json`)

	cfg, err := svc.GetBusinessConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 150.0, cfg.Pricing.BaseMonthly)
	assert.Equal(t, 6.0, cfg.Pricing.PerInchMonthly, "unspecified fields keep defaults")
	assert.Equal(t, testBusinessConfig.Company, cfg.Company, "malformed key falls back to defaults")
}

func TestSettingsCalculatePricingUsesStoredRates(t *testing.T) {
	store, svc := newSettingsFixture()
	p, err := svc.CalculatePricing(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 269.0, p.MonthlyRate)
	assert.Equal(t, 392.0, p.TotalFirstMonth)

	store.Settings[models.SettingKeyPricing] = json.RawMessage(
		`{"base_monthly":100,"per_inch_monthly":5,"base_installation":50,"per_inch_installation":1}`)
	p, err = svc.CalculatePricing(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 220.0, p.MonthlyRate)
	assert.Equal(t, 74.0, p.InstallationFee)

	_, err = svc.CalculatePricing(context.Background(), -3)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrInvalidRampHeight)
}

func TestUpdateBusinessConfig(t *testing.T) {
	store, svc := newSettingsFixture()

	cfg, err := svc.UpdateBusinessConfig(context.Background(), map[string]json.RawMessage{
		models.SettingKeyBusinessHours: json.RawMessage(`{"start":"07:30"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "07:30", cfg.BusinessHours.Start)
	assert.Equal(t, "18:00", cfg.BusinessHours.End)

	var stored models.BusinessHours
	require.NoError(t, json.Unmarshal(store.Settings[models.SettingKeyBusinessHours], &stored))
	assert.Equal(t, "07:30", stored.Start)
	assert.Equal(t, "America/Chicago", stored.Timezone)
	assert.Len(t, store.EventsOfType(models.EventSettingsUpdated), 1)
}

func TestUpdateBusinessConfigWritesAllKeysOrNone(t *testing.T) {
	store, svc := newSettingsFixture()
	store.FailSettingKey = models.SettingKeyCompany

	_, err := svc.UpdateBusinessConfig(context.Background(), map[string]json.RawMessage{
		models.SettingKeyPricing: json.RawMessage(`{"base_monthly":150}`),
		models.SettingKeyCompany: json.RawMessage(`{"phone":"(972) 555-0100"}`),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, appStatus(t, err))
	assert.Empty(t, store.Settings, "pricing must not be saved when company fails")
	assert.Empty(t, store.EventsOfType(models.EventSettingsUpdated))

	store.FailSettingKey = ""
	cfg, err := svc.UpdateBusinessConfig(context.Background(), map[string]json.RawMessage{
		models.SettingKeyPricing: json.RawMessage(`{"base_monthly":150}`),
		models.SettingKeyCompany: json.RawMessage(`{"phone":"(972) 555-0100"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, cfg.Pricing.BaseMonthly)
	assert.Len(t, store.Settings, 2)
	assert.Len(t, store.EventsOfType(models.EventSettingsUpdated), 1)
}

func TestUpdateBusinessConfigRejectsBadInput(t *testing.T) {
	store, svc := newSettingsFixture()
	for name, updates := range map[string]map[string]json.RawMessage{
		"unknown key":    {"theme": json.RawMessage(`{}`)},
		"bad json":       {models.SettingKeyPricing: json.RawMessage(`[1,2]`)},
		"negative price": {models.SettingKeyPricing: json.RawMessage(`{"base_monthly":-1}`)},
		"bad clock":      {models.SettingKeyBusinessHours: json.RawMessage(`{"start":"8am"}`)},
		"end before":     {models.SettingKeyBusinessHours: json.RawMessage(`{"start":"17:00","end":"09:00"}`)},
		"bad zone":       {models.SettingKeyBusinessHours: json.RawMessage(`{"timezone":"Mars/Olympus"}`)},
		"empty":          {},
	} {
		_, err := svc.UpdateBusinessConfig(context.Background(), updates)
		require.Error(t, err, name)
		assert.Equal(t, http.StatusBadRequest, appStatus(t, err), name)
	}
	assert.Empty(t, store.Settings)
}

func TestIsBusinessHours(t *testing.T) {
	_, svc := newSettingsFixture()

	open, err := svc.IsBusinessHours(context.Background(), time.Date(2025, 3, 11, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, open)

	open, err = svc.IsBusinessHours(context.Background(), time.Date(2025, 3, 11, 3, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, open)
}

func TestSeedDefaultsKeepsExistingRows(t *testing.T) {
	store, svc := newSettingsFixture()
	store.Settings[models.SettingKeyPricing] = json.RawMessage(`{"base_monthly":99}`)

	require.NoError(t, svc.SeedDefaults(context.Background()))
	assert.JSONEq(t, `{"base_monthly":99}`, string(store.Settings[models.SettingKeyPricing]))
	assert.Contains(t, store.Settings, models.SettingKeyBusinessHours)
	assert.Contains(t, store.Settings, models.SettingKeyCompany)
}
