package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "time/tzdata"

	"github.com/samedayramps/app.samedayramps.com/internal/controllers"
	"github.com/samedayramps/app.samedayramps.com/internal/dtos"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories/repotest"
	"github.com/samedayramps/app.samedayramps.com/internal/services"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

type stubEmail struct {
	err        error
	quotes     int
	assessment int
}

func (s *stubEmail) SendQuoteEmail(ctx context.Context, q *models.Quote, company models.CompanyInfo) error {
	s.quotes++
	return s.err
}

func (s *stubEmail) SendAssessmentNeededEmail(ctx context.Context, q *models.Quote) error {
	s.assessment++
	return s.err
}

type noopSMS struct{}

func (noopSMS) NotifyNewQuoteRequest(ctx context.Context, q *models.Quote) error { return nil }

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

type stubProxy struct{ got services.ProxyRequest }

func (p *stubProxy) Forward(ctx context.Context, baseURL string, req services.ProxyRequest) (*services.ProxyResponse, error) {
	p.got = req
	return &services.ProxyResponse{StatusCode: http.StatusTeapot, Body: []byte(`{"ok":true}`)}, nil
}

type apiFixture struct {
	store  *repotest.Store
	email  *stubEmail
	proxy  *stubProxy
	router *mux.Router
}

func newAPIFixture(t *testing.T, dbErr error) *apiFixture {
	t.Helper()
	f := &apiFixture{store: repotest.NewStore(), email: &stubEmail{}, proxy: &stubProxy{}}

	audit := services.NewAuditService(f.store.EventRepo())
	settings := services.NewSettingsService(f.store.SettingsRepo(), models.BusinessConfig{
		Pricing: models.PricingSettings{BaseMonthly: 125, PerInchMonthly: 6, BaseInstallation: 75, PerInchInstallation: 2},
		BusinessHours: models.BusinessHours{Start: "08:00", End: "18:00", Timezone: "America/Chicago"},
		Company:       models.CompanyInfo{Name: "Same Day Ramps"},
	}, audit)
	quotes := services.NewQuoteService(
		f.store.QuoteRepo(), f.store.AgreementRepo(), f.store.RentalRepo(), f.store.PaymentRepo(),
		settings, f.email, noopSMS{}, audit,
	)
	customers := services.NewCustomerService(
		f.store.CustomerRepo(), f.store.AddressRepo(), f.store.RentalRepo(), f.store.PaymentRepo(), audit,
	)

	f.router = NewRouter(Controllers{
		Health: controllers.NewHealthController(stubPinger{err: dbErr}, dtos.CORSInfo{
			Enabled: true, AllowedOrigins: []string{"https://www.samedayramps.com"},
		}),
		QuoteRequests: controllers.NewQuoteRequestController(quotes),
		Quotes:        controllers.NewQuotesController(quotes),
		Customers:     controllers.NewCustomersController(customers),
		Settings:      controllers.NewSettingsController(settings),
		Proxy:         controllers.NewProxyController(f.proxy, "http://internal:8080"),
	})
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

var intakeBody = map[string]any{
	"customerName":   "Margaret Johnson",
	"customerEmail":  "margaret@example.com",
	"customerPhone":  "2145550147",
	"serviceAddress": "4821 Mockingbird Ln",
	"rampHeight":     "24",
	"timeline":       "within-3-days",
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t, nil)
	rec := f.do(t, http.MethodGet, Health, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[dtos.HealthCheckResponse](t, rec)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "connected", body.Database)
	assert.Equal(t, "1.0.0", body.Version)

	f = newAPIFixture(t, errors.New("connection refused"))
	rec = f.do(t, http.MethodGet, Health, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "disconnected", decode[dtos.HealthCheckResponse](t, rec).Database)
}

func TestQuoteRequestPricedIsSent(t *testing.T) {
	f := newAPIFixture(t, nil)
	rec := f.do(t, http.MethodPost, QuoteRequests, intakeBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[dtos.QuoteRequestResponse](t, rec)
	assert.True(t, body.Success)
	assert.True(t, body.EmailSent)
	assert.Equal(t, models.QuoteStatusSent, body.Quote.Status)
	require.NotNil(t, body.Quote.Pricing)
	assert.Equal(t, 269.0, body.Quote.Pricing.MonthlyRate)
	assert.Equal(t, 123.0, body.Quote.Pricing.InstallationFee)
	assert.Equal(t, 392.0, body.Quote.Pricing.Total)
	assert.Equal(t, 1, f.email.quotes)
}

func TestQuoteRequestWithoutHeightNeedsAssessment(t *testing.T) {
	f := newAPIFixture(t, nil)
	in := map[string]any{}
	for k, v := range intakeBody {
		in[k] = v
	}
	delete(in, "rampHeight")

	rec := f.do(t, http.MethodPost, QuoteRequests, in)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	body := decode[dtos.QuoteRequestResponse](t, rec)
	assert.True(t, body.Quote.NeedsAssessment)
	assert.Nil(t, body.Quote.Pricing)
	assert.Equal(t, models.QuoteStatusNeedsAssessment, body.Quote.Status)
	assert.Equal(t, 1, f.email.assessment)
}

func TestQuoteRequestValidation(t *testing.T) {
	f := newAPIFixture(t, nil)
	rec := f.do(t, http.MethodPost, QuoteRequests, map[string]any{"customerName": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[utils.ErrorResponse](t, rec)
	assert.Equal(t, utils.ErrCodeValidation, body.Code)
	assert.Contains(t, body.Message, "is required")

	req := httptest.NewRequest(http.MethodPost, QuoteRequests, bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.ErrCodeInvalidPayload, decode[utils.ErrorResponse](t, rec).Code)
}

func TestListQuoteRequests(t *testing.T) {
	f := newAPIFixture(t, nil)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, QuoteRequests, intakeBody).Code)

	rec := f.do(t, http.MethodGet, QuoteRequests+"?email=margaret@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[dtos.QuoteRequestsListResponse](t, rec)
	require.Len(t, body.Quotes, 1)
	require.NotNil(t, body.Quotes[0].Customer)
	assert.Equal(t, "margaret@example.com", body.Quotes[0].Customer.Email)

	rec = f.do(t, http.MethodGet, QuoteRequests+"?customerId=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteAdminLifecycle(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodPost, Quotes, map[string]any{
		"customerName":   "Robert Alvarez",
		"customerEmail":  "robert@example.com",
		"customerPhone":  "9725550182",
		"serviceAddress": "1307 Elm Creek Dr",
		"timeline":       "flexible",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[struct {
		Data struct {
			ID          string  `json:"id"`
			Status      string  `json:"status"`
			MonthlyRate float64 `json:"monthlyRate"`
		} `json:"data"`
		Message string `json:"message"`
	}](t, rec)
	assert.Equal(t, "Quote created successfully", created.Message)
	assert.Equal(t, "PENDING", created.Data.Status)
	assert.Equal(t, 245.0, created.Data.MonthlyRate)
	path := "/api/quotes/" + created.Data.ID

	rec = f.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPut, path, map[string]any{"rampHeight": 30, "notes": "steps at back door"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Quote](t, rec)
	require.NotNil(t, updated.MonthlyRate)
	assert.Equal(t, 305.0, *updated.MonthlyRate)
	assert.Equal(t, "2-3 hours", updated.EstimatedDuration)

	rec = f.do(t, http.MethodPost, path+"/send", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sent := decode[dtos.SendQuoteResponse](t, rec)
	assert.True(t, sent.EmailSent)
	assert.Equal(t, models.QuoteStatusSent, sent.Quote.Status)

	rec = f.do(t, http.MethodPut, path+"/status", map[string]any{"status": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Status is required", decode[utils.ErrorResponse](t, rec).Message)

	rec = f.do(t, http.MethodPut, path+"/status", map[string]any{"status": "BOGUS"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, path+"/status", map[string]any{"status": "ACCEPTED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	status := decode[dtos.QuoteStatusResponse](t, rec)
	assert.Equal(t, "Quote status updated to ACCEPTED", status.Message)
	require.NotNil(t, status.Quote.Agreement)
	assert.Equal(t, models.AgreementStatusDraft, status.Quote.Agreement.Status)

	rec = f.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete quote with associated agreement", decode[utils.ErrorResponse](t, rec).Message)

	rec = f.do(t, http.MethodGet, Quotes+"?status=ACCEPTED", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Data []json.RawMessage `json:"data"`
		Meta dtos.PageMeta     `json:"meta"`
	}](t, rec)
	assert.Len(t, list.Data, 1)
	assert.EqualValues(t, 1, list.Meta.Total)
}

func TestQuoteNotFoundAndBadID(t *testing.T) {
	f := newAPIFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/api/quotes/6f1c2d3e-4a5b-4c6d-8e9f-0a1b2c3d4e5f", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Quote not found", decode[utils.ErrorResponse](t, rec).Message)

	rec = f.do(t, http.MethodDelete, "/api/quotes/6f1c2d3e-4a5b-4c6d-8e9f-0a1b2c3d4e5f", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/quotes/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomersEndpoints(t *testing.T) {
	f := newAPIFixture(t, nil)
	in := map[string]any{
		"name": "Dorothy Nguyen", "email": "dorothy@example.com", "phone": "8175550199",
		"address": "220 Prairie View Ct", "city": "Fort Worth", "state": "Texas", "zipCode": "76102",
	}
	rec := f.do(t, http.MethodPost, Customers, in)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[struct {
		Data struct {
			ID       string `json:"id"`
			Initials string `json:"initials"`
		} `json:"data"`
	}](t, rec)
	assert.Equal(t, "DN", created.Data.Initials)

	rec = f.do(t, http.MethodPost, Customers, in)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.ErrCodeConflict, decode[utils.ErrorResponse](t, rec).Code)

	rec = f.do(t, http.MethodPut, Customers, map[string]any{"name": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Customer ID is required", decode[utils.ErrorResponse](t, rec).Message)

	rec = f.do(t, http.MethodPut, Customers, map[string]any{"id": created.Data.ID, "notes": "gate code 1234"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/customers/"+created.Data.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, Customers+"?search=dorothy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[dtos.CustomerListResponse](t, rec).Meta.Total)
}

func TestSettingsEndpoints(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodGet, Settings, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "8:00 AM - 6:00 PM", decode[dtos.SettingsResponse](t, rec).BusinessHours.Formatted)

	rec = f.do(t, http.MethodPut, Settings, map[string]any{"pricing": map[string]any{"base_monthly": 150}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 150.0, decode[dtos.SettingsResponse](t, rec).Pricing.BaseMonthly)

	rec = f.do(t, http.MethodGet, SettingsPricing+"?rampHeight=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	preview := decode[dtos.PricingPreviewResponse](t, rec)
	assert.Equal(t, 210.0, preview.MonthlyRate)
	assert.Equal(t, "$305", preview.Formatted.TotalFirstMonth)

	rec = f.do(t, http.MethodGet, SettingsPricing, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "rampHeight is required", decode[utils.ErrorResponse](t, rec).Message)
}

func TestProxyEndpoint(t *testing.T) {
	f := newAPIFixture(t, nil)
	rec := f.do(t, http.MethodGet, Proxy, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing target path parameter", decode[utils.ErrorResponse](t, rec).Message)

	req := httptest.NewRequest(http.MethodGet, Proxy+"?path=/quotes", nil)
	req.Header.Set("Authorization", "Bearer t0k3n")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "Bearer t0k3n", f.proxy.got.Authorization)
}

func TestUnknownRoute(t *testing.T) {
	f := newAPIFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodPatch, Customers, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
