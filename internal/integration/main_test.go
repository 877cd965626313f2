//go:build integration

package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/samedayramps/app.samedayramps.com/internal/app"
	"github.com/samedayramps/app.samedayramps.com/internal/config"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories"
	"github.com/samedayramps/app.samedayramps.com/internal/services"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

// harness wires the real repositories over DATABASE_URL.
type harness struct {
	Ctx context.Context
	DB  *pgxpool.Pool

	CustomerRepo  repositories.CustomerRepository
	AddressRepo   repositories.AddressRepository
	QuoteRepo     repositories.QuoteRepository
	AgreementRepo repositories.AgreementRepository
	RentalRepo    repositories.RentalRepository
	PaymentRepo   repositories.PaymentRepository
	SettingsRepo  repositories.SettingsRepository
	EventRepo     repositories.EventRepository

	Settings  services.SettingsService
	Quotes    *services.QuoteService
	Customers *services.CustomerService
}

var h *harness

type nopEmail struct{}

func (nopEmail) SendQuoteEmail(ctx context.Context, q *models.Quote, company models.CompanyInfo) error {
	return nil
}

func (nopEmail) SendAssessmentNeededEmail(ctx context.Context, q *models.Quote) error { return nil }

type nopSMS struct{}

func (nopSMS) NotifyNewQuoteRequest(ctx context.Context, q *models.Quote) error { return nil }

func TestMain(m *testing.M) {
	utils.InitLogger(config.DefaultAppName)

	cfg, err := config.FromEnv(os.Getenv, config.NewEnvFlags(os.Getenv))
	if err != nil {
		log.Fatalf("integration config: %v", err)
	}
	if err := app.Migrate(cfg.DBUrl); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}

	db := application.DB
	h = &harness{
		Ctx:           context.Background(),
		DB:            db,
		CustomerRepo:  repositories.NewCustomerRepository(db),
		AddressRepo:   repositories.NewAddressRepository(db),
		QuoteRepo:     repositories.NewQuoteRepository(db),
		AgreementRepo: repositories.NewAgreementRepository(db),
		RentalRepo:    repositories.NewRentalRepository(db),
		PaymentRepo:   repositories.NewPaymentRepository(db),
		SettingsRepo:  repositories.NewSettingsRepository(db),
		EventRepo:     repositories.NewEventRepository(db),
	}
	audit := services.NewAuditService(h.EventRepo)
	h.Settings = services.NewSettingsService(h.SettingsRepo, cfg.DefaultBusinessConfig, audit)
	h.Quotes = services.NewQuoteService(
		h.QuoteRepo, h.AgreementRepo, h.RentalRepo, h.PaymentRepo,
		h.Settings, nopEmail{}, nopSMS{}, audit,
	)
	h.Customers = services.NewCustomerService(h.CustomerRepo, h.AddressRepo, h.RentalRepo, h.PaymentRepo, audit)

	log.Printf("integration tests: DB connected (%s)", utils.RedactDBURL(cfg.DBUrl))
	time.Sleep(100 * time.Millisecond)

	code := m.Run()
	application.Close()
	os.Exit(code)
}
