package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/samedayramps/app.samedayramps.com/internal/dtos"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

type CustomerService struct {
	customerRepo repositories.CustomerRepository
	addressRepo  repositories.AddressRepository
	rentalRepo   repositories.RentalRepository
	paymentRepo  repositories.PaymentRepository
	audit        AuditService
	now          func() time.Time
}

func NewCustomerService(
	customerRepo repositories.CustomerRepository,
	addressRepo repositories.AddressRepository,
	rentalRepo repositories.RentalRepository,
	paymentRepo repositories.PaymentRepository,
	audit AuditService,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		addressRepo:  addressRepo,
		rentalRepo:   rentalRepo,
		paymentRepo:  paymentRepo,
		audit:        audit,
		now:          time.Now,
	}
}

func customerError(err error, fallback string) error {
	var appErr *utils.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, pgx.ErrNoRows):
		return utils.NewNotFoundError("Customer not found")
	case errors.Is(err, utils.ErrEmailExists):
		return utils.NewBadRequestError(utils.ErrCodeConflict, "A customer with this email already exists", err)
	case errors.Is(err, utils.ErrInvalidEmail):
		return utils.NewBadRequestError(utils.ErrCodeValidation, "Invalid email address", err)
	case errors.Is(err, utils.ErrInvalidPhone):
		return utils.NewBadRequestError(utils.ErrCodeValidation, "Phone number must have 10 digits", err)
	case errors.Is(err, utils.ErrInvalidState):
		return utils.NewBadRequestError(utils.ErrCodeValidation, "Invalid US state", err)
	}
	return utils.NewInternalError(fallback, err)
}

// ListCustomers returns a page of customers with their addresses and rentals
// (each with payments) attached.
func (s *CustomerService) ListCustomers(ctx context.Context, p dtos.CustomerListParams) (*dtos.CustomerListResponse, error) {
	page, limit := NormalizePage(p.Page, p.Limit)
	customers, total, err := s.customerRepo.List(ctx, repositories.CustomerFilter{
		Search: p.Search,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, customerError(err, "Failed to fetch customers")
	}
	if err := s.attachRelations(ctx, customers); err != nil {
		return nil, customerError(err, "Failed to fetch customer details")
	}

	views := make([]dtos.CustomerView, 0, len(customers))
	for _, c := range customers {
		views = append(views, dtos.NewCustomerView(c))
	}
	return &dtos.CustomerListResponse{
		Data: views,
		Meta: dtos.NewPageMeta(total, page, limit),
	}, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*dtos.CustomerView, error) {
	c, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, customerError(err, "Failed to fetch customer")
	}
	if c == nil {
		return nil, utils.NewNotFoundError("Customer not found")
	}
	if err := s.attachRelations(ctx, []*models.Customer{c}); err != nil {
		return nil, customerError(err, "Failed to fetch customer details")
	}
	v := dtos.NewCustomerView(c)
	return &v, nil
}

// attachRelations batch-loads addresses, rentals and payments.
func (s *CustomerService) attachRelations(ctx context.Context, customers []*models.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}

	addresses, err := s.addressRepo.ListByCustomerIDs(ctx, ids)
	if err != nil {
		return err
	}
	rentals, err := s.rentalRepo.ListByCustomerIDs(ctx, ids)
	if err != nil {
		return err
	}

	var rentalIDs []uuid.UUID
	for _, list := range rentals {
		for _, r := range list {
			rentalIDs = append(rentalIDs, r.ID)
		}
	}
	payments := map[uuid.UUID][]*models.Payment{}
	if len(rentalIDs) > 0 {
		if payments, err = s.paymentRepo.ListByRentalIDs(ctx, rentalIDs); err != nil {
			return err
		}
	}

	for _, c := range customers {
		c.Addresses = addresses[c.ID]
		c.Rentals = rentals[c.ID]
		for _, r := range c.Rentals {
			r.Payments = payments[r.ID]
		}
	}
	return nil
}

// CreateCustomer writes the customer and the first address together.
func (s *CustomerService) CreateCustomer(ctx context.Context, in dtos.CreateCustomerRequest) (*dtos.CustomerResponse, error) {
	if !utils.IsValidEmail(in.Email) {
		return nil, customerError(utils.ErrInvalidEmail, "")
	}
	if !utils.IsValidPhone(in.Phone) {
		return nil, customerError(utils.ErrInvalidPhone, "")
	}
	state, err := utils.NormalizeUSState(in.State)
	if err != nil {
		return nil, customerError(err, "")
	}

	now := s.now()
	c := &models.Customer{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     strings.ToLower(in.Email),
		Phone:     utils.FormatPhoneNumber(in.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Notes != "" {
		c.Notes = utils.Ptr(in.Notes)
	}
	a := &models.Address{
		ID:         uuid.New(),
		Street:     in.Address,
		City:       in.City,
		State:      state,
		ZipCode:    in.ZipCode,
		Country:    orDefault(in.Country, models.DefaultCountry),
		CustomerID: c.ID,
		CreatedAt:  now,
	}

	if err := s.customerRepo.CreateWithAddress(ctx, c, a); err != nil {
		return nil, customerError(err, "Failed to create customer")
	}
	c.Addresses = []*models.Address{a}

	s.audit.Record(ctx, models.EntityCustomer, c.ID.String(), models.EventCustomerCreated, map[string]any{
		"source": "admin",
	})
	utils.Logger.WithField("customer_id", c.ID).Info("Customer created")

	return &dtos.CustomerResponse{
		Data:    dtos.NewCustomerView(c),
		Message: "Customer created successfully",
	}, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, in dtos.UpdateCustomerRequest) (*dtos.CustomerResponse, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, utils.NewBadRequestError(utils.ErrCodeValidation, "Customer ID is required", nil)
	}
	id, err := uuid.Parse(strings.TrimSpace(in.ID))
	if err != nil {
		return nil, utils.NewBadRequestError(utils.ErrCodeValidation, "Invalid customer ID", err)
	}

	c, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, customerError(err, "Failed to fetch customer")
	}
	if c == nil {
		return nil, utils.NewNotFoundError("Customer not found")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, utils.NewBadRequestError(utils.ErrCodeValidation, "Name cannot be empty", nil)
		}
		c.Name = name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !utils.IsValidEmail(email) {
			return nil, customerError(utils.ErrInvalidEmail, "")
		}
		c.Email = email
	}
	if in.Phone != nil {
		if !utils.IsValidPhone(*in.Phone) {
			return nil, customerError(utils.ErrInvalidPhone, "")
		}
		c.Phone = utils.FormatPhoneNumber(strings.TrimSpace(*in.Phone))
	}
	if in.Notes != nil {
		c.Notes = in.Notes
	}

	if err := s.customerRepo.Update(ctx, c); err != nil {
		return nil, customerError(err, "Failed to update customer")
	}

	s.audit.Record(ctx, models.EntityCustomer, c.ID.String(), models.EventCustomerUpdated, in)

	if err := s.attachRelations(ctx, []*models.Customer{c}); err != nil {
		return nil, customerError(err, "Failed to fetch customer details")
	}
	return &dtos.CustomerResponse{
		Data:    dtos.NewCustomerView(c),
		Message: "Customer updated successfully",
	}, nil
}
