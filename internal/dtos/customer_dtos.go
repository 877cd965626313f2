package dtos

import (
	"strings"

	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
	Country string `json:"country"`
	Notes   string `json:"notes"`
}

func (in *CreateCustomerRequest) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.ZipCode = strings.TrimSpace(in.ZipCode)
	in.Country = strings.TrimSpace(in.Country)
	in.Notes = strings.TrimSpace(in.Notes)
}

// UpdateCustomerRequest carries the id in the body; nil fields are untouched.
type UpdateCustomerRequest struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

type CustomerListParams struct {
	Search string
	Page   int
	Limit  int
}

type CustomerView struct {
	*models.Customer
	Initials string `json:"initials"`
}

func NewCustomerView(c *models.Customer) CustomerView {
	return CustomerView{Customer: c, Initials: utils.GenerateInitials(c.Name)}
}

type CustomerListResponse struct {
	Data []CustomerView `json:"data"`
	Meta PageMeta       `json:"meta"`
}

type CustomerResponse struct {
	Data    CustomerView `json:"data"`
	Message string       `json:"message,omitempty"`
}
