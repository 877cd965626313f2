package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/samedayramps/app.samedayramps.com/internal/dtos"
	"github.com/samedayramps/app.samedayramps.com/internal/services"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

type CustomersController struct {
	customerService *services.CustomerService
	validate        *validator.Validate
}

func NewCustomersController(s *services.CustomerService) *CustomersController {
	return &CustomersController{customerService: s, validate: newValidator()}
}

// GET /api/customers
func (c *CustomersController) ListCustomersHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "ListCustomersHandler")

	resp, err := c.customerService.ListCustomers(r.Context(), dtos.CustomerListParams{
		Search: r.URL.Query().Get("search"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	})
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/customers
func (c *CustomersController) CreateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreateCustomerHandler")
	logger.Info("Request received")

	var req dtos.CreateCustomerRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	resp, err := c.customerService.CreateCustomer(r.Context(), req)
	if err != nil {
		logger.WithError(err).Warn("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("customerID", resp.Data.ID).Info("Service call successful")
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// PUT /api/customers
func (c *CustomersController) UpdateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "UpdateCustomerHandler")
	logger.Info("Request received")

	var req dtos.UpdateCustomerRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	resp, err := c.customerService.UpdateCustomer(r.Context(), req)
	if err != nil {
		logger.WithError(err).Warn("Service call failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/customers/{id}
func (c *CustomersController) GetCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "customer")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	view, err := c.customerService.GetCustomer(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.CustomerResponse{Data: *view})
}
