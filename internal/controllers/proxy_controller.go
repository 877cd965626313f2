package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/samedayramps/app.samedayramps.com/internal/services"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

const maxProxyBody = 1 << 20

type ProxyController struct {
	proxy   services.ProxyService
	baseURL string // empty means the host the request came in on
}

func NewProxyController(proxy services.ProxyService, baseURL string) *ProxyController {
	return &ProxyController{proxy: proxy, baseURL: baseURL}
}

// ProxyHandler => ANY /api/proxy?path=/quotes
func (c *ProxyController) ProxyHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "ProxyHandler")

	path := r.URL.Query().Get("path")
	if path == "" {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Missing target path parameter", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxProxyBody))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Could not read request body", nil, err)
		return
	}

	resp, err := c.proxy.Forward(r.Context(), c.base(r), services.ProxyRequest{
		Method:        r.Method,
		Path:          path,
		Body:          body,
		Authorization: r.Header.Get("Authorization"),
	})
	if errors.Is(err, services.ErrProxyTarget) {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid target path parameter", nil, err)
		return
	}
	if err != nil {
		logger.WithError(err).Error("Proxy request failed")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeExternalServiceFailure, "Internal proxy error", nil, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func (c *ProxyController) base(r *http.Request) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
