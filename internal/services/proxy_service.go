package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

const proxyTimeout = 30 * time.Second

// ErrProxyTarget marks a target path the proxy refuses to forward.
var ErrProxyTarget = errors.New("invalid proxy target")

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ProxyRequest struct {
	Method        string
	Path          string // e.g. "/quotes?status=SENT"
	Body          []byte
	Authorization string
}

type ProxyResponse struct {
	StatusCode int
	Body       []byte
}

// ProxyService forwards browser calls to this API's own /api routes, so
// pages served from other origins can reach the restricted endpoints.
type ProxyService interface {
	Forward(ctx context.Context, baseURL string, req ProxyRequest) (*ProxyResponse, error)
}

type proxyService struct {
	client HTTPDoer
}

func NewProxyService(client HTTPDoer) ProxyService {
	if client == nil {
		client = &http.Client{Timeout: proxyTimeout}
	}
	return &proxyService{client: client}
}

func (s *proxyService) Forward(ctx context.Context, baseURL string, in ProxyRequest) (*ProxyResponse, error) {
	target, err := proxyTarget(baseURL, in.Path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if in.Method != http.MethodGet && in.Method != http.MethodHead && len(in.Body) > 0 {
		body = bytes.NewReader(in.Body)
	}
	req, err := http.NewRequestWithContext(ctx, in.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build proxy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if in.Authorization != "" {
		req.Header.Set("Authorization", in.Authorization)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read upstream body: %v", utils.ErrExternalServiceFailure, err)
	}

	utils.Logger.WithFields(logrus.Fields{
		"method": in.Method,
		"target": target,
		"status": resp.StatusCode,
	}).Debug("Proxied request")

	return &ProxyResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

// proxyTarget joins baseURL + "/api" + path and refuses anything that would
// leave the base host or loop back into the proxy.
func proxyTarget(baseURL, path string) (string, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Host == "" {
		return "", fmt.Errorf("%w: bad base URL %q", ErrProxyTarget, baseURL)
	}
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return "", fmt.Errorf("%w: path must start with a single /", ErrProxyTarget)
	}
	if path == "/proxy" || strings.HasPrefix(path, "/proxy/") || strings.HasPrefix(path, "/proxy?") {
		return "", fmt.Errorf("%w: recursive proxy call", ErrProxyTarget)
	}

	target, err := url.Parse(base.String() + "/api" + path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProxyTarget, err)
	}
	if target.Host != base.Host || target.Scheme != base.Scheme {
		return "", fmt.Errorf("%w: host mismatch", ErrProxyTarget)
	}
	return target.String(), nil
}
