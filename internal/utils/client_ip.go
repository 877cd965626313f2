package utils

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey string

const ContextKeyClientIP contextKey = "clientIP"

// ClientIPFromContext returns the address stored by the client IP middleware.
func ClientIPFromContext(ctx context.Context) *string {
	v, ok := ctx.Value(ContextKeyClientIP).(string)
	if !ok || v == "" {
		return nil
	}
	return &v
}

// DetectIP extracts the best IP address from typical proxy headers or RemoteAddr.
func DetectIP(r *http.Request) string {
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		for _, ip := range strings.Split(forwardedFor, ",") {
			cleanIP := strings.TrimSpace(ip)
			if isValidIP(cleanIP) {
				return cleanIP
			}
		}
	}

	// Vercel and Cloudflare front the admin app in production.
	for _, h := range []string{"X-Real-IP", "X-Vercel-Forwarded-For", "CF-Connecting-IP"} {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" && isValidIP(v) {
			return v
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && isValidIP(ip) {
		return ip
	}
	return ""
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
