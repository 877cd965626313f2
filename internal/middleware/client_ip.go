package middleware

import (
	"context"
	"net/http"

	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

// ClientIP stores the caller's address in the request context for audit events.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := utils.DetectIP(r); ip != "" {
			r = r.WithContext(context.WithValue(r.Context(), utils.ContextKeyClientIP, ip))
		}
		next.ServeHTTP(w, r)
	})
}
