package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"

	"github.com/samedayramps/app.samedayramps.com/internal/dtos"
)

// CORSLowSecurityAllowedOriginLocalhost is added to the allow-list unless
// high-security CORS is switched on.
const CORSLowSecurityAllowedOriginLocalhost = "http://localhost:3000"

var (
	corsMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	corsHeaders = []string{"Content-Type", "Authorization", "X-Requested-With"}
)

// CORSPolicy applies a permissive policy to the public paths (website form,
// health, proxy) and an origin allow-list everywhere else.
type CORSPolicy struct {
	publicPaths    []string
	allowedOrigins []string
	public         *cors.Cors
	restricted     *cors.Cors
}

func NewCORSPolicy(allowedOrigin string, highSecurity bool, publicPaths []string) *CORSPolicy {
	origins := []string{allowedOrigin}
	if !highSecurity {
		origins = append(origins, CORSLowSecurityAllowedOriginLocalhost)
	}
	return &CORSPolicy{
		publicPaths:    publicPaths,
		allowedOrigins: origins,
		public: cors.New(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: corsMethods,
			AllowedHeaders: corsHeaders,
			MaxAge:         86400,
		}),
		restricted: cors.New(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   corsMethods,
			AllowedHeaders:   corsHeaders,
			AllowCredentials: true,
			MaxAge:           86400,
		}),
	}
}

func (p *CORSPolicy) isPublic(path string) bool {
	for _, pub := range p.publicPaths {
		if path == pub || strings.HasPrefix(path, pub+"/") {
			return true
		}
	}
	return false
}

// Handler wraps next with the policy matching the request path.
func (p *CORSPolicy) Handler(next http.Handler) http.Handler {
	public := p.public.Handler(next)
	restricted := p.restricted.Handler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p.isPublic(r.URL.Path) {
			public.ServeHTTP(w, r)
			return
		}
		restricted.ServeHTTP(w, r)
	})
}

// Info describes the restricted policy for the health endpoint.
func (p *CORSPolicy) Info() dtos.CORSInfo {
	return dtos.CORSInfo{
		Enabled:        true,
		AllowedOrigins: append([]string(nil), p.allowedOrigins...),
		AllowedMethods: append([]string(nil), corsMethods...),
	}
}
