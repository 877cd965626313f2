package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/samedayramps/app.samedayramps.com/internal/constants"
	"github.com/samedayramps/app.samedayramps.com/internal/dtos"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController checks DB connectivity and reports the CORS setup.
type HealthController struct {
	db   Pinger
	cors dtos.CORSInfo
}

func NewHealthController(db Pinger, cors dtos.CORSInfo) *HealthController {
	return &HealthController{db: db, cors: cors}
}

// HealthCheckHandler => GET /api/health
func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	database := "connected"
	if err := c.db.Ping(ctx); err != nil {
		utils.Logger.WithError(err).Error("Health check: database unreachable")
		database = "disconnected"
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Server:    constants.ServerName,
		Version:   constants.ServerVersion,
		CORS:      c.cors,
		Database:  database,
	})
}
