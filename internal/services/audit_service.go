package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
	"github.com/sirupsen/logrus"
)

// AuditService appends events. Failures are logged and never surface to the
// caller; an audit hiccup must not fail the request that triggered it.
type AuditService interface {
	Record(ctx context.Context, entity models.EventEntityType, entityID string, event models.EventType, data any)
}

type auditService struct {
	repo repositories.EventRepository
}

func NewAuditService(repo repositories.EventRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, entity models.EventEntityType, entityID string, event models.EventType, data any) {
	e := &models.Event{
		ID:         uuid.New(),
		EntityType: entity,
		EntityID:   entityID,
		EventType:  event,
		IPAddress:  utils.ClientIPFromContext(ctx),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			utils.Logger.WithError(err).WithField("event", event).Warn("Failed to marshal audit event data")
		} else {
			e.EventData = raw
		}
	}
	if err := s.repo.Create(ctx, e); err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"event":     event,
			"entity_id": entityID,
		}).Error("Failed to write audit event")
	}
}
