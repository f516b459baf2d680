package service

import (
	"context"

	"medibook-backend/internal/domain/entity"
	"medibook-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService records state transitions in the audit trail. Transitions are
// also logged structurally so failures can be traced without reading the
// table.
type AuditService interface {
	LogTransition(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, metadata map[string]interface{}) error
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) LogTransition(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, metadata map[string]interface{}) error {
	meta := entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
	}
	for k, v := range metadata {
		meta[k] = v
	}

	auditLog := &entity.AuditLog{
		UserID:   userID,
		Action:   action,
		Metadata: meta,
	}

	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	s.log.WithFields(logrus.Fields{
		"action":    action,
		"entity":    entityName,
		"entity_id": entityID,
	}).Info("State transition recorded")

	return nil
}
