package service

import (
	"context"
	"fmt"
	"time"

	"invoicable/internal/model"
	"invoicable/internal/repository"
)

// --- DTOs ---

type AuditLogResponse struct {
	ID         string `json:"id"`
	Actor      string `json:"actor"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name,omitempty"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

// --- Interface ---

type AuditService interface {
	List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	audits repository.AuditRepository
}

func NewAuditService(audits repository.AuditRepository) AuditService {
	return &auditService{audits: audits}
}

// --- Implementation ---

func (s *auditService) List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.audits.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	result := make([]AuditLogResponse, 0, len(logs))
	for _, entry := range logs {
		result = append(result, toAuditLogResponse(entry))
	}
	return result, total, nil
}

// --- Mapping ---

func toAuditLogResponse(entry model.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:         entry.ID.String(),
		Actor:      entry.Actor,
		Action:     entry.Action,
		EntityID:   entry.EntityID,
		EntityName: entry.EntityName,
		Details:    entry.Details,
		CreatedAt:  entry.CreatedAt.Format(time.RFC3339),
	}
}
