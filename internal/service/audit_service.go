package service

import (
	"context"
	"encoding/json"
	"strconv"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/pagination"
)

type AuditLogResponse struct {
	ID         uint   `json:"id"`
	UserID     *uint  `json:"user_id"`
	UserName   string `json:"user_name"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, f repository.AuditFilter, p pagination.Params) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) GetAuditLogs(ctx context.Context, f repository.AuditFilter, p pagination.Params) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to list audit logs")
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		name := "System"
		if l.User != nil {
			name = l.User.Name
		}
		res = append(res, AuditLogResponse{
			ID:         l.ID,
			UserID:     l.UserID,
			UserName:   name,
			Action:     l.Action,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return res, total, nil
}

// auditor writes audit rows; call it with the transaction context of the change it records.
type auditor struct {
	repo repository.AuditRepository
}

// record stores one audit row. actorID 0 means the system.
func (a auditor) record(ctx context.Context, actorID uint, action, entityType string, entityID uint, details interface{}) error {
	var uid *uint
	if actorID != 0 {
		uid = &actorID
	}
	payload := ""
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return apperr.Internal(err, "failed to encode audit details")
		}
		payload = string(b)
	}
	entry := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityType: entityType,
		EntityID:   strconv.FormatUint(uint64(entityID), 10),
		Details:    payload,
	}
	if err := a.repo.Log(ctx, entry); err != nil {
		return apperr.Internal(err, "failed to write audit log")
	}
	return nil
}
