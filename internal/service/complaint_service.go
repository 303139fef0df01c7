package service

import (
	"context"
	"strings"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/pagination"
)

type CreateComplaintReportRequest struct {
	TenantID    *uint  `json:"tenant_id"`
	UnitID      *uint  `json:"unit_id"`
	AssetID     *uint  `json:"asset_id"`
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	PhotoURL    string `json:"photo_url" binding:"omitempty,max=500"`
}

// UpdateComplaintReportRequest carries the fields a client may send on update. Only Status and
// ResolutionNote are accepted; the rest are decoded to reject them.
type UpdateComplaintReportRequest struct {
	Status         string  `json:"status"`
	ResolutionNote string  `json:"resolution_note"`
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	PhotoURL       *string `json:"photo_url"`
}

type ComplaintReportService interface {
	List(ctx context.Context, f repository.ComplaintFilter, p pagination.Params) ([]model.ComplaintReport, int64, error)
	Get(ctx context.Context, id uint) (*model.ComplaintReport, error)
	Create(ctx context.Context, reporterID uint, req CreateComplaintReportRequest) (*model.ComplaintReport, error)
	UpdateStatus(ctx context.Context, actorID, id uint, req UpdateComplaintReportRequest) (*model.ComplaintReport, error)
	Delete(ctx context.Context, id uint) error
}

type complaintReportService struct {
	txManager repository.TransactionManager
	reports   repository.ComplaintReportRepository
	audit     auditor
	notify    Notifier
	now       func() time.Time
}

func NewComplaintReportService(
	txManager repository.TransactionManager,
	reports repository.ComplaintReportRepository,
	auditRepo repository.AuditRepository,
	notify Notifier,
) ComplaintReportService {
	return &complaintReportService{
		txManager: txManager,
		reports:   reports,
		audit:     auditor{repo: auditRepo},
		notify:    notifierOrNop(notify),
		now:       time.Now,
	}
}

func (s *complaintReportService) List(ctx context.Context, f repository.ComplaintFilter, p pagination.Params) ([]model.ComplaintReport, int64, error) {
	items, total, err := s.reports.List(ctx, f, p)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to list complaint reports")
	}
	return items, total, nil
}

func (s *complaintReportService) Get(ctx context.Context, id uint) (*model.ComplaintReport, error) {
	r, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Complaint report not found")
	}
	return r, nil
}

func (s *complaintReportService) Create(ctx context.Context, reporterID uint, req CreateComplaintReportRequest) (*model.ComplaintReport, error) {
	r := model.ComplaintReport{
		TenantID:    req.TenantID,
		UnitID:      req.UnitID,
		AssetID:     req.AssetID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
		Status:      model.ComplaintOpen,
	}
	if reporterID != 0 {
		r.ReporterID = &reporterID
	}
	if r.Title == "" {
		return nil, apperr.Validation("title is required")
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.reports.Create(txCtx, &r); err != nil {
			return apperr.Internal(err, "failed to create complaint report")
		}
		return s.audit.record(txCtx, reporterID, model.ActionCreateComplaintReport, "complaint_report", r.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	s.notify.Publish(EventComplaintCreated, r)
	return &r, nil
}

func (s *complaintReportService) UpdateStatus(ctx context.Context, actorID, id uint, req UpdateComplaintReportRequest) (*model.ComplaintReport, error) {
	if req.Title != nil || req.Description != nil || req.PhotoURL != nil {
		return nil, apperr.Validation("Only status can be updated")
	}
	status, err := model.ParseComplaintReportStatus(req.Status)
	if err != nil {
		return nil, err
	}
	r, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Complaint report not found")
	}
	if r.Status.IsFinal() && status != r.Status {
		return nil, apperr.Conflict("Complaint report is already %s", r.Status)
	}

	from := r.Status
	r.Status = status
	if req.ResolutionNote != "" {
		r.ResolutionNote = req.ResolutionNote
	}
	if status.IsFinal() && r.ResolvedAt == nil {
		now := s.now()
		r.ResolvedAt = &now
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.reports.Update(txCtx, r); err != nil {
			return apperr.Internal(err, "failed to update complaint report")
		}
		return s.audit.record(txCtx, actorID, model.ActionUpdateComplaintStatus, "complaint_report", r.ID,
			map[string]string{"from": from.String(), "to": status.String()})
	})
	if err != nil {
		return nil, err
	}
	if from != status {
		s.notify.Publish(EventComplaintStatusChanged, r)
	}
	return r, nil
}

func (s *complaintReportService) Delete(ctx context.Context, id uint) error {
	if err := s.reports.Delete(ctx, id); err != nil {
		return apperr.FromRepo(err, "Complaint report not found")
	}
	return nil
}
