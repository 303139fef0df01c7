package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/pagination"

	"gorm.io/gorm"
)

type CreateScanInfoRequest struct {
	Code       string   `json:"code" binding:"required,max=255"`
	UserTaskID *uint    `json:"user_task_id"`
	Latitude   *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude  *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	PhotoURL   string   `json:"photo_url" binding:"omitempty,max=500"`
}

type ScanInfoService interface {
	List(ctx context.Context, f repository.ScanInfoFilter, p pagination.Params) ([]model.ScanInfo, int64, error)
	Get(ctx context.Context, id uint) (*model.ScanInfo, error)
	// Create records a check-in by userID. A scanned code equal to an asset code links the asset.
	Create(ctx context.Context, userID uint, req CreateScanInfoRequest) (*model.ScanInfo, error)
}

type scanInfoService struct {
	scans     repository.ScanInfoRepository
	userTasks repository.UserTaskRepository
	assets    repository.AssetRepository
	now       func() time.Time
}

func NewScanInfoService(scans repository.ScanInfoRepository, userTasks repository.UserTaskRepository, assets repository.AssetRepository) ScanInfoService {
	return &scanInfoService{scans: scans, userTasks: userTasks, assets: assets, now: time.Now}
}

func (s *scanInfoService) List(ctx context.Context, f repository.ScanInfoFilter, p pagination.Params) ([]model.ScanInfo, int64, error) {
	items, total, err := s.scans.List(ctx, f, p)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to list scan infos")
	}
	return items, total, nil
}

func (s *scanInfoService) Get(ctx context.Context, id uint) (*model.ScanInfo, error) {
	si, err := s.scans.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromRepo(err, "Scan info not found")
	}
	return si, nil
}

func (s *scanInfoService) Create(ctx context.Context, userID uint, req CreateScanInfoRequest) (*model.ScanInfo, error) {
	si := model.ScanInfo{
		UserID:     userID,
		UserTaskID: req.UserTaskID,
		Code:       strings.TrimSpace(req.Code),
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		PhotoURL:   req.PhotoURL,
		ScannedAt:  s.now(),
	}
	if si.Code == "" {
		return nil, apperr.Validation("code is required")
	}

	if req.UserTaskID != nil {
		ut, err := s.userTasks.FindByID(ctx, *req.UserTaskID)
		if err != nil {
			return nil, validationIfMissing(err, "User task not found")
		}
		if ut.UserID != userID {
			return nil, apperr.Forbidden("User task belongs to another user")
		}
	}

	asset, err := s.assets.FindByCode(ctx, strings.ToUpper(si.Code))
	switch {
	case err == nil:
		si.AssetID = &asset.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.Internal(err, "failed to look up asset code")
	}

	if err := s.scans.Create(ctx, &si); err != nil {
		return nil, apperr.Internal(err, "failed to record scan")
	}
	return &si, nil
}
