package service

import (
	"context"
	"strings"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/repository"
)

type SettingInput struct {
	Key   string `json:"key" binding:"required,max=100"`
	Value string `json:"value"`
}

type UpdateSettingsRequest struct {
	Settings []SettingInput `json:"settings" binding:"required,dive"`
}

type SettingService interface {
	List(ctx context.Context) ([]model.Setting, error)
	Get(ctx context.Context, key string) (*model.Setting, error)
	Upsert(ctx context.Context, actorID uint, req UpdateSettingsRequest) ([]model.Setting, error)
}

type settingService struct {
	txManager repository.TransactionManager
	settings  repository.SettingRepository
	audit     auditor
}

func NewSettingService(txManager repository.TransactionManager, settings repository.SettingRepository, auditRepo repository.AuditRepository) SettingService {
	return &settingService{txManager: txManager, settings: settings, audit: auditor{repo: auditRepo}}
}

func (s *settingService) List(ctx context.Context) ([]model.Setting, error) {
	items, err := s.settings.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list settings")
	}
	return items, nil
}

func (s *settingService) Get(ctx context.Context, key string) (*model.Setting, error) {
	st, err := s.settings.Get(ctx, key)
	if err != nil {
		return nil, apperr.FromRepo(err, "Setting not found")
	}
	return st, nil
}

// Upsert writes all settings in one transaction; a key given twice keeps its last value.
func (s *settingService) Upsert(ctx context.Context, actorID uint, req UpdateSettingsRequest) ([]model.Setting, error) {
	if len(req.Settings) == 0 {
		return nil, apperr.Validation("settings must not be empty")
	}
	index := make(map[string]int, len(req.Settings))
	rows := make([]model.Setting, 0, len(req.Settings))
	for _, in := range req.Settings {
		key := strings.TrimSpace(in.Key)
		if key == "" {
			return nil, apperr.Validation("setting key must not be empty")
		}
		if i, ok := index[key]; ok {
			rows[i].Value = in.Value
			continue
		}
		index[key] = len(rows)
		rows = append(rows, model.Setting{Key: key, Value: in.Value})
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.settings.Upsert(txCtx, rows); err != nil {
			return apperr.Internal(err, "failed to save settings")
		}
		keys := make([]string, 0, len(rows))
		for _, r := range rows {
			keys = append(keys, r.Key)
		}
		return s.audit.record(txCtx, actorID, model.ActionUpdateSetting, "setting", 0, keys)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
