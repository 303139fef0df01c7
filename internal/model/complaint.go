package model

import "time"

// ComplaintReport is a tenant or staff complaint about a unit or asset
type ComplaintReport struct {
	ID             uint                  `gorm:"primaryKey" json:"id"`
	TenantID       *uint                 `gorm:"index" json:"tenant_id"`
	UnitID         *uint                 `gorm:"index" json:"unit_id"`
	AssetID        *uint                 `gorm:"index" json:"asset_id"`
	ReporterID     *uint                 `gorm:"index" json:"reporter_id"`
	Title          string                `gorm:"type:varchar(255);not null" json:"title"`
	Description    string                `gorm:"type:text" json:"description"`
	PhotoURL       string                `gorm:"type:varchar(500)" json:"photo_url"`
	Status         ComplaintReportStatus `gorm:"type:smallint;not null;index" json:"status"`
	ResolutionNote string                `gorm:"type:text" json:"resolution_note"`
	ResolvedAt     *time.Time            `json:"resolved_at"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}
