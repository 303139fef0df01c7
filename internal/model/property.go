package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Asset is a managed property (building)
type Asset struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Code        string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Address     string         `gorm:"type:text" json:"address"`
	City        string         `gorm:"type:varchar(100);index" json:"city"`
	TotalFloors int            `json:"total_floors"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `gorm:"type:varchar(500)" json:"image_url"`
	IsActive    bool           `gorm:"not null" json:"is_active"`
	Units       []Unit         `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE;" json:"units,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Unit is a rentable sub-space within an Asset
type Unit struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	AssetID   uint            `gorm:"not null;uniqueIndex:idx_asset_unit_code" json:"asset_id"`
	Asset     *Asset          `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
	Code      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_asset_unit_code" json:"code"`
	Name      string          `gorm:"type:varchar(255)" json:"name"`
	Floor     int             `json:"floor"`
	AreaSqm   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"area_sqm"`
	BaseRent  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"base_rent"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Tenant is a lessee renting one or more Units
type Tenant struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	CompanyName string         `gorm:"type:varchar(255)" json:"company_name"`
	Email       string         `gorm:"type:varchar(255);index" json:"email"`
	Phone       string         `gorm:"type:varchar(30)" json:"phone"`
	Notes       string         `gorm:"type:text" json:"notes"`
	Leases      []Lease        `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE;" json:"leases,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Lease binds a Tenant to a Unit for a period
type Lease struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TenantID      uint            `gorm:"not null;index" json:"tenant_id"`
	UnitID        uint            `gorm:"not null;index" json:"unit_id"`
	Unit          *Unit           `gorm:"foreignKey:UnitID;constraint:OnDelete:CASCADE;" json:"unit,omitempty"`
	StartDate     time.Time       `gorm:"not null" json:"start_date"`
	EndDate       time.Time       `gorm:"not null" json:"end_date"`
	MonthlyRent   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"monthly_rent"`
	Deposit       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"deposit"`
	PaymentDueDay int             `gorm:"not null" json:"payment_due_day"`
	Status        LeaseStatus     `gorm:"type:smallint;not null;index" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Payment is one rent installment owed by a Tenant
type Payment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	TenantID       uint            `gorm:"not null;index" json:"tenant_id"`
	Tenant         *Tenant         `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE;" json:"tenant,omitempty"`
	LeaseID        *uint           `gorm:"index" json:"lease_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	DueDate        time.Time       `gorm:"not null;index" json:"due_date"`
	Status         PaymentStatus   `gorm:"type:smallint;not null;index" json:"status"`
	PaidAt         *time.Time      `json:"paid_at"`
	ReminderSentAt *time.Time      `json:"reminder_sent_at"`
	Reference      string          `gorm:"type:varchar(100)" json:"reference"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
