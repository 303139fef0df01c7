package model

import "time"

// Setting is a key/value application setting
type Setting struct {
	Key       string    `gorm:"column:setting_key;type:varchar(100);primaryKey" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attachment records a stored upload
type Attachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Type         string    `gorm:"type:varchar(50);not null;index" json:"type"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"file_name"`
	OriginalName string    `gorm:"type:varchar(255)" json:"original_name"`
	URL          string    `gorm:"type:varchar(500);not null" json:"url"`
	MimeType     string    `gorm:"type:varchar(100)" json:"mime_type"`
	Size         int64     `json:"size"`
	UploadedBy   *uint     `gorm:"index" json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}
