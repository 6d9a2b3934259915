package models

import "time"

// Handbuchtypen.
const (
	ManualTypeUser        = "usuario"
	ManualTypeTechnical   = "tecnico"
	ManualTypeMaintenance = "manutencao"
	ManualTypeOther       = "outro"
)

// Manual beschreibt ein hochgeladenes Gerätehandbuch. Die Datei liegt im S3-Bucket.
type Manual struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EquipmentName  string `json:"equipment_name" gorm:"not null"`
	Brand          string `json:"brand"`
	Model          string `json:"model" gorm:"index"`
	ManualType     string `json:"manual_type" gorm:"default:'outro'"`
	ManualCategory string `json:"manual_category" gorm:"default:'ambos'"`
	Description    string `json:"description" gorm:"type:text"`

	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
	S3Key    string `json:"-" gorm:"column:s3_key"`
}

// TableName gibt explizit den Tabellennamen an.
func (Manual) TableName() string {
	return "manuals"
}

// ValidManualType prüft den Handbuchtyp.
func ValidManualType(s string) bool {
	switch s {
	case ManualTypeUser, ManualTypeTechnical, ManualTypeMaintenance, ManualTypeOther:
		return true
	}
	return false
}
