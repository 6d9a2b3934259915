package models

import (
	"time"

	"gorm.io/datatypes"

	"tecnoloc-diag/diagnosis"
)

// Statuswerte eines Einsatzes.
const (
	StatusResolved = "Resolvido"
	StatusPending  = "Pendente"
)

// Art der Lösung, die der Techniker beim Abschluss angibt.
const (
	ResolutionRecordOnly  = "salvar_depois"
	ResolutionPerManual   = "conforme_manual"
	ResolutionAlternative = "forma_diferente"
)

// Fehlerkategorien für Geräte und Handbücher.
const (
	CategoryElectrical = "eletrico"
	CategoryMechanical = "mecanico"
	CategoryBoth       = "ambos"
)

// MaintenanceLog speichert einen Wartungseinsatz samt normalisierter KI-Diagnose.
type MaintenanceLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Gerät
	EquipmentModel string `json:"equipment_model" gorm:"index"`
	EquipmentName  string `json:"equipment_name" gorm:"not null"`
	Brand          string `json:"brand"`

	DefectCategory    string `json:"defect_category" gorm:"index;default:'ambos'"`
	DefectDescription string `json:"defect_description" gorm:"type:text"`

	// Diagnose wird unverändert als jsonb abgelegt
	Diagnosis     datatypes.JSONType[diagnosis.Result] `json:"diagnosis" gorm:"type:jsonb"`
	SchemaVersion int                                  `json:"schema_version" gorm:"index;default:0"`

	Status          string `json:"status" gorm:"index"`
	ResolutionType  string `json:"resolution_type"`
	TechnicianName  string `json:"technician_name"`
	TechnicianNotes string `json:"technician_notes" gorm:"type:text"`
	AttachmentNotes string `json:"attachment_notes,omitempty" gorm:"type:text"`

	Date time.Time `json:"date" gorm:"index"`
}

// TableName gibt explizit den Tabellennamen an.
func (MaintenanceLog) TableName() string {
	return "maintenance_logs"
}

// StatusFor leitet den Status aus der Lösungsart ab: nur "salvar_depois" bleibt offen.
func StatusFor(resolutionType string) string {
	if resolutionType == ResolutionRecordOnly {
		return StatusPending
	}
	return StatusResolved
}

// ValidResolutionType prüft die Lösungsart gegen die bekannten Werte.
func ValidResolutionType(s string) bool {
	switch s {
	case ResolutionRecordOnly, ResolutionPerManual, ResolutionAlternative:
		return true
	}
	return false
}

// ValidCategory prüft eine Fehler- bzw. Handbuchkategorie.
func ValidCategory(s string) bool {
	switch s {
	case CategoryElectrical, CategoryMechanical, CategoryBoth:
		return true
	}
	return false
}
