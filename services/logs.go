package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"tecnoloc-diag/diagnosis"
	"tecnoloc-diag/models"
)

// SaveLogRequest enthält alles, was beim Abschluss eines Einsatzes gespeichert wird.
// Diagnosis ist der rohe Wert, wie ihn der Client zurückschickt; die Schlüsselreihenfolge bleibt erhalten.
type SaveLogRequest struct {
	EquipmentModel    string          `json:"equipment_model"`
	EquipmentName     string          `json:"equipment_name"`
	Brand             string          `json:"brand"`
	DefectCategory    string          `json:"defect_category"`
	DefectDescription string          `json:"defect_description"`
	Diagnosis         json.RawMessage `json:"diagnosis"`
	ResolutionType    string          `json:"resolution_type"`
	TechnicianName    string          `json:"technician_name"`
	TechnicianNotes   string          `json:"technician_notes"`
	AttachmentNotes   string          `json:"attachment_notes"`
}

// LogService verwaltet die Historie der Wartungseinsätze.
type LogService struct {
	Store  LogStore
	Logger *zap.Logger
	now    func() time.Time
}

func NewLogService(store LogStore, logger *zap.Logger) *LogService {
	return &LogService{Store: store, Logger: logger, now: time.Now}
}

// Save validiert den Einsatz, normalisiert die Diagnose erneut und legt ihn ab.
func (s *LogService) Save(ctx context.Context, req SaveLogRequest) (*models.MaintenanceLog, error) {
	if strings.TrimSpace(req.TechnicianName) == "" {
		return nil, fmt.Errorf("%w: technician_name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.EquipmentName) == "" {
		return nil, fmt.Errorf("%w: equipment_name is required", ErrInvalidInput)
	}
	if req.ResolutionType == "" {
		req.ResolutionType = models.ResolutionRecordOnly
	}
	if !models.ValidResolutionType(req.ResolutionType) {
		return nil, fmt.Errorf("%w: unknown resolution_type %q", ErrInvalidInput, req.ResolutionType)
	}
	if req.DefectCategory == "" {
		req.DefectCategory = models.CategoryBoth
	}
	if !models.ValidCategory(req.DefectCategory) {
		return nil, fmt.Errorf("%w: unknown defect_category %q", ErrInvalidInput, req.DefectCategory)
	}

	var raw any
	if len(req.Diagnosis) > 0 {
		v, err := diagnosis.Decode(req.Diagnosis)
		if err != nil {
			return nil, fmt.Errorf("%w: diagnosis: %v", ErrInvalidInput, err)
		}
		raw = v
	}

	log := &models.MaintenanceLog{
		EquipmentModel:    strings.TrimSpace(req.EquipmentModel),
		EquipmentName:     strings.TrimSpace(req.EquipmentName),
		Brand:             strings.TrimSpace(req.Brand),
		DefectCategory:    req.DefectCategory,
		DefectDescription: req.DefectDescription,
		Diagnosis:         datatypes.NewJSONType(diagnosis.Assemble(raw)),
		SchemaVersion:     diagnosis.SchemaVersion,
		Status:            models.StatusFor(req.ResolutionType),
		ResolutionType:    req.ResolutionType,
		TechnicianName:    strings.TrimSpace(req.TechnicianName),
		TechnicianNotes:   req.TechnicianNotes,
		AttachmentNotes:   req.AttachmentNotes,
		Date:              s.now(),
	}
	if err := s.Store.Create(ctx, log); err != nil {
		s.Logger.Error("Failed to save maintenance log", zap.Error(err))
		return nil, fmt.Errorf("save maintenance log: %w", err)
	}
	s.Logger.Info("Maintenance log saved",
		zap.Uint("id", log.ID),
		zap.String("status", log.Status),
		zap.String("technician", log.TechnicianName))
	return log, nil
}

func (s *LogService) List(ctx context.Context, f LogFilter) ([]models.MaintenanceLog, error) {
	return s.Store.List(ctx, f)
}

func (s *LogService) Get(ctx context.Context, id uint) (*models.MaintenanceLog, error) {
	return s.Store.Get(ctx, id)
}

func (s *LogService) Count(ctx context.Context) (int64, error) {
	return s.Store.Count(ctx)
}
