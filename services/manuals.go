package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tecnoloc-diag/models"
	"tecnoloc-diag/storage"
)

const manualPrefix = "manuals/"

// UploadManualRequest beschreibt ein neues Handbuch samt Dateiinhalt.
type UploadManualRequest struct {
	EquipmentName  string
	Brand          string
	Model          string
	ManualType     string
	ManualCategory string
	Description    string
	FileName       string
	ContentType    string
	Data           []byte
}

// ManualService verwaltet Handbücher: Metadaten in der Datenbank, Dateien im Objektspeicher.
type ManualService struct {
	Store   ManualStore
	Objects storage.ObjectStore
	Logger  *zap.Logger
	now     func() time.Time
}

func NewManualService(store ManualStore, objects storage.ObjectStore, logger *zap.Logger) *ManualService {
	return &ManualService{Store: store, Objects: objects, Logger: logger, now: time.Now}
}

// Upload lädt die Datei hoch und legt den Datensatz an. Scheitert die Datenbank,
// wird die Datei wieder entfernt.
func (s *ManualService) Upload(ctx context.Context, req UploadManualRequest) (*models.Manual, error) {
	if strings.TrimSpace(req.EquipmentName) == "" {
		return nil, fmt.Errorf("%w: equipment_name is required", ErrInvalidInput)
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if req.ManualType == "" {
		req.ManualType = models.ManualTypeOther
	}
	if !models.ValidManualType(req.ManualType) {
		return nil, fmt.Errorf("%w: unknown manual_type %q", ErrInvalidInput, req.ManualType)
	}
	if req.ManualCategory == "" {
		req.ManualCategory = models.CategoryBoth
	}
	if !models.ValidCategory(req.ManualCategory) {
		return nil, fmt.Errorf("%w: unknown manual_category %q", ErrInvalidInput, req.ManualCategory)
	}
	if s.Objects == nil {
		return nil, errors.New("object storage is not configured")
	}

	key := s.objectKey(req.FileName)
	url, err := s.Objects.Upload(ctx, key, req.Data, req.ContentType)
	if err != nil {
		s.Logger.Error("Manual upload failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("upload manual: %w", err)
	}

	m := &models.Manual{
		EquipmentName:  strings.TrimSpace(req.EquipmentName),
		Brand:          strings.TrimSpace(req.Brand),
		Model:          strings.TrimSpace(req.Model),
		ManualType:     req.ManualType,
		ManualCategory: req.ManualCategory,
		Description:    req.Description,
		FileURL:        url,
		FileName:       req.FileName,
		S3Key:          key,
	}
	if err := s.Store.Create(ctx, m); err != nil {
		if delErr := s.Objects.Delete(ctx, key); delErr != nil {
			s.Logger.Warn("Failed to remove orphaned manual file", zap.String("key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("save manual: %w", err)
	}
	s.Logger.Info("Manual uploaded", zap.Uint("id", m.ID), zap.String("key", key), zap.Int("bytes", len(req.Data)))
	return m, nil
}

func (s *ManualService) List(ctx context.Context) ([]models.Manual, error) {
	return s.Store.List(ctx)
}

// Delete entfernt Datensatz und Datei. Ein Fehler beim Löschen der Datei wird nur geloggt.
func (s *ManualService) Delete(ctx context.Context, id uint) error {
	m, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	if s.Objects != nil && m.S3Key != "" {
		if err := s.Objects.Delete(ctx, m.S3Key); err != nil {
			s.Logger.Warn("Failed to delete manual file", zap.String("key", m.S3Key), zap.Error(err))
		}
	}
	s.Logger.Info("Manual deleted", zap.Uint("id", id))
	return nil
}

func (s *ManualService) FindByModel(ctx context.Context, model string) (*models.Manual, error) {
	return s.Store.FindByModel(ctx, model)
}

// objectKey erzeugt manuals/<uuid>_<unix>.<ext>.
func (s *ManualService) objectKey(fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s%s_%d.%s", manualPrefix, uuid.NewString(), s.now().Unix(), ext)
}
