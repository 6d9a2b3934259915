package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tecnoloc-diag/diagnosis"
	"tecnoloc-diag/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// LogFilter schränkt die Historie ein. Leere Felder werden ignoriert.
type LogFilter struct {
	EquipmentModel string
	DefectCategory string
	Status         string
	// MatchAny verknüpft Modell und Kategorie mit ODER (für Praxistipps).
	// Ein leeres Modell trifft dann Einsätze ohne Modell.
	MatchAny bool
	Limit    int
}

func (f LogFilter) either() bool {
	return f.MatchAny && f.DefectCategory != ""
}

// LogStore kapselt die Persistenz der Wartungseinsätze.
type LogStore interface {
	Create(ctx context.Context, log *models.MaintenanceLog) error
	List(ctx context.Context, f LogFilter) ([]models.MaintenanceLog, error)
	Get(ctx context.Context, id uint) (*models.MaintenanceLog, error)
	Count(ctx context.Context) (int64, error)
	Outdated(ctx context.Context, version, limit int) ([]models.MaintenanceLog, error)
	UpdateDiagnosis(ctx context.Context, id uint, r diagnosis.Result, version int) error
}

// ManualStore kapselt die Persistenz der Handbuch-Metadaten.
type ManualStore interface {
	Create(ctx context.Context, m *models.Manual) error
	List(ctx context.Context) ([]models.Manual, error)
	Get(ctx context.Context, id uint) (*models.Manual, error)
	Delete(ctx context.Context, id uint) error
	FindByModel(ctx context.Context, model string) (*models.Manual, error)
}

// GormLogStore implementiert LogStore auf PostgreSQL.
type GormLogStore struct {
	DB *gorm.DB
}

func NewGormLogStore(db *gorm.DB) *GormLogStore {
	return &GormLogStore{DB: db}
}

func (s *GormLogStore) Create(ctx context.Context, log *models.MaintenanceLog) error {
	return s.DB.WithContext(ctx).Create(log).Error
}

func (s *GormLogStore) List(ctx context.Context, f LogFilter) ([]models.MaintenanceLog, error) {
	query := s.DB.WithContext(ctx).Model(&models.MaintenanceLog{})

	if f.either() {
		query = query.Where("equipment_model = ? OR defect_category = ?", f.EquipmentModel, f.DefectCategory)
	} else {
		if f.EquipmentModel != "" {
			query = query.Where("equipment_model = ?", f.EquipmentModel)
		}
		if f.DefectCategory != "" {
			query = query.Where("defect_category = ?", f.DefectCategory)
		}
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var logs []models.MaintenanceLog
	err := query.Order("date desc").Find(&logs).Error
	return logs, err
}

func (s *GormLogStore) Get(ctx context.Context, id uint) (*models.MaintenanceLog, error) {
	var log models.MaintenanceLog
	if err := s.DB.WithContext(ctx).First(&log, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

func (s *GormLogStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.MaintenanceLog{}).Count(&n).Error
	return n, err
}

func (s *GormLogStore) Outdated(ctx context.Context, version, limit int) ([]models.MaintenanceLog, error) {
	var logs []models.MaintenanceLog
	err := s.DB.WithContext(ctx).
		Where("schema_version < ?", version).
		Order("id asc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (s *GormLogStore) UpdateDiagnosis(ctx context.Context, id uint, r diagnosis.Result, version int) error {
	return s.DB.WithContext(ctx).Model(&models.MaintenanceLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"diagnosis":      datatypes.NewJSONType(r),
			"schema_version": version,
		}).Error
}

// GormManualStore implementiert ManualStore auf PostgreSQL.
type GormManualStore struct {
	DB *gorm.DB
}

func NewGormManualStore(db *gorm.DB) *GormManualStore {
	return &GormManualStore{DB: db}
}

func (s *GormManualStore) Create(ctx context.Context, m *models.Manual) error {
	return s.DB.WithContext(ctx).Create(m).Error
}

func (s *GormManualStore) List(ctx context.Context) ([]models.Manual, error) {
	var manuals []models.Manual
	err := s.DB.WithContext(ctx).Order("created_at desc").Find(&manuals).Error
	return manuals, err
}

func (s *GormManualStore) Get(ctx context.Context, id uint) (*models.Manual, error) {
	var m models.Manual
	if err := s.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *GormManualStore) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Manual{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByModel sucht das neueste Handbuch, dessen Modell den Suchbegriff enthält (ohne Groß-/Kleinschreibung).
func (s *GormManualStore) FindByModel(ctx context.Context, model string) (*models.Manual, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, ErrNotFound
	}
	var m models.Manual
	err := s.DB.WithContext(ctx).
		Where("model ILIKE ?", "%"+escapeLike(model)+"%").
		Order("created_at desc").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
