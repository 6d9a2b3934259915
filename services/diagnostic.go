package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tecnoloc-diag/diagnosis"
	"tecnoloc-diag/models"
	"tecnoloc-diag/providers"
)

// DiagnosticService holt Kontext (Handbuch, Historie), fragt das Modell und normalisiert die Antwort.
type DiagnosticService struct {
	Provider  providers.Provider
	Logs      LogStore
	Manuals   ManualStore
	Logger    *zap.Logger
	Timeout   time.Duration
	TipsLimit int
}

// NewDiagnosticService erstellt eine neue Instanz des DiagnosticService.
func NewDiagnosticService(p providers.Provider, logs LogStore, manuals ManualStore, logger *zap.Logger, timeout time.Duration, tipsLimit int) *DiagnosticService {
	return &DiagnosticService{
		Provider:  p,
		Logs:      logs,
		Manuals:   manuals,
		Logger:    logger,
		Timeout:   timeout,
		TipsLimit: tipsLimit,
	}
}

// Validate prüft die Pflichtangaben und setzt die Standardkategorie.
func (info *EquipmentInfo) Validate() error {
	info.Name = strings.TrimSpace(info.Name)
	info.Model = strings.TrimSpace(info.Model)
	if info.Name == "" {
		return fmt.Errorf("%w: equipment_name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(info.Defect) == "" && strings.TrimSpace(info.ImageBase64) == "" {
		return fmt.Errorf("%w: defect_description or image is required", ErrInvalidInput)
	}
	if info.Category == "" {
		info.Category = models.CategoryBoth
	}
	if !models.ValidCategory(info.Category) {
		return fmt.Errorf("%w: unknown defect_category %q", ErrInvalidInput, info.Category)
	}
	return nil
}

// Analyze erstellt eine Diagnose. Fehler werden als eine zusammenfassende Meldung zurückgegeben;
// ein Teilergebnis gibt es nie.
func (s *DiagnosticService) Analyze(ctx context.Context, info EquipmentInfo) (diagnosis.Result, error) {
	if err := info.Validate(); err != nil {
		return diagnosis.Result{}, err
	}
	log := s.Logger.With(zap.String("equipment", info.Name), zap.String("model", info.Model), zap.String("provider", s.Provider.Name()))

	// Handbuch und Historie parallel laden; Fehler dort führen nur zu weniger Kontext
	var (
		manual string
		tips   []string
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		manual = s.manualContext(egCtx, log, info.Model)
		return nil
	})
	eg.Go(func() error {
		tips = s.fieldTips(egCtx, log, info)
		return nil
	})
	_ = eg.Wait()

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	text, err := s.Provider.Complete(ctx, BuildPrompt(info, manual, tips))
	if err != nil {
		diagnosesCounter.WithLabelValues(s.Provider.Name(), outcomeProviderError).Inc()
		log.Error("Model call failed", zap.Error(err))
		return diagnosis.Result{}, fmt.Errorf("diagnosis failed: %w", err)
	}

	raw, err := diagnosis.Decode([]byte(diagnosis.StripCodeFences(text)))
	if err != nil {
		diagnosesCounter.WithLabelValues(s.Provider.Name(), outcomeParseFailure).Inc()
		log.Warn("Model response is not valid JSON", zap.Error(err), zap.Int("response_len", len(text)))
		return diagnosis.Result{}, fmt.Errorf("diagnosis failed: %w", &diagnosis.ParseError{Err: err})
	}

	result, applied := diagnosis.EnsureMinimumContent(diagnosis.Collect(raw))
	diagnosesCounter.WithLabelValues(s.Provider.Name(), outcomeOK).Inc()
	if applied {
		defaultSolutionCounter.Inc()
	}
	log.Info("Diagnosis normalized",
		zap.Int("possible_causes", len(result.PossibleCauses)),
		zap.Int("solutions", len(result.Solutions)),
		zap.Bool("default_solution", applied))
	return result, nil
}

// manualContext liefert die Handbuchbeschreibung zum Modell oder "".
func (s *DiagnosticService) manualContext(ctx context.Context, log *zap.Logger, model string) string {
	if s.Manuals == nil || model == "" {
		return ""
	}
	m, err := s.Manuals.FindByModel(ctx, model)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn("Manual lookup failed", zap.Error(err))
		}
		return ""
	}
	return m.Description
}

// fieldTips sammelt die jüngsten Einsätze mit gleichem Modell oder gleicher Kategorie.
func (s *DiagnosticService) fieldTips(ctx context.Context, log *zap.Logger, info EquipmentInfo) []string {
	if s.Logs == nil || s.TipsLimit <= 0 {
		return nil
	}
	logs, err := s.Logs.List(ctx, LogFilter{
		EquipmentModel: info.Model,
		DefectCategory: info.Category,
		MatchAny:       true,
		Limit:          s.TipsLimit,
	})
	if err != nil {
		log.Warn("History lookup failed", zap.Error(err))
		return nil
	}
	tips := make([]string, 0, len(logs))
	for _, l := range logs {
		tips = append(tips, FieldTip(l))
	}
	return tips
}
