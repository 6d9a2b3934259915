package services

import (
	"context"

	"go.uber.org/zap"

	"tecnoloc-diag/diagnosis"
)

const renormalizeBatch = 100

// Renormalizer bringt gespeicherte Diagnosen älterer Schemaversionen auf den aktuellen Stand.
type Renormalizer struct {
	Store  LogStore
	Logger *zap.Logger
}

func NewRenormalizer(store LogStore, logger *zap.Logger) *Renormalizer {
	return &Renormalizer{Store: store, Logger: logger}
}

// Run arbeitet in Stapeln, bis keine veralteten Einträge mehr übrig sind.
// Zurückgegeben wird die Zahl der aktualisierten Einträge.
func (r *Renormalizer) Run(ctx context.Context) (int, error) {
	updated := 0
	for {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		logs, err := r.Store.Outdated(ctx, diagnosis.SchemaVersion, renormalizeBatch)
		if err != nil {
			return updated, err
		}
		if len(logs) == 0 {
			break
		}
		for _, l := range logs {
			fresh := diagnosis.Assemble(l.Diagnosis.Data().AsRaw())
			if err := r.Store.UpdateDiagnosis(ctx, l.ID, fresh, diagnosis.SchemaVersion); err != nil {
				r.Logger.Error("Failed to renormalize diagnosis", zap.Uint("id", l.ID), zap.Error(err))
				return updated, err
			}
			updated++
			renormalizedCounter.Inc()
		}
		if len(logs) < renormalizeBatch {
			break
		}
	}
	if updated > 0 {
		r.Logger.Info("Stored diagnoses renormalized", zap.Int("count", updated), zap.Int("schema_version", diagnosis.SchemaVersion))
	}
	return updated, nil
}
