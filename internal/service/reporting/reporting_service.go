// Package reporting is the query boundary of the ledger: it validates raw
// filter input, resolves the caller's base scope and delegates to the
// balance engine. It also builds the daily stock snapshots.
package reporting

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/armory/internal/domain/apperrors"
	"github.com/mamadbah2/armory/internal/domain/models"
	"github.com/mamadbah2/armory/internal/repository"
	"github.com/mamadbah2/armory/internal/service/balance"
	"github.com/mamadbah2/armory/internal/service/scope"
)

// DashboardFilter carries the raw query parameters as received on the wire.
type DashboardFilter struct {
	Base      string
	Equipment string
	FromDate  string
	ToDate    string
}

// SnapshotExporter receives each captured snapshot, e.g. for a spreadsheet.
type SnapshotExporter interface {
	ExportSnapshot(ctx context.Context, snap models.StockSnapshot) error
}

// Service assembles balance reports and daily snapshots.
type Service struct {
	engine   *balance.Engine
	refs     repository.ReferenceStore
	snaps    repository.SnapshotStore
	exporter SnapshotExporter // nil when no export target is configured
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a reporting service. exporter may be nil.
func NewService(engine *balance.Engine, refs repository.ReferenceStore, snaps repository.SnapshotStore, exporter SnapshotExporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:   engine,
		refs:     refs,
		snaps:    snaps,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Dashboard validates the filter, resolves the actor's scope and computes
// the balance report. Upstream error kinds pass through untranslated.
func (s *Service) Dashboard(ctx context.Context, actor models.Actor, filter DashboardFilter) (models.BalanceReport, error) {
	if filter.Equipment == "" {
		return models.BalanceReport{}, apperrors.Validationf("equipment is required")
	}
	equipmentID, err := primitive.ObjectIDFromHex(filter.Equipment)
	if err != nil {
		return models.BalanceReport{}, apperrors.Validationf("malformed equipment id %q", filter.Equipment)
	}
	if _, err := s.refs.EquipmentByID(ctx, equipmentID); err != nil {
		return models.BalanceReport{}, err
	}

	from, err := parseDate("fromDate", filter.FromDate)
	if err != nil {
		return models.BalanceReport{}, err
	}
	to, err := parseDate("toDate", filter.ToDate)
	if err != nil {
		return models.BalanceReport{}, err
	}

	var requestedBase primitive.ObjectID
	if filter.Base != "" {
		requestedBase, err = primitive.ObjectIDFromHex(filter.Base)
		if err != nil {
			return models.BalanceReport{}, apperrors.Validationf("malformed base id %q", filter.Base)
		}
	}

	sc, err := scope.Resolve(actor, requestedBase)
	if err != nil {
		return models.BalanceReport{}, err
	}

	return s.engine.Compute(ctx, sc, equipmentID, from, to)
}

// CaptureDailySnapshots computes the end-of-day position for every base and
// equipment pair and persists one snapshot each. Export failures are logged
// and do not stop the run. Returns the number of snapshots written.
func (s *Service) CaptureDailySnapshots(ctx context.Context, day time.Time) (int, error) {
	day = truncateToDay(day)

	bases, err := s.refs.Bases(ctx)
	if err != nil {
		return 0, fmt.Errorf("list bases: %w", err)
	}
	equipments, err := s.refs.Equipments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list equipments: %w", err)
	}

	var written int
	for _, b := range bases {
		for _, eq := range equipments {
			report, err := s.engine.Compute(ctx, scope.Single(b.ID), eq.ID, day, day)
			if err != nil {
				return written, fmt.Errorf("compute %s/%s: %w", b.Name, eq.Name, err)
			}

			snap := models.StockSnapshot{
				Date:           day,
				Base:           b.ID,
				BaseName:       b.Name,
				Equipment:      eq.ID,
				EquipmentName:  eq.Name,
				ClosingBalance: report.ClosingBalance,
				Assigned:       report.Assignments,
				Expended:       report.Expended,
				CreatedAt:      s.now().UTC(),
			}

			if err := s.snaps.SaveSnapshot(ctx, snap); err != nil {
				return written, fmt.Errorf("save snapshot %s/%s: %w", b.Name, eq.Name, err)
			}
			written++

			if s.exporter != nil {
				if err := s.exporter.ExportSnapshot(ctx, snap); err != nil {
					s.logger.Warn("snapshot export failed",
						zap.String("base", b.Name),
						zap.String("equipment", eq.Name),
						zap.Error(err))
				}
			}
		}
	}

	s.logger.Info("daily snapshots captured",
		zap.Time("day", day),
		zap.Int("count", written))
	return written, nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.Validationf("%s is required", field)
	}
	t, err := time.ParseInLocation(models.DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.Validationf("malformed %s %q, want %s", field, value, models.DateLayout)
	}
	return t, nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
