// Package balance computes reconciliation reports by folding the four
// transaction streams into a single ledger view.
package balance

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/armory/internal/domain/apperrors"
	"github.com/mamadbah2/armory/internal/domain/models"
	"github.com/mamadbah2/armory/internal/repository"
	"github.com/mamadbah2/armory/internal/service/scope"
)

// Engine folds transaction streams into balance reports. All reads are
// pure; abandoning a query mid-flight needs no rollback.
type Engine struct {
	store  repository.TransactionStore
	logger *zap.Logger
}

// NewEngine wires a balance engine over the given store.
func NewEngine(store repository.TransactionStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, logger: logger}
}

// Compute evaluates the reconciliation report for an equipment type over
// [from, to] within the authorized scope.
//
// The opening balance folds every event strictly before from; the window
// fields sum events inside the inclusive range. A transfer whose source and
// destination both fall inside the scope counts on both sides and nets to
// zero. An empty scope yields the all-zero report without touching the
// store. Negative values are never clamped: a history that went negative at
// write time surfaces as a negative number, not an error.
func (e *Engine) Compute(ctx context.Context, sc scope.Scope, equipment primitive.ObjectID, from, to time.Time) (models.BalanceReport, error) {
	if from.After(to) {
		return models.BalanceReport{}, apperrors.Validationf("fromDate %s is after toDate %s",
			from.Format(models.DateLayout), to.Format(models.DateLayout))
	}
	if sc.Empty() {
		return models.BalanceReport{}, nil
	}

	events, err := e.load(ctx, sc, equipment, to)
	if err != nil {
		return models.BalanceReport{}, err
	}

	var report models.BalanceReport
	for _, ev := range events {
		opening := ev.Date.Before(from)
		switch ev.Kind {
		case models.KindPurchase:
			if opening {
				report.OpeningBalance += ev.Quantity
			} else {
				report.Purchases += ev.Quantity
			}
		case models.KindTransfer:
			if sc.Contains(ev.ToBase) {
				if opening {
					report.OpeningBalance += ev.Quantity
				} else {
					report.TransfersIn += ev.Quantity
				}
			}
			if sc.Contains(ev.FromBase) {
				if opening {
					report.OpeningBalance -= ev.Quantity
				} else {
					report.TransfersOut += ev.Quantity
				}
			}
		case models.KindAssignment:
			// Assigned stock stays on hand; only the window metric moves.
			if !opening {
				report.Assignments += ev.Quantity
			}
		case models.KindExpenditure:
			if opening {
				report.OpeningBalance -= ev.Quantity
			} else {
				report.Expended += ev.Quantity
			}
		}
	}

	report.NetMovement = report.Purchases + report.TransfersIn - report.TransfersOut - report.Expended
	report.ClosingBalance = report.OpeningBalance + report.NetMovement
	return report, nil
}

// load fetches every event up to and including the window end. One fetch
// per stream keeps the opening and window figures consistent with each
// other within that stream.
func (e *Engine) load(ctx context.Context, sc scope.Scope, equipment primitive.ObjectID, to time.Time) ([]models.LedgerEvent, error) {
	filter := repository.TxFilter{
		AllBases:  sc.All,
		Bases:     sc.Bases,
		Equipment: equipment,
		To:        to,
	}

	purchases, err := e.store.Purchases(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load purchases: %w", err)
	}
	transfers, err := e.store.Transfers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load transfers: %w", err)
	}
	assignments, err := e.store.Assignments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	expenditures, err := e.store.Expenditures(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load expenditures: %w", err)
	}

	events := make([]models.LedgerEvent, 0, len(purchases)+len(transfers)+len(assignments)+len(expenditures))
	for _, p := range purchases {
		events = append(events, models.PurchaseEvent(p))
	}
	for _, t := range transfers {
		events = append(events, models.TransferEvent(t))
	}
	for _, a := range assignments {
		events = append(events, models.AssignmentEvent(a))
	}
	for _, x := range expenditures {
		events = append(events, models.ExpenditureEvent(x))
	}

	e.logger.Debug("ledger events loaded",
		zap.Int("purchases", len(purchases)),
		zap.Int("transfers", len(transfers)),
		zap.Int("assignments", len(assignments)),
		zap.Int("expenditures", len(expenditures)))

	return events, nil
}
