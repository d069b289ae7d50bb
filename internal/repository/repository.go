// Package repository declares the storage contracts implemented by the
// MongoDB and in-memory backends.
package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/armory/internal/domain/models"
)

// TxFilter restricts a stream query. A zero From or To leaves that side of
// the date range unbounded; bounds are inclusive. AllBases must be set
// explicitly to read across every base — an empty Bases slice without it
// matches nothing.
type TxFilter struct {
	AllBases  bool
	Bases     []primitive.ObjectID
	Equipment primitive.ObjectID // zero matches any equipment
	From      time.Time
	To        time.Time
}

// MatchesBase reports whether the filter admits records at the given base.
func (f TxFilter) MatchesBase(id primitive.ObjectID) bool {
	if f.AllBases {
		return true
	}
	for _, b := range f.Bases {
		if b == id {
			return true
		}
	}
	return false
}

// MatchesEquipment reports whether the filter admits the given equipment.
func (f TxFilter) MatchesEquipment(id primitive.ObjectID) bool {
	return f.Equipment.IsZero() || f.Equipment == id
}

// MatchesDate reports whether the effective date falls inside the bounds.
func (f TxFilter) MatchesDate(d time.Time) bool {
	if !f.From.IsZero() && d.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && d.After(f.To) {
		return false
	}
	return true
}

// TransactionStore persists the four append-only streams. Appends validate
// quantity, base/equipment references and (for transfers) distinct legs
// before writing, and fail with a ValidationError otherwise. Queries return
// records ordered by effective date ascending, insertion order as tiebreak.
// Transfers match a filter when either leg touches a base in scope.
type TransactionStore interface {
	AppendPurchase(ctx context.Context, p models.Purchase) (models.Purchase, error)
	AppendTransfer(ctx context.Context, t models.Transfer) (models.Transfer, error)
	AppendAssignment(ctx context.Context, a models.Assignment) (models.Assignment, error)
	AppendExpenditure(ctx context.Context, e models.Expenditure) (models.Expenditure, error)

	Purchases(ctx context.Context, f TxFilter) ([]models.Purchase, error)
	Transfers(ctx context.Context, f TxFilter) ([]models.Transfer, error)
	Assignments(ctx context.Context, f TxFilter) ([]models.Assignment, error)
	Expenditures(ctx context.Context, f TxFilter) ([]models.Expenditure, error)
}

// ReferenceStore holds the base and equipment directories transactions
// reference. Entries are created once and never edited.
type ReferenceStore interface {
	CreateBase(ctx context.Context, b models.Base) (models.Base, error)
	CreateEquipment(ctx context.Context, e models.Equipment) (models.Equipment, error)
	Bases(ctx context.Context) ([]models.Base, error)
	BaseByID(ctx context.Context, id primitive.ObjectID) (models.Base, error)
	Equipments(ctx context.Context) ([]models.Equipment, error)
	EquipmentByID(ctx context.Context, id primitive.ObjectID) (models.Equipment, error)
}

// AuditStore persists the audit trail. Listing returns newest first.
type AuditStore interface {
	AppendAudit(ctx context.Context, rec models.AuditRecord) error
	AuditRecords(ctx context.Context) ([]models.AuditRecord, error)
}

// SnapshotStore persists derived end-of-day positions.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, s models.StockSnapshot) error
}

// Store is the full surface a backend provides.
type Store interface {
	TransactionStore
	ReferenceStore
	AuditStore
	SnapshotStore
}
