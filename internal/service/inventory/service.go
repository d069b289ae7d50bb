// Package inventory owns the write paths of the ledger and the scoped list
// reads backing the transaction registers.
package inventory

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/armory/internal/domain/apperrors"
	"github.com/mamadbah2/armory/internal/domain/models"
	"github.com/mamadbah2/armory/internal/repository"
	"github.com/mamadbah2/armory/internal/service/audit"
	"github.com/mamadbah2/armory/internal/service/scope"
)

// PurchaseInput carries a purchase mutation as received on the wire.
type PurchaseInput struct {
	Base         string `json:"base"`
	Equipment    string `json:"equipment" binding:"required"`
	Quantity     int64  `json:"quantity" binding:"required"`
	PurchaseDate string `json:"purchaseDate" binding:"required"`
	Supplier     string `json:"supplier"`
}

// TransferInput carries a transfer mutation as received on the wire.
type TransferInput struct {
	FromBase     string `json:"fromBase"`
	ToBase       string `json:"toBase" binding:"required"`
	Equipment    string `json:"equipment" binding:"required"`
	Quantity     int64  `json:"quantity" binding:"required"`
	TransferDate string `json:"transferDate" binding:"required"`
}

// AssignmentInput carries an assignment mutation as received on the wire.
type AssignmentInput struct {
	Base           string `json:"base"`
	Equipment      string `json:"equipment" binding:"required"`
	Personnel      string `json:"personnel" binding:"required"`
	Quantity       int64  `json:"quantity" binding:"required"`
	AssignmentDate string `json:"assignmentDate" binding:"required"`
}

// ExpenditureInput carries an expenditure mutation as received on the wire.
type ExpenditureInput struct {
	Base            string `json:"base"`
	Equipment       string `json:"equipment" binding:"required"`
	Quantity        int64  `json:"quantity" binding:"required"`
	ExpenditureDate string `json:"expenditureDate" binding:"required"`
	Reason          string `json:"reason" binding:"required"`
}

// BaseInput carries a base creation request.
type BaseInput struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

// EquipmentInput carries an equipment creation request.
type EquipmentInput struct {
	Name      string  `json:"name" binding:"required"`
	Type      string  `json:"type"`
	UnitPrice float64 `json:"price"`
}

// Service executes ledger mutations. Every successful mutation emits exactly
// one audit record, after the durable commit; the sink never fails the
// mutation.
type Service struct {
	store  repository.TransactionStore
	refs   repository.ReferenceStore
	sink   audit.Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs the mutation service.
func NewService(store repository.TransactionStore, refs repository.ReferenceStore, sink audit.Sink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		refs:   refs,
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
}

// resolveWriteBase applies the same override rule as reads: non-Admin actors
// always write against their assigned base, whatever the request said.
func resolveWriteBase(actor models.Actor, requested string) (primitive.ObjectID, error) {
	if !actor.IsAdmin() {
		if actor.Base.IsZero() {
			return primitive.NilObjectID, apperrors.Authorizationf("actor %q has no assigned base", actor.Name)
		}
		return actor.Base, nil
	}
	if requested == "" {
		return primitive.NilObjectID, apperrors.Validationf("base is required")
	}
	id, err := primitive.ObjectIDFromHex(requested)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validationf("malformed base id %q", requested)
	}
	return id, nil
}

func parseID(field, value string) (primitive.ObjectID, error) {
	if value == "" {
		return primitive.NilObjectID, apperrors.Validationf("%s is required", field)
	}
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validationf("malformed %s %q", field, value)
	}
	return id, nil
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

func (s *Service) emit(ctx context.Context, actor models.Actor, kind models.TransactionKind, details string) {
	s.sink.Record(ctx, models.AuditRecord{
		User:      actor.Name,
		Action:    fmt.Sprintf("%s created", kind),
		Details:   details,
		Timestamp: s.now().UTC(),
	})
}

// RecordPurchase appends one purchase to the ledger.
func (s *Service) RecordPurchase(ctx context.Context, actor models.Actor, in PurchaseInput) (models.Purchase, error) {
	baseID, err := resolveWriteBase(actor, in.Base)
	if err != nil {
		return models.Purchase{}, err
	}
	equipmentID, err := parseID("equipment", in.Equipment)
	if err != nil {
		return models.Purchase{}, err
	}
	date, err := parseDate("purchaseDate", in.PurchaseDate)
	if err != nil {
		return models.Purchase{}, err
	}

	created, err := s.store.AppendPurchase(ctx, models.Purchase{
		Base:      baseID,
		Equipment: equipmentID,
		Quantity:  in.Quantity,
		Date:      date,
		Supplier:  in.Supplier,
	})
	if err != nil {
		return models.Purchase{}, err
	}

	s.emit(ctx, actor, models.KindPurchase,
		fmt.Sprintf("qty %d of equipment %s at base %s on %s",
			created.Quantity, created.Equipment.Hex(), created.Base.Hex(), created.Date.Format(models.DateLayout)))
	return created, nil
}

// RecordTransfer appends one inter-base transfer to the ledger.
func (s *Service) RecordTransfer(ctx context.Context, actor models.Actor, in TransferInput) (models.Transfer, error) {
	fromID, err := resolveWriteBase(actor, in.FromBase)
	if err != nil {
		return models.Transfer{}, err
	}
	toID, err := parseID("toBase", in.ToBase)
	if err != nil {
		return models.Transfer{}, err
	}
	equipmentID, err := parseID("equipment", in.Equipment)
	if err != nil {
		return models.Transfer{}, err
	}
	date, err := parseDate("transferDate", in.TransferDate)
	if err != nil {
		return models.Transfer{}, err
	}

	created, err := s.store.AppendTransfer(ctx, models.Transfer{
		Equipment: equipmentID,
		Quantity:  in.Quantity,
		FromBase:  fromID,
		ToBase:    toID,
		Date:      date,
	})
	if err != nil {
		return models.Transfer{}, err
	}

	s.emit(ctx, actor, models.KindTransfer,
		fmt.Sprintf("qty %d of equipment %s from base %s to base %s on %s",
			created.Quantity, created.Equipment.Hex(), created.FromBase.Hex(), created.ToBase.Hex(), created.Date.Format(models.DateLayout)))
	return created, nil
}

// RecordAssignment appends one personnel assignment to the ledger.
func (s *Service) RecordAssignment(ctx context.Context, actor models.Actor, in AssignmentInput) (models.Assignment, error) {
	baseID, err := resolveWriteBase(actor, in.Base)
	if err != nil {
		return models.Assignment{}, err
	}
	equipmentID, err := parseID("equipment", in.Equipment)
	if err != nil {
		return models.Assignment{}, err
	}
	if in.Personnel == "" {
		return models.Assignment{}, apperrors.Validationf("personnel is required")
	}
	date, err := parseDate("assignmentDate", in.AssignmentDate)
	if err != nil {
		return models.Assignment{}, err
	}

	created, err := s.store.AppendAssignment(ctx, models.Assignment{
		Base:      baseID,
		Equipment: equipmentID,
		Personnel: in.Personnel,
		Quantity:  in.Quantity,
		Date:      date,
	})
	if err != nil {
		return models.Assignment{}, err
	}

	s.emit(ctx, actor, models.KindAssignment,
		fmt.Sprintf("qty %d of equipment %s to %s at base %s on %s",
			created.Quantity, created.Equipment.Hex(), created.Personnel, created.Base.Hex(), created.Date.Format(models.DateLayout)))
	return created, nil
}

// RecordExpenditure appends one expenditure to the ledger.
func (s *Service) RecordExpenditure(ctx context.Context, actor models.Actor, in ExpenditureInput) (models.Expenditure, error) {
	baseID, err := resolveWriteBase(actor, in.Base)
	if err != nil {
		return models.Expenditure{}, err
	}
	equipmentID, err := parseID("equipment", in.Equipment)
	if err != nil {
		return models.Expenditure{}, err
	}
	if in.Reason == "" {
		return models.Expenditure{}, apperrors.Validationf("reason is required")
	}
	date, err := parseDate("expenditureDate", in.ExpenditureDate)
	if err != nil {
		return models.Expenditure{}, err
	}

	created, err := s.store.AppendExpenditure(ctx, models.Expenditure{
		Base:      baseID,
		Equipment: equipmentID,
		Quantity:  in.Quantity,
		Date:      date,
		Reason:    in.Reason,
	})
	if err != nil {
		return models.Expenditure{}, err
	}

	s.emit(ctx, actor, models.KindExpenditure,
		fmt.Sprintf("qty %d of equipment %s at base %s on %s (%s)",
			created.Quantity, created.Equipment.Hex(), created.Base.Hex(), created.Date.Format(models.DateLayout), created.Reason))
	return created, nil
}

// CreateBase registers a new base. Admin only.
func (s *Service) CreateBase(ctx context.Context, actor models.Actor, in BaseInput) (models.Base, error) {
	if !actor.IsAdmin() {
		return models.Base{}, apperrors.Authorizationf("only Admin may create bases")
	}
	created, err := s.refs.CreateBase(ctx, models.Base{Name: in.Name, Location: in.Location})
	if err != nil {
		return models.Base{}, err
	}
	s.sink.Record(ctx, models.AuditRecord{
		User:      actor.Name,
		Action:    "Base created",
		Details:   fmt.Sprintf("%s (%s)", created.Name, created.Location),
		Timestamp: s.now().UTC(),
	})
	return created, nil
}

// CreateEquipment registers a new equipment type. Admin only.
func (s *Service) CreateEquipment(ctx context.Context, actor models.Actor, in EquipmentInput) (models.Equipment, error) {
	if !actor.IsAdmin() {
		return models.Equipment{}, apperrors.Authorizationf("only Admin may create equipment")
	}
	created, err := s.refs.CreateEquipment(ctx, models.Equipment{Name: in.Name, Type: in.Type, UnitPrice: in.UnitPrice})
	if err != nil {
		return models.Equipment{}, err
	}
	s.sink.Record(ctx, models.AuditRecord{
		User:      actor.Name,
		Action:    "Equipment created",
		Details:   fmt.Sprintf("%s (%s)", created.Name, created.Type),
		Timestamp: s.now().UTC(),
	})
	return created, nil
}

// listFilter resolves the actor's scope into a dateless stream filter.
func listFilter(actor models.Actor) (repository.TxFilter, error) {
	sc, err := scope.Resolve(actor, primitive.NilObjectID)
	if err != nil {
		return repository.TxFilter{}, err
	}
	return repository.TxFilter{AllBases: sc.All, Bases: sc.Bases}, nil
}

// ListPurchases returns purchases visible to the actor.
func (s *Service) ListPurchases(ctx context.Context, actor models.Actor) ([]models.Purchase, error) {
	f, err := listFilter(actor)
	if err != nil {
		return nil, err
	}
	return s.store.Purchases(ctx, f)
}

// ListTransfers returns transfers with either leg visible to the actor.
func (s *Service) ListTransfers(ctx context.Context, actor models.Actor) ([]models.Transfer, error) {
	f, err := listFilter(actor)
	if err != nil {
		return nil, err
	}
	return s.store.Transfers(ctx, f)
}

// ListAssignments returns assignments visible to the actor.
func (s *Service) ListAssignments(ctx context.Context, actor models.Actor) ([]models.Assignment, error) {
	f, err := listFilter(actor)
	if err != nil {
		return nil, err
	}
	return s.store.Assignments(ctx, f)
}

// ListExpenditures returns expenditures visible to the actor.
func (s *Service) ListExpenditures(ctx context.Context, actor models.Actor) ([]models.Expenditure, error) {
	f, err := listFilter(actor)
	if err != nil {
		return nil, err
	}
	return s.store.Expenditures(ctx, f)
}

// ListBases returns the base directory.
func (s *Service) ListBases(ctx context.Context) ([]models.Base, error) {
	return s.refs.Bases(ctx)
}

// GetBase returns one base by id.
func (s *Service) GetBase(ctx context.Context, id string) (models.Base, error) {
	baseID, err := parseID("base", id)
	if err != nil {
		return models.Base{}, err
	}
	return s.refs.BaseByID(ctx, baseID)
}

// ListEquipments returns the equipment directory.
func (s *Service) ListEquipments(ctx context.Context) ([]models.Equipment, error) {
	return s.refs.Equipments(ctx)
}
