package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionKind tags one of the four ledger streams.
type TransactionKind string

const (
	KindPurchase    TransactionKind = "Purchase"
	KindTransfer    TransactionKind = "Transfer"
	KindAssignment  TransactionKind = "Assignment"
	KindExpenditure TransactionKind = "Expenditure"
)

// LedgerEvent is the closed variant the balance fold runs over. Exactly one
// of the base fields is meaningful per kind: Base for purchases, assignments
// and expenditures; FromBase/ToBase for transfers.
type LedgerEvent struct {
	Kind     TransactionKind
	Date     time.Time
	Quantity int64
	Base     primitive.ObjectID
	FromBase primitive.ObjectID
	ToBase   primitive.ObjectID
}

// PurchaseEvent converts a stored purchase into its fold representation.
func PurchaseEvent(p Purchase) LedgerEvent {
	return LedgerEvent{Kind: KindPurchase, Date: p.Date, Quantity: p.Quantity, Base: p.Base}
}

// TransferEvent converts a stored transfer into its fold representation.
func TransferEvent(t Transfer) LedgerEvent {
	return LedgerEvent{Kind: KindTransfer, Date: t.Date, Quantity: t.Quantity, FromBase: t.FromBase, ToBase: t.ToBase}
}

// AssignmentEvent converts a stored assignment into its fold representation.
func AssignmentEvent(a Assignment) LedgerEvent {
	return LedgerEvent{Kind: KindAssignment, Date: a.Date, Quantity: a.Quantity, Base: a.Base}
}

// ExpenditureEvent converts a stored expenditure into its fold representation.
func ExpenditureEvent(e Expenditure) LedgerEvent {
	return LedgerEvent{Kind: KindExpenditure, Date: e.Date, Quantity: e.Quantity, Base: e.Base}
}

// BalanceReport is the assembled result of a reconciliation query.
type BalanceReport struct {
	OpeningBalance int64 `json:"openingBalance"`
	Purchases      int64 `json:"purchases"`
	TransfersIn    int64 `json:"transfersIn"`
	TransfersOut   int64 `json:"transfersOut"`
	Assignments    int64 `json:"assignments"`
	Expended       int64 `json:"expended"`
	NetMovement    int64 `json:"netMovement"`
	ClosingBalance int64 `json:"closingBalance"`
}

// StockSnapshot is a derived end-of-day position for one base and equipment
// type, written by the snapshot job. Never an input to balance computation.
type StockSnapshot struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Date           time.Time          `bson:"date" json:"date"`
	Base           primitive.ObjectID `bson:"base" json:"base"`
	BaseName       string             `bson:"base_name" json:"baseName"`
	Equipment      primitive.ObjectID `bson:"equipment" json:"equipment"`
	EquipmentName  string             `bson:"equipment_name" json:"equipmentName"`
	ClosingBalance int64              `bson:"closing_balance" json:"closingBalance"`
	Assigned       int64              `bson:"assigned" json:"assigned"`
	Expended       int64              `bson:"expended" json:"expended"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
}
