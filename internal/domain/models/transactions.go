package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the wire format for effective dates. The ledger works at
// day granularity; all dates are stored in UTC.
const DateLayout = "2006-01-02"

// Purchase increases stock at Base for Equipment as of Date.
type Purchase struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Base      primitive.ObjectID `bson:"base" json:"base"`
	Equipment primitive.ObjectID `bson:"equipment" json:"equipment"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
	Date      time.Time          `bson:"date" json:"purchaseDate"`
	Supplier  string             `bson:"supplier,omitempty" json:"supplier,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Transfer moves stock between two distinct bases. Both legs live in one
// record, so they commit atomically and a balance query can never observe
// half a transfer.
type Transfer struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Equipment primitive.ObjectID `bson:"equipment" json:"equipment"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
	FromBase  primitive.ObjectID `bson:"from_base" json:"fromBase"`
	ToBase    primitive.ObjectID `bson:"to_base" json:"toBase"`
	Date      time.Time          `bson:"date" json:"transferDate"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Assignment allocates stock to personnel. The quantity stays on hand; it
// is reported as a usage metric, never subtracted from the balance.
type Assignment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Base      primitive.ObjectID `bson:"base" json:"base"`
	Equipment primitive.ObjectID `bson:"equipment" json:"equipment"`
	Personnel string             `bson:"personnel" json:"personnel"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
	Date      time.Time          `bson:"date" json:"assignmentDate"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Expenditure permanently removes stock at Base as of Date.
type Expenditure struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Base      primitive.ObjectID `bson:"base" json:"base"`
	Equipment primitive.ObjectID `bson:"equipment" json:"equipment"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
	Date      time.Time          `bson:"date" json:"expenditureDate"`
	Reason    string             `bson:"reason" json:"reason"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
