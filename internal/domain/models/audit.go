package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditRecord captures one mutation for the audit trail. Records are
// append-only and written after the mutation is durably committed.
type AuditRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User      string             `bson:"user" json:"user"`
	Action    string             `bson:"action" json:"action"`
	Details   string             `bson:"details" json:"details"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
