package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Base is a physical installation holding inventory. Created once by an
// administrative action and immutable thereafter.
type Base struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Location  string             `bson:"location" json:"location"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Equipment is a catalogued asset type referenced by every transaction.
type Equipment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Type      string             `bson:"type" json:"type"`
	UnitPrice float64            `bson:"unit_price" json:"price"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
