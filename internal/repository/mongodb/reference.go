package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/armory/internal/domain/apperrors"
	"github.com/mamadbah2/armory/internal/domain/models"
)

// CreateBase registers a new base in the directory.
func (s *Store) CreateBase(ctx context.Context, b models.Base) (models.Base, error) {
	if b.Name == "" {
		return models.Base{}, apperrors.Validationf("base name must not be empty")
	}
	b.ID = primitive.NewObjectID()
	b.CreatedAt = time.Now().UTC()
	if _, err := s.coll(collBases).InsertOne(ctx, b); err != nil {
		return models.Base{}, storeErr("insert base", err)
	}
	return b, nil
}

// CreateEquipment registers a new equipment type in the directory.
func (s *Store) CreateEquipment(ctx context.Context, e models.Equipment) (models.Equipment, error) {
	if e.Name == "" {
		return models.Equipment{}, apperrors.Validationf("equipment name must not be empty")
	}
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now().UTC()
	if _, err := s.coll(collEquipments).InsertOne(ctx, e); err != nil {
		return models.Equipment{}, storeErr("insert equipment", err)
	}
	return e, nil
}

// Bases lists every base, oldest first.
func (s *Store) Bases(ctx context.Context) ([]models.Base, error) {
	sort := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll(collBases).Find(ctx, bson.M{}, sort)
	if err != nil {
		return nil, storeErr("find bases", err)
	}
	var out []models.Base
	if err := cur.All(ctx, &out); err != nil {
		return nil, storeErr("find bases", err)
	}
	return out, nil
}

// BaseByID fetches one base by identity.
func (s *Store) BaseByID(ctx context.Context, id primitive.ObjectID) (models.Base, error) {
	var b models.Base
	err := s.coll(collBases).FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Base{}, apperrors.Validationf("unknown base %s", id.Hex())
	}
	if err != nil {
		return models.Base{}, storeErr("find base", err)
	}
	return b, nil
}

// Equipments lists every equipment type, oldest first.
func (s *Store) Equipments(ctx context.Context) ([]models.Equipment, error) {
	sort := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll(collEquipments).Find(ctx, bson.M{}, sort)
	if err != nil {
		return nil, storeErr("find equipments", err)
	}
	var out []models.Equipment
	if err := cur.All(ctx, &out); err != nil {
		return nil, storeErr("find equipments", err)
	}
	return out, nil
}

// EquipmentByID fetches one equipment type by identity.
func (s *Store) EquipmentByID(ctx context.Context, id primitive.ObjectID) (models.Equipment, error) {
	var e models.Equipment
	err := s.coll(collEquipments).FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Equipment{}, apperrors.Validationf("unknown equipment %s", id.Hex())
	}
	if err != nil {
		return models.Equipment{}, storeErr("find equipment", err)
	}
	return e, nil
}

// AppendAudit records one audit entry.
func (s *Store) AppendAudit(ctx context.Context, rec models.AuditRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if _, err := s.coll(collAuditLogs).InsertOne(ctx, rec); err != nil {
		return storeErr("insert audit record", err)
	}
	return nil
}

// AuditRecords lists the audit trail, newest first.
func (s *Store) AuditRecords(ctx context.Context) ([]models.AuditRecord, error) {
	sort := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.coll(collAuditLogs).Find(ctx, bson.M{}, sort)
	if err != nil {
		return nil, storeErr("find audit records", err)
	}
	var out []models.AuditRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, storeErr("find audit records", err)
	}
	return out, nil
}

// SaveSnapshot stores one derived end-of-day position.
func (s *Store) SaveSnapshot(ctx context.Context, snap models.StockSnapshot) error {
	if snap.ID.IsZero() {
		snap.ID = primitive.NewObjectID()
	}
	if _, err := s.coll(collSnapshots).InsertOne(ctx, snap); err != nil {
		return storeErr("insert stock snapshot", err)
	}
	return nil
}
