// Package mongodb implements the Store contracts on MongoDB. Every
// transaction is a single document insert, so appends are atomic per record
// and concurrent writers never overwrite each other.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/armory/internal/domain/apperrors"
	"github.com/mamadbah2/armory/internal/domain/models"
	"github.com/mamadbah2/armory/internal/repository"
)

const (
	collBases        = "bases"
	collEquipments   = "equipments"
	collPurchases    = "purchases"
	collTransfers    = "transfers"
	collAssignments  = "assignments"
	collExpenditures = "expenditures"
	collAuditLogs    = "audit_logs"
	collSnapshots    = "stock_snapshots"
)

// Store is a MongoDB backed implementation of repository.Store.
type Store struct {
	client *mongo.Client
	dbName string
}

var _ repository.Store = (*Store)(nil)

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, uri string, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, dbName: dbName}, nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

// storeErr translates a driver failure into the shared taxonomy. Anything
// that stops the durability layer from answering is retryable.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return apperrors.Unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Store) refExists(ctx context.Context, coll string, id primitive.ObjectID) (bool, error) {
	n, err := s.coll(coll).CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, storeErr(fmt.Sprintf("lookup %s", coll), err)
	}
	return n > 0, nil
}

func (s *Store) checkRefs(ctx context.Context, base, equipment primitive.ObjectID) error {
	ok, err := s.refExists(ctx, collBases, base)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Validationf("unknown base %s", base.Hex())
	}
	ok, err = s.refExists(ctx, collEquipments, equipment)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Validationf("unknown equipment %s", equipment.Hex())
	}
	return nil
}

// AppendPurchase validates and persists one purchase record.
func (s *Store) AppendPurchase(ctx context.Context, p models.Purchase) (models.Purchase, error) {
	if p.Quantity <= 0 {
		return models.Purchase{}, apperrors.Validationf("quantity must be a positive integer")
	}
	if err := s.checkRefs(ctx, p.Base, p.Equipment); err != nil {
		return models.Purchase{}, err
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	if _, err := s.coll(collPurchases).InsertOne(ctx, p); err != nil {
		return models.Purchase{}, storeErr("insert purchase", err)
	}
	return p, nil
}

// AppendTransfer validates and persists one transfer record. Both legs live
// in the same document and commit atomically.
func (s *Store) AppendTransfer(ctx context.Context, t models.Transfer) (models.Transfer, error) {
	if t.Quantity <= 0 {
		return models.Transfer{}, apperrors.Validationf("quantity must be a positive integer")
	}
	if t.FromBase == t.ToBase {
		return models.Transfer{}, apperrors.Validationf("source and destination base must differ")
	}
	ok, err := s.refExists(ctx, collBases, t.FromBase)
	if err != nil {
		return models.Transfer{}, err
	}
	if !ok {
		return models.Transfer{}, apperrors.Validationf("unknown base %s", t.FromBase.Hex())
	}
	if err := s.checkRefs(ctx, t.ToBase, t.Equipment); err != nil {
		return models.Transfer{}, err
	}
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now().UTC()
	if _, err := s.coll(collTransfers).InsertOne(ctx, t); err != nil {
		return models.Transfer{}, storeErr("insert transfer", err)
	}
	return t, nil
}

// AppendAssignment validates and persists one assignment record.
func (s *Store) AppendAssignment(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	if a.Quantity <= 0 {
		return models.Assignment{}, apperrors.Validationf("quantity must be a positive integer")
	}
	if err := s.checkRefs(ctx, a.Base, a.Equipment); err != nil {
		return models.Assignment{}, err
	}
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()
	if _, err := s.coll(collAssignments).InsertOne(ctx, a); err != nil {
		return models.Assignment{}, storeErr("insert assignment", err)
	}
	return a, nil
}

// AppendExpenditure validates and persists one expenditure record.
func (s *Store) AppendExpenditure(ctx context.Context, e models.Expenditure) (models.Expenditure, error) {
	if e.Quantity <= 0 {
		return models.Expenditure{}, apperrors.Validationf("quantity must be a positive integer")
	}
	if err := s.checkRefs(ctx, e.Base, e.Equipment); err != nil {
		return models.Expenditure{}, err
	}
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now().UTC()
	if _, err := s.coll(collExpenditures).InsertOne(ctx, e); err != nil {
		return models.Expenditure{}, storeErr("insert expenditure", err)
	}
	return e, nil
}

// txSort keeps query results deterministic: effective date ascending with
// insertion order (_id) breaking ties.
var txSort = bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}

func dateBounds(f repository.TxFilter) bson.M {
	bounds := bson.M{}
	if !f.From.IsZero() {
		bounds["$gte"] = f.From
	}
	if !f.To.IsZero() {
		bounds["$lte"] = f.To
	}
	return bounds
}

func singleBaseFilter(f repository.TxFilter) bson.M {
	q := bson.M{}
	if !f.AllBases {
		q["base"] = bson.M{"$in": f.Bases}
	}
	if !f.Equipment.IsZero() {
		q["equipment"] = f.Equipment
	}
	if bounds := dateBounds(f); len(bounds) > 0 {
		q["date"] = bounds
	}
	return q
}

func transferFilter(f repository.TxFilter) bson.M {
	q := bson.M{}
	if !f.AllBases {
		q["$or"] = bson.A{
			bson.M{"from_base": bson.M{"$in": f.Bases}},
			bson.M{"to_base": bson.M{"$in": f.Bases}},
		}
	}
	if !f.Equipment.IsZero() {
		q["equipment"] = f.Equipment
	}
	if bounds := dateBounds(f); len(bounds) > 0 {
		q["date"] = bounds
	}
	return q
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, op string) ([]T, error) {
	cur, err := coll.Find(ctx, filter, options.Find().SetSort(txSort))
	if err != nil {
		return nil, storeErr(op, err)
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, storeErr(op, err)
	}
	return out, nil
}

// Purchases returns purchases matching the filter.
func (s *Store) Purchases(ctx context.Context, f repository.TxFilter) ([]models.Purchase, error) {
	return findAll[models.Purchase](ctx, s.coll(collPurchases), singleBaseFilter(f), "find purchases")
}

// Transfers returns transfers with either leg in the filter's base scope.
func (s *Store) Transfers(ctx context.Context, f repository.TxFilter) ([]models.Transfer, error) {
	return findAll[models.Transfer](ctx, s.coll(collTransfers), transferFilter(f), "find transfers")
}

// Assignments returns assignments matching the filter.
func (s *Store) Assignments(ctx context.Context, f repository.TxFilter) ([]models.Assignment, error) {
	return findAll[models.Assignment](ctx, s.coll(collAssignments), singleBaseFilter(f), "find assignments")
}

// Expenditures returns expenditures matching the filter.
func (s *Store) Expenditures(ctx context.Context, f repository.TxFilter) ([]models.Expenditure, error) {
	return findAll[models.Expenditure](ctx, s.coll(collExpenditures), singleBaseFilter(f), "find expenditures")
}
