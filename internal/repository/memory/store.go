// Package memory provides an in-process Store implementation. It backs the
// package tests and single-node deployments running with STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/armory/internal/domain/apperrors"
	"github.com/mamadbah2/armory/internal/domain/models"
	"github.com/mamadbah2/armory/internal/repository"
)

// pairKey addresses the stream stripe for single-base transaction kinds.
type pairKey struct {
	base      primitive.ObjectID
	equipment primitive.ObjectID
}

// routeKey addresses the stripe holding transfers for one (source,
// destination, equipment) route. Each transfer lives in exactly one stripe,
// so a scope covering both legs still sees a single record.
type routeKey struct {
	from      primitive.ObjectID
	to        primitive.ObjectID
	equipment primitive.ObjectID
}

type stripe[T any] struct {
	mu      sync.Mutex
	records []seqRecord[T]
}

type seqRecord[T any] struct {
	rec T
	seq uint64
}

func (s *stripe[T]) append(rec T, seq uint64) {
	s.mu.Lock()
	s.records = append(s.records, seqRecord[T]{rec: rec, seq: seq})
	s.mu.Unlock()
}

func (s *stripe[T]) snapshot() []seqRecord[T] {
	s.mu.Lock()
	out := make([]seqRecord[T], len(s.records))
	copy(out, s.records)
	s.mu.Unlock()
	return out
}

// Store keeps every stream in per-entity stripes so concurrent appends to
// unrelated base/equipment pairs never contend on a shared lock. A global
// sequence counter makes query ordering deterministic: effective date
// ascending, insertion order as tiebreak.
type Store struct {
	seq atomic.Uint64

	refMu      sync.RWMutex
	bases      map[primitive.ObjectID]models.Base
	equipments map[primitive.ObjectID]models.Equipment

	dirMu        sync.Mutex
	purchases    map[pairKey]*stripe[models.Purchase]
	assignments  map[pairKey]*stripe[models.Assignment]
	expenditures map[pairKey]*stripe[models.Expenditure]
	transfers    map[routeKey]*stripe[models.Transfer]

	auditMu sync.Mutex
	audit   []models.AuditRecord

	snapMu    sync.Mutex
	snapshots []models.StockSnapshot
}

var _ repository.Store = (*Store)(nil)

// NewStore builds an empty in-memory store.
func NewStore() *Store {
	return &Store{
		bases:        make(map[primitive.ObjectID]models.Base),
		equipments:   make(map[primitive.ObjectID]models.Equipment),
		purchases:    make(map[pairKey]*stripe[models.Purchase]),
		assignments:  make(map[pairKey]*stripe[models.Assignment]),
		expenditures: make(map[pairKey]*stripe[models.Expenditure]),
		transfers:    make(map[routeKey]*stripe[models.Transfer]),
	}
}

func (s *Store) knownBase(id primitive.ObjectID) bool {
	s.refMu.RLock()
	_, ok := s.bases[id]
	s.refMu.RUnlock()
	return ok
}

func (s *Store) knownEquipment(id primitive.ObjectID) bool {
	s.refMu.RLock()
	_, ok := s.equipments[id]
	s.refMu.RUnlock()
	return ok
}

func (s *Store) checkRefs(base, equipment primitive.ObjectID) error {
	if !s.knownBase(base) {
		return apperrors.Validationf("unknown base %s", base.Hex())
	}
	if !s.knownEquipment(equipment) {
		return apperrors.Validationf("unknown equipment %s", equipment.Hex())
	}
	return nil
}

func purchaseStripe(s *Store, k pairKey) *stripe[models.Purchase] {
	s.dirMu.Lock()
	defer s.dirMu.Unlock()
	st, ok := s.purchases[k]
	if !ok {
		st = &stripe[models.Purchase]{}
		s.purchases[k] = st
	}
	return st
}

func assignmentStripe(s *Store, k pairKey) *stripe[models.Assignment] {
	s.dirMu.Lock()
	defer s.dirMu.Unlock()
	st, ok := s.assignments[k]
	if !ok {
		st = &stripe[models.Assignment]{}
		s.assignments[k] = st
	}
	return st
}

func expenditureStripe(s *Store, k pairKey) *stripe[models.Expenditure] {
	s.dirMu.Lock()
	defer s.dirMu.Unlock()
	st, ok := s.expenditures[k]
	if !ok {
		st = &stripe[models.Expenditure]{}
		s.expenditures[k] = st
	}
	return st
}

func transferStripe(s *Store, k routeKey) *stripe[models.Transfer] {
	s.dirMu.Lock()
	defer s.dirMu.Unlock()
	st, ok := s.transfers[k]
	if !ok {
		st = &stripe[models.Transfer]{}
		s.transfers[k] = st
	}
	return st
}

// AppendPurchase validates and persists one purchase record.
func (s *Store) AppendPurchase(ctx context.Context, p models.Purchase) (models.Purchase, error) {
	if p.Quantity <= 0 {
		return models.Purchase{}, apperrors.Validationf("quantity must be a positive integer")
	}
	if err := s.checkRefs(p.Base, p.Equipment); err != nil {
		return models.Purchase{}, err
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	purchaseStripe(s, pairKey{base: p.Base, equipment: p.Equipment}).append(p, s.seq.Add(1))
	return p, nil
}

// AppendTransfer validates and persists one transfer record.
func (s *Store) AppendTransfer(ctx context.Context, t models.Transfer) (models.Transfer, error) {
	if t.Quantity <= 0 {
		return models.Transfer{}, apperrors.Validationf("quantity must be a positive integer")
	}
	if t.FromBase == t.ToBase {
		return models.Transfer{}, apperrors.Validationf("source and destination base must differ")
	}
	if !s.knownBase(t.FromBase) {
		return models.Transfer{}, apperrors.Validationf("unknown base %s", t.FromBase.Hex())
	}
	if err := s.checkRefs(t.ToBase, t.Equipment); err != nil {
		return models.Transfer{}, err
	}
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now().UTC()
	transferStripe(s, routeKey{from: t.FromBase, to: t.ToBase, equipment: t.Equipment}).append(t, s.seq.Add(1))
	return t, nil
}

// AppendAssignment validates and persists one assignment record.
func (s *Store) AppendAssignment(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	if a.Quantity <= 0 {
		return models.Assignment{}, apperrors.Validationf("quantity must be a positive integer")
	}
	if err := s.checkRefs(a.Base, a.Equipment); err != nil {
		return models.Assignment{}, err
	}
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()
	assignmentStripe(s, pairKey{base: a.Base, equipment: a.Equipment}).append(a, s.seq.Add(1))
	return a, nil
}

// AppendExpenditure validates and persists one expenditure record.
func (s *Store) AppendExpenditure(ctx context.Context, e models.Expenditure) (models.Expenditure, error) {
	if e.Quantity <= 0 {
		return models.Expenditure{}, apperrors.Validationf("quantity must be a positive integer")
	}
	if err := s.checkRefs(e.Base, e.Equipment); err != nil {
		return models.Expenditure{}, err
	}
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now().UTC()
	expenditureStripe(s, pairKey{base: e.Base, equipment: e.Equipment}).append(e, s.seq.Add(1))
	return e, nil
}

// Purchases returns purchases matching the filter in deterministic order.
func (s *Store) Purchases(ctx context.Context, f repository.TxFilter) ([]models.Purchase, error) {
	s.dirMu.Lock()
	stripes := make([]*stripe[models.Purchase], 0, len(s.purchases))
	for k, st := range s.purchases {
		if f.MatchesBase(k.base) && f.MatchesEquipment(k.equipment) {
			stripes = append(stripes, st)
		}
	}
	s.dirMu.Unlock()

	var matched []seqRecord[models.Purchase]
	for _, st := range stripes {
		for _, r := range st.snapshot() {
			if f.MatchesDate(r.rec.Date) {
				matched = append(matched, r)
			}
		}
	}
	sortRecords(matched, func(p models.Purchase) time.Time { return p.Date })
	out := make([]models.Purchase, len(matched))
	for i, r := range matched {
		out[i] = r.rec
	}
	return out, nil
}

// Transfers returns transfers with either leg in the filter's base scope.
func (s *Store) Transfers(ctx context.Context, f repository.TxFilter) ([]models.Transfer, error) {
	s.dirMu.Lock()
	stripes := make([]*stripe[models.Transfer], 0, len(s.transfers))
	for k, st := range s.transfers {
		if (f.MatchesBase(k.from) || f.MatchesBase(k.to)) && f.MatchesEquipment(k.equipment) {
			stripes = append(stripes, st)
		}
	}
	s.dirMu.Unlock()

	var matched []seqRecord[models.Transfer]
	for _, st := range stripes {
		for _, r := range st.snapshot() {
			if f.MatchesDate(r.rec.Date) {
				matched = append(matched, r)
			}
		}
	}
	sortRecords(matched, func(t models.Transfer) time.Time { return t.Date })
	out := make([]models.Transfer, len(matched))
	for i, r := range matched {
		out[i] = r.rec
	}
	return out, nil
}

// Assignments returns assignments matching the filter in deterministic order.
func (s *Store) Assignments(ctx context.Context, f repository.TxFilter) ([]models.Assignment, error) {
	s.dirMu.Lock()
	stripes := make([]*stripe[models.Assignment], 0, len(s.assignments))
	for k, st := range s.assignments {
		if f.MatchesBase(k.base) && f.MatchesEquipment(k.equipment) {
			stripes = append(stripes, st)
		}
	}
	s.dirMu.Unlock()

	var matched []seqRecord[models.Assignment]
	for _, st := range stripes {
		for _, r := range st.snapshot() {
			if f.MatchesDate(r.rec.Date) {
				matched = append(matched, r)
			}
		}
	}
	sortRecords(matched, func(a models.Assignment) time.Time { return a.Date })
	out := make([]models.Assignment, len(matched))
	for i, r := range matched {
		out[i] = r.rec
	}
	return out, nil
}

// Expenditures returns expenditures matching the filter in deterministic order.
func (s *Store) Expenditures(ctx context.Context, f repository.TxFilter) ([]models.Expenditure, error) {
	s.dirMu.Lock()
	stripes := make([]*stripe[models.Expenditure], 0, len(s.expenditures))
	for k, st := range s.expenditures {
		if f.MatchesBase(k.base) && f.MatchesEquipment(k.equipment) {
			stripes = append(stripes, st)
		}
	}
	s.dirMu.Unlock()

	var matched []seqRecord[models.Expenditure]
	for _, st := range stripes {
		for _, r := range st.snapshot() {
			if f.MatchesDate(r.rec.Date) {
				matched = append(matched, r)
			}
		}
	}
	sortRecords(matched, func(e models.Expenditure) time.Time { return e.Date })
	out := make([]models.Expenditure, len(matched))
	for i, r := range matched {
		out[i] = r.rec
	}
	return out, nil
}

func sortRecords[T any](recs []seqRecord[T], date func(T) time.Time) {
	sort.Slice(recs, func(i, j int) bool {
		di, dj := date(recs[i].rec), date(recs[j].rec)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return recs[i].seq < recs[j].seq
	})
}
