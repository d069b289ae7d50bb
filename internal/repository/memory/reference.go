package memory

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

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
	s.refMu.Lock()
	s.bases[b.ID] = b
	s.refMu.Unlock()
	return b, nil
}

// CreateEquipment registers a new equipment type in the directory.
func (s *Store) CreateEquipment(ctx context.Context, e models.Equipment) (models.Equipment, error) {
	if e.Name == "" {
		return models.Equipment{}, apperrors.Validationf("equipment name must not be empty")
	}
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now().UTC()
	s.refMu.Lock()
	s.equipments[e.ID] = e
	s.refMu.Unlock()
	return e, nil
}

// Bases lists every base, oldest first.
func (s *Store) Bases(ctx context.Context) ([]models.Base, error) {
	s.refMu.RLock()
	out := make([]models.Base, 0, len(s.bases))
	for _, b := range s.bases {
		out = append(out, b)
	}
	s.refMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// BaseByID fetches one base by identity.
func (s *Store) BaseByID(ctx context.Context, id primitive.ObjectID) (models.Base, error) {
	s.refMu.RLock()
	b, ok := s.bases[id]
	s.refMu.RUnlock()
	if !ok {
		return models.Base{}, apperrors.Validationf("unknown base %s", id.Hex())
	}
	return b, nil
}

// Equipments lists every equipment type, oldest first.
func (s *Store) Equipments(ctx context.Context) ([]models.Equipment, error) {
	s.refMu.RLock()
	out := make([]models.Equipment, 0, len(s.equipments))
	for _, e := range s.equipments {
		out = append(out, e)
	}
	s.refMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// EquipmentByID fetches one equipment type by identity.
func (s *Store) EquipmentByID(ctx context.Context, id primitive.ObjectID) (models.Equipment, error) {
	s.refMu.RLock()
	e, ok := s.equipments[id]
	s.refMu.RUnlock()
	if !ok {
		return models.Equipment{}, apperrors.Validationf("unknown equipment %s", id.Hex())
	}
	return e, nil
}

// AppendAudit records one audit entry.
func (s *Store) AppendAudit(ctx context.Context, rec models.AuditRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	s.auditMu.Lock()
	s.audit = append(s.audit, rec)
	s.auditMu.Unlock()
	return nil
}

// AuditRecords lists the audit trail, newest first.
func (s *Store) AuditRecords(ctx context.Context) ([]models.AuditRecord, error) {
	s.auditMu.Lock()
	out := make([]models.AuditRecord, len(s.audit))
	copy(out, s.audit)
	s.auditMu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// SaveSnapshot stores one derived end-of-day position.
func (s *Store) SaveSnapshot(ctx context.Context, snap models.StockSnapshot) error {
	if snap.ID.IsZero() {
		snap.ID = primitive.NewObjectID()
	}
	s.snapMu.Lock()
	s.snapshots = append(s.snapshots, snap)
	s.snapMu.Unlock()
	return nil
}

// Snapshots returns the captured snapshots in insertion order. Used by tests
// and memory-backed deployments to inspect the job output.
func (s *Store) Snapshots() []models.StockSnapshot {
	s.snapMu.Lock()
	out := make([]models.StockSnapshot, len(s.snapshots))
	copy(out, s.snapshots)
	s.snapMu.Unlock()
	return out
}
