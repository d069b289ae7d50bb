package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/armory/internal/domain/models"
)

type stubStore struct {
	records []models.AuditRecord
	fail    bool
}

func (s *stubStore) AppendAudit(ctx context.Context, rec models.AuditRecord) error {
	if s.fail {
		return errors.New("store down")
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *stubStore) AuditRecords(ctx context.Context) ([]models.AuditRecord, error) {
	return s.records, nil
}

type stubForwarder struct {
	forwarded []models.AuditRecord
	fail      bool
}

func (f *stubForwarder) Forward(ctx context.Context, rec models.AuditRecord) error {
	if f.fail {
		return errors.New("collector unreachable")
	}
	f.forwarded = append(f.forwarded, rec)
	return nil
}

func TestRecordPersistsAndForwards(t *testing.T) {
	store := &stubStore{}
	relay := &stubForwarder{}
	svc := NewService(store, relay, nil)

	svc.Record(context.Background(), models.AuditRecord{User: "hq", Action: "Purchase created", Details: "qty 5"})

	if len(store.records) != 1 {
		t.Fatalf("stored %d records, want 1", len(store.records))
	}
	if len(relay.forwarded) != 1 {
		t.Fatalf("forwarded %d records, want 1", len(relay.forwarded))
	}
	if store.records[0].Timestamp.IsZero() {
		t.Error("missing timestamp was not filled in")
	}
}

func TestRecordSurvivesStoreFailure(t *testing.T) {
	store := &stubStore{fail: true}
	relay := &stubForwarder{}
	svc := NewService(store, relay, nil)

	// Must not panic or propagate; the record still reaches the relay.
	svc.Record(context.Background(), models.AuditRecord{User: "hq", Action: "Transfer created"})

	if len(relay.forwarded) != 1 {
		t.Errorf("forwarded %d records, want 1 despite store failure", len(relay.forwarded))
	}
}

func TestRecordSurvivesForwardFailure(t *testing.T) {
	store := &stubStore{}
	relay := &stubForwarder{fail: true}
	svc := NewService(store, relay, nil)

	svc.Record(context.Background(), models.AuditRecord{User: "hq", Action: "Expenditure created"})

	if len(store.records) != 1 {
		t.Errorf("stored %d records, want 1 despite forward failure", len(store.records))
	}
}

func TestRecordWithoutRelay(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, nil, nil)

	svc.Record(context.Background(), models.AuditRecord{
		User:      "hq",
		Action:    "Assignment created",
		Timestamp: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC),
	})

	if len(store.records) != 1 {
		t.Fatalf("stored %d records, want 1", len(store.records))
	}
	if !store.records[0].Timestamp.Equal(time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)) {
		t.Error("explicit timestamp was overwritten")
	}
}
