package balance

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/armory/internal/domain/apperrors"
	"github.com/mamadbah2/armory/internal/domain/models"
	"github.com/mamadbah2/armory/internal/repository/memory"
	"github.com/mamadbah2/armory/internal/service/scope"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	store  *memory.Store
	engine *Engine
	b1, b2 models.Base
	rifle  models.Equipment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	b1, err := store.CreateBase(ctx, models.Base{Name: "Base One", Location: "North"})
	if err != nil {
		t.Fatalf("create base one: %v", err)
	}
	b2, err := store.CreateBase(ctx, models.Base{Name: "Base Two", Location: "South"})
	if err != nil {
		t.Fatalf("create base two: %v", err)
	}
	rifle, err := store.CreateEquipment(ctx, models.Equipment{Name: "Rifle", Type: "Weapon", UnitPrice: 1200})
	if err != nil {
		t.Fatalf("create equipment: %v", err)
	}

	return &fixture{
		store:  store,
		engine: NewEngine(store, nil),
		b1:     b1,
		b2:     b2,
		rifle:  rifle,
	}
}

// seedJanuaryHistory loads the worked example: Purchase(10, Jan 1) at B1,
// Transfer(3, B1->B2, Jan 5), Expenditure(2, B1, Jan 10).
func (f *fixture) seedJanuaryHistory(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if _, err := f.store.AppendPurchase(ctx, models.Purchase{
		Base: f.b1.ID, Equipment: f.rifle.ID, Quantity: 10, Date: day(2025, time.January, 1),
	}); err != nil {
		t.Fatalf("append purchase: %v", err)
	}
	if _, err := f.store.AppendTransfer(ctx, models.Transfer{
		Equipment: f.rifle.ID, Quantity: 3, FromBase: f.b1.ID, ToBase: f.b2.ID, Date: day(2025, time.January, 5),
	}); err != nil {
		t.Fatalf("append transfer: %v", err)
	}
	if _, err := f.store.AppendExpenditure(ctx, models.Expenditure{
		Base: f.b1.ID, Equipment: f.rifle.ID, Quantity: 2, Date: day(2025, time.January, 10), Reason: "training",
	}); err != nil {
		t.Fatalf("append expenditure: %v", err)
	}
}

func TestComputeSourceBaseWindow(t *testing.T) {
	f := newFixture(t)
	f.seedJanuaryHistory(t)

	report, err := f.engine.Compute(context.Background(), scope.Single(f.b1.ID), f.rifle.ID,
		day(2025, time.January, 1), day(2025, time.January, 31))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	want := models.BalanceReport{
		OpeningBalance: 0,
		Purchases:      10,
		TransfersOut:   3,
		Expended:       2,
		NetMovement:    5,
		ClosingBalance: 5,
	}
	if report != want {
		t.Errorf("report = %+v, want %+v", report, want)
	}
}

func TestComputeDestinationBaseWindow(t *testing.T) {
	f := newFixture(t)
	f.seedJanuaryHistory(t)

	report, err := f.engine.Compute(context.Background(), scope.Single(f.b2.ID), f.rifle.ID,
		day(2025, time.January, 1), day(2025, time.January, 31))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	want := models.BalanceReport{
		TransfersIn:    3,
		NetMovement:    3,
		ClosingBalance: 3,
	}
	if report != want {
		t.Errorf("report = %+v, want %+v", report, want)
	}
}

func TestComputeOpeningBalanceCutoff(t *testing.T) {
	f := newFixture(t)
	f.seedJanuaryHistory(t)

	// Window starts Jan 6: purchase and transfer are opening history, the
	// expenditure falls inside the window.
	report, err := f.engine.Compute(context.Background(), scope.Single(f.b1.ID), f.rifle.ID,
		day(2025, time.January, 6), day(2025, time.January, 31))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	want := models.BalanceReport{
		OpeningBalance: 7, // 10 purchased - 3 transferred out
		Expended:       2,
		NetMovement:    -2,
		ClosingBalance: 5,
	}
	if report != want {
		t.Errorf("report = %+v, want %+v", report, want)
	}
}

func TestComputeWindowStartDateIsInclusive(t *testing.T) {
	f := newFixture(t)
	f.seedJanuaryHistory(t)

	// Window starting exactly on the purchase date must count it as window
	// movement, not opening history.
	report, err := f.engine.Compute(context.Background(), scope.Single(f.b1.ID), f.rifle.ID,
		day(2025, time.January, 1), day(2025, time.January, 4))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if report.OpeningBalance != 0 {
		t.Errorf("OpeningBalance = %d, want 0", report.OpeningBalance)
	}
	if report.Purchases != 10 {
		t.Errorf("Purchases = %d, want 10", report.Purchases)
	}
	if report.TransfersOut != 0 {
		t.Errorf("TransfersOut = %d, want 0 for window ending before the transfer", report.TransfersOut)
	}
}

func TestComputeIntraScopeTransferNetsToZero(t *testing.T) {
	f := newFixture(t)
	f.seedJanuaryHistory(t)

	report, err := f.engine.Compute(context.Background(), scope.AllBases(), f.rifle.ID,
		day(2025, time.January, 1), day(2025, time.January, 31))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if report.TransfersIn != 3 || report.TransfersOut != 3 {
		t.Errorf("TransfersIn/Out = %d/%d, want 3/3", report.TransfersIn, report.TransfersOut)
	}
	if report.NetMovement != 8 { // 10 purchased - 2 expended, transfer nets out
		t.Errorf("NetMovement = %d, want 8", report.NetMovement)
	}
	if report.ClosingBalance != 8 {
		t.Errorf("ClosingBalance = %d, want 8", report.ClosingBalance)
	}
}

func TestComputeBalanceIdentity(t *testing.T) {
	f := newFixture(t)
	f.seedJanuaryHistory(t)

	scopes := map[string]scope.Scope{
		"base_one": scope.Single(f.b1.ID),
		"base_two": scope.Single(f.b2.ID),
		"fleet":    scope.AllBases(),
	}
	for name, sc := range scopes {
		t.Run(name, func(t *testing.T) {
			report, err := f.engine.Compute(context.Background(), sc, f.rifle.ID,
				day(2025, time.January, 3), day(2025, time.January, 20))
			if err != nil {
				t.Fatalf("compute: %v", err)
			}
			identity := report.OpeningBalance + report.Purchases + report.TransfersIn - report.TransfersOut - report.Expended
			if report.ClosingBalance != identity {
				t.Errorf("ClosingBalance = %d, want %d from identity", report.ClosingBalance, identity)
			}
		})
	}
}

func TestComputeIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedJanuaryHistory(t)

	first, err := f.engine.Compute(context.Background(), scope.Single(f.b1.ID), f.rifle.ID,
		day(2025, time.January, 1), day(2025, time.January, 31))
	if err != nil {
		t.Fatalf("first compute: %v", err)
	}
	second, err := f.engine.Compute(context.Background(), scope.Single(f.b1.ID), f.rifle.ID,
		day(2025, time.January, 1), day(2025, time.January, 31))
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}

	if first != second {
		t.Errorf("repeated query differs: %+v vs %+v", first, second)
	}
}

func TestComputeEmptyScopeYieldsZeroReport(t *testing.T) {
	f := newFixture(t)
	f.seedJanuaryHistory(t)

	report, err := f.engine.Compute(context.Background(), scope.Scope{}, f.rifle.ID,
		day(2025, time.January, 1), day(2025, time.January, 31))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if report != (models.BalanceReport{}) {
		t.Errorf("report = %+v, want all zeros", report)
	}
}

func TestComputeInvertedRangeFailsValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Compute(context.Background(), scope.Single(f.b1.ID), f.rifle.ID,
		day(2025, time.February, 1), day(2025, time.January, 1))
	if err == nil {
		t.Fatal("expected error for inverted date range")
	}
	if !apperrors.IsValidation(err) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestComputeAssignmentsDoNotReduceBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.store.AppendPurchase(ctx, models.Purchase{
		Base: f.b1.ID, Equipment: f.rifle.ID, Quantity: 10, Date: day(2025, time.March, 1),
	}); err != nil {
		t.Fatalf("append purchase: %v", err)
	}
	if _, err := f.store.AppendAssignment(ctx, models.Assignment{
		Base: f.b1.ID, Equipment: f.rifle.ID, Personnel: "SGT Diallo", Quantity: 4, Date: day(2025, time.March, 2),
	}); err != nil {
		t.Fatalf("append assignment: %v", err)
	}

	report, err := f.engine.Compute(ctx, scope.Single(f.b1.ID), f.rifle.ID,
		day(2025, time.March, 1), day(2025, time.March, 31))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if report.Assignments != 4 {
		t.Errorf("Assignments = %d, want 4", report.Assignments)
	}
	if report.ClosingBalance != 10 {
		t.Errorf("ClosingBalance = %d, want 10 (assignments stay on hand)", report.ClosingBalance)
	}
}

func TestComputeSurfacesNegativeHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The store does not validate stock levels at write time; a history that
	// overspends surfaces as a negative balance rather than an error.
	if _, err := f.store.AppendExpenditure(ctx, models.Expenditure{
		Base: f.b1.ID, Equipment: f.rifle.ID, Quantity: 5, Date: day(2025, time.April, 1), Reason: "loss",
	}); err != nil {
		t.Fatalf("append expenditure: %v", err)
	}

	report, err := f.engine.Compute(ctx, scope.Single(f.b1.ID), f.rifle.ID,
		day(2025, time.April, 1), day(2025, time.April, 30))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if report.ClosingBalance != -5 {
		t.Errorf("ClosingBalance = %d, want -5", report.ClosingBalance)
	}
}

func TestComputeScopesOutUnrelatedBase(t *testing.T) {
	f := newFixture(t)
	f.seedJanuaryHistory(t)

	other := primitive.NewObjectID()
	report, err := f.engine.Compute(context.Background(), scope.Single(other), f.rifle.ID,
		day(2025, time.January, 1), day(2025, time.January, 31))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if report != (models.BalanceReport{}) {
		t.Errorf("report = %+v, want all zeros for a base with no history", report)
	}
}
