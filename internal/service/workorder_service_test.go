package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/config"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/repository"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupWorkOrderTest(t *testing.T) (*gorm.DB, *WorkOrderService, *SubmissionService) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	woRepo := repository.NewWorkOrderRepository(db)
	subRepo := repository.NewSubmissionRepository(db)
	lineRepo := repository.NewLineRepository(db)

	cfg := &config.Config{}
	cfg.Tracker.TargetCutoffHour = 10

	logger := zap.NewNop()
	woSvc := NewWorkOrderService(woRepo, subRepo, lineRepo, nil, logger)
	subSvc := NewSubmissionService(subRepo, woRepo, nil, cfg, logger)
	return db, woSvc, subSvc
}

// TestWorkOrderSummaryPairsTargetAndActual submits a sewing plan and actual
// for the same line and day and checks the derived per-hour variance.
func TestWorkOrderSummaryPairsTargetAndActual(t *testing.T) {
	ctx := context.Background()
	db, woSvc, subSvc := setupWorkOrderTest(t)

	wo := testutil.SeedWorkOrder(t, db, "aaaaaaaa-0000-0000-0000-000000000001", "PO-5001", 1000)
	testutil.SeedLine(t, db, "line-7", "Line 7", "sewing")

	base := SubmissionRequest{ProductionDate: "2026-08-20", LineID: "line-7", WorkOrderID: wo.ID}

	if _, err := subSvc.CreateSewingTarget(ctx, SewingTargetRequest{
		SubmissionRequest: base,
		PerHourTarget:     50,
		ManpowerPlanned:   24,
		HoursPlanned:      8,
	}, "planner"); err != nil {
		t.Fatalf("create sewing target: %v", err)
	}
	if _, err := subSvc.CreateSewingActual(ctx, SewingActualRequest{
		SubmissionRequest: base,
		GoodToday:         380,
		RejectToday:       12,
		ReworkToday:       5,
		HoursActual:       8,
		ManpowerActual:    22,
	}, "line-lead"); err != nil {
		t.Fatalf("create sewing actual: %v", err)
	}

	summary, err := woSvc.GetSummary(ctx, wo.ID, nil, nil)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if len(summary.Rows) != 1 {
		t.Fatalf("expected 1 merged row, got %d", len(summary.Rows))
	}

	row := summary.Rows[0]
	var found bool
	for _, v := range row.Variances {
		if v.Name != "per_hour" {
			continue
		}
		found = true
		if !v.Known {
			t.Error("per_hour variance should be known when both sides exist")
		}
		// 380/8 = 47.5 against a plan of 50
		if v.Delta != -2.5 {
			t.Errorf("per_hour delta = %v, want -2.5", v.Delta)
		}
		if v.FormatDelta() != "-2.50" {
			t.Errorf("formatted delta = %q, want -2.50", v.FormatDelta())
		}
	}
	if !found {
		t.Fatalf("per_hour variance missing, got %+v", row.Variances)
	}

	if summary.Quality.TotalOutput != 380 {
		t.Errorf("total output = %v, want 380", summary.Quality.TotalOutput)
	}
	if summary.Quality.TotalReject != 12 {
		t.Errorf("total reject = %v, want 12", summary.Quality.TotalReject)
	}
	if !strings.Contains(row.DisplayLabel, "Line 7") {
		t.Errorf("display label %q should use the line name", row.DisplayLabel)
	}
}

// TestWorkOrderSummaryUnmatchedActual checks an actual without a plan still
// shows up, with unknown variances rather than zeros.
func TestWorkOrderSummaryUnmatchedActual(t *testing.T) {
	ctx := context.Background()
	db, woSvc, subSvc := setupWorkOrderTest(t)

	wo := testutil.SeedWorkOrder(t, db, "aaaaaaaa-0000-0000-0000-000000000002", "PO-5002", 500)
	testutil.SeedLine(t, db, "line-3", "Line 3", "sewing")

	if _, err := subSvc.CreateSewingActual(ctx, SewingActualRequest{
		SubmissionRequest: SubmissionRequest{ProductionDate: "2026-08-21", LineID: "line-3", WorkOrderID: wo.ID},
		GoodToday:         200,
		HoursActual:       8,
	}, "line-lead"); err != nil {
		t.Fatalf("create sewing actual: %v", err)
	}

	summary, err := woSvc.GetSummary(ctx, wo.ID, nil, nil)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if len(summary.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(summary.Rows))
	}
	for _, v := range summary.Rows[0].Variances {
		if v.Known {
			t.Errorf("variance %s should be unknown without a plan", v.Name)
		}
		if v.FormatDelta() != "-" {
			t.Errorf("unknown variance renders %q, want -", v.FormatDelta())
		}
	}
}

// TestWorkOrderExtrasConsumption covers extras accounting: output beyond the
// order quantity is available for consumption, never negative, and cannot be
// overdrawn.
func TestWorkOrderExtrasConsumption(t *testing.T) {
	ctx := context.Background()
	db, woSvc, subSvc := setupWorkOrderTest(t)

	wo := testutil.SeedWorkOrder(t, db, "aaaaaaaa-0000-0000-0000-000000000003", "PO-5003", 300)
	testutil.SeedLine(t, db, "line-1", "Line 1", "sewing")

	if _, err := subSvc.CreateSewingActual(ctx, SewingActualRequest{
		SubmissionRequest: SubmissionRequest{ProductionDate: "2026-08-22", LineID: "line-1", WorkOrderID: wo.ID},
		GoodToday:         350,
		HoursActual:       8,
	}, "line-lead"); err != nil {
		t.Fatalf("create sewing actual: %v", err)
	}

	summary, err := woSvc.GetSummary(ctx, wo.ID, nil, nil)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary.Quality.ExtrasTotal != 50 {
		t.Fatalf("extras total = %v, want 50", summary.Quality.ExtrasTotal)
	}
	if summary.Quality.ExtrasAvailable != 50 {
		t.Fatalf("extras available = %v, want 50", summary.Quality.ExtrasAvailable)
	}

	if err := woSvc.ConsumeExtras(ctx, wo.ID, 30); err != nil {
		t.Fatalf("consume extras: %v", err)
	}
	summary, err = woSvc.GetSummary(ctx, wo.ID, nil, nil)
	if err != nil {
		t.Fatalf("get summary after consume: %v", err)
	}
	if summary.Quality.ExtrasAvailable != 20 {
		t.Fatalf("extras available after consume = %v, want 20", summary.Quality.ExtrasAvailable)
	}

	if err := woSvc.ConsumeExtras(ctx, wo.ID, 100); err == nil {
		t.Fatal("overdraw should be rejected")
	}
	if err := woSvc.ConsumeExtras(ctx, wo.ID, -5); err == nil {
		t.Fatal("negative consume should be rejected")
	}
}

// TestConsumeExtrasAtomicGuard drives the repository's conditional increment
// directly: two consumers that each saw enough headroom cannot both land.
func TestConsumeExtrasAtomicGuard(t *testing.T) {
	db, _, _ := setupWorkOrderTest(t)
	wo := testutil.SeedWorkOrder(t, db, "aaaaaaaa-0000-0000-0000-000000000005", "PO-5005", 300)
	woRepo := repository.NewWorkOrderRepository(db)

	// Both calls carry the same stale view of 50 extras total.
	if err := woRepo.AddExtrasConsumed(wo.ID, 30, 50); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if err := woRepo.AddExtrasConsumed(wo.ID, 30, 50); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second consume must be rejected by the update condition, got %v", err)
	}

	updated, err := woRepo.FindByID(wo.ID)
	if err != nil {
		t.Fatalf("reload work order: %v", err)
	}
	if updated.ExtrasConsumed != 30 {
		t.Errorf("extras consumed = %v, want 30", updated.ExtrasConsumed)
	}
}

// TestWorkOrderSummaryNotFound checks a missing work order errors out.
func TestWorkOrderSummaryNotFound(t *testing.T) {
	_, woSvc, _ := setupWorkOrderTest(t)
	if _, err := woSvc.GetSummary(context.Background(), "aaaaaaaa-0000-0000-0000-00000000dead", nil, nil); err == nil {
		t.Fatal("expected error for unknown work order")
	}
}
