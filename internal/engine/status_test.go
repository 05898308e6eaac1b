package engine_test

import (
	"math"
	"testing"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/engine"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/entity"
)

func mergeOne(t *testing.T, records ...engine.Record) engine.MergedSubmission {
	t.Helper()
	merged, _, err := engine.Merge(records, engine.MatchLoose)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged group, got %d", len(merged))
	}
	return engine.Derive(merged[0])
}

// Scenario: sewing target perHourTarget=50 paired with actual
// goodToday=380 over 8 hours. Status on-time, per-hour variance -2.5.
func TestDeriveOnTimeWithVariance(t *testing.T) {
	m := mergeOne(t,
		sewingTarget("t1", "L1", "WO-1", "2024-01-05", 50, ts("2024-01-05T08:00:00Z")),
		sewingActual("a1", "L1", "WO-1", "2024-01-05", 380, 8, ts("2024-01-05T18:00:00Z")),
	)

	if m.Status != engine.StatusOnTime {
		t.Errorf("status = %q, want on_time", m.Status)
	}

	v := findVariance(t, m.Variances, "per_hour")
	if !v.Known {
		t.Fatal("per_hour variance should be known")
	}
	if v.Target != 50 {
		t.Errorf("target = %v, want 50", v.Target)
	}
	if math.Abs(v.Actual-47.5) > 1e-9 {
		t.Errorf("actual = %v, want 47.5", v.Actual)
	}
	if math.Abs(v.Delta-(-2.5)) > 1e-9 {
		t.Errorf("delta = %v, want -2.5", v.Delta)
	}
	if v.Direction != engine.DirectionShortfall {
		t.Errorf("direction = %q, want shortfall", v.Direction)
	}
	if got := v.FormatDelta(); got != "-2.50" {
		t.Errorf("FormatDelta = %q, want -2.50 (2dp for rates)", got)
	}
}

// Scenario: an actual-side blocker outranks a late target flag.
func TestDeriveBlockerBeatsLate(t *testing.T) {
	target := sewingTarget("t1", "L1", "WO-1", "2024-01-05", 50, nil)
	target.IsLate = true

	actual := sewingActual("a1", "L1", "WO-1", "2024-01-05", 100, 8, nil)
	actual.HasBlocker = true
	actual.BlockerDescription = "thread shortage"

	m := mergeOne(t, target, actual)
	if m.Status != engine.StatusBlocker {
		t.Errorf("status = %q, want blocker (blocker outranks late)", m.Status)
	}
}

func TestDeriveLateTarget(t *testing.T) {
	target := sewingTarget("t1", "L1", "WO-1", "2024-01-05", 50, nil)
	target.IsLate = true

	m := mergeOne(t, target)
	if m.Status != engine.StatusLate {
		t.Errorf("status = %q, want late", m.Status)
	}
}

func TestDeriveCuttingAcknowledgement(t *testing.T) {
	pending := &entity.CuttingActual{
		SubmissionCore: entity.SubmissionCore{
			ID: "c1", ProductionDate: day("2024-01-05"), LineID: "C1", WorkOrderID: "WO-1",
		},
		CutQty: 500,
	}
	m := mergeOne(t, pending)
	if m.Status != engine.StatusPending {
		t.Errorf("unacknowledged cutting actual: status = %q, want pending", m.Status)
	}

	acked := &entity.CuttingActual{
		SubmissionCore: entity.SubmissionCore{
			ID: "c2", ProductionDate: day("2024-01-05"), LineID: "C1", WorkOrderID: "WO-1",
		},
		CutQty:       500,
		Acknowledged: true,
	}
	m = mergeOne(t, acked)
	if m.Status != engine.StatusAcknowledged {
		t.Errorf("acknowledged cutting actual: status = %q, want acknowledged", m.Status)
	}
}

func TestDeriveTargetOnlyIsOnTime(t *testing.T) {
	m := mergeOne(t, sewingTarget("t1", "L1", "WO-1", "2024-01-05", 50, nil))
	if m.Status != engine.StatusOnTime {
		t.Errorf("status = %q, want on_time", m.Status)
	}
}

// A metric with only one side present must surface as unknown, not as a
// zero variance.
func TestVarianceUnknownWhenSideMissing(t *testing.T) {
	// Actual reported zero hours: no per-hour metric can be computed.
	m := mergeOne(t,
		sewingTarget("t1", "L1", "WO-1", "2024-01-05", 50, nil),
		sewingActual("a1", "L1", "WO-1", "2024-01-05", 380, 0, nil),
	)

	v := findVariance(t, m.Variances, "per_hour")
	if v.Known {
		t.Error("per_hour variance should be unknown when actual hours are missing")
	}
	if v.Direction != engine.DirectionNeutral {
		t.Errorf("unknown variance direction = %q, want neutral", v.Direction)
	}
	if got := v.FormatDelta(); got != "-" {
		t.Errorf("FormatDelta = %q, want - for unknown variance", got)
	}
}

func TestVarianceZeroIsNeutralButKnown(t *testing.T) {
	// 400 good over 8h = exactly the 50/h target.
	m := mergeOne(t,
		sewingTarget("t1", "L1", "WO-1", "2024-01-05", 50, nil),
		sewingActual("a1", "L1", "WO-1", "2024-01-05", 400, 8, nil),
	)

	v := findVariance(t, m.Variances, "per_hour")
	if !v.Known {
		t.Fatal("exact-zero variance must still be known")
	}
	if v.Delta != 0 {
		t.Errorf("delta = %v, want 0", v.Delta)
	}
	if v.Direction != engine.DirectionNeutral {
		t.Errorf("direction = %q, want neutral at exactly zero", v.Direction)
	}
}

func TestVarianceCountPrecision(t *testing.T) {
	target := sewingTarget("t1", "L1", "WO-1", "2024-01-05", 50, nil)
	target.ManpowerPlanned = 30
	actual := sewingActual("a1", "L1", "WO-1", "2024-01-05", 380, 8, nil)
	actual.ManpowerActual = 28

	m := mergeOne(t, target, actual)
	v := findVariance(t, m.Variances, "manpower")
	if got := v.FormatDelta(); got != "-2" {
		t.Errorf("manpower FormatDelta = %q, want -2 (0dp for counts)", got)
	}
}

func findVariance(t *testing.T, vs []engine.Variance, name string) engine.Variance {
	t.Helper()
	for _, v := range vs {
		if v.Name == name {
			return v
		}
	}
	t.Fatalf("variance %q not found in %+v", name, vs)
	return engine.Variance{}
}
