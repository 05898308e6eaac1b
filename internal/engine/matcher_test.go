package engine_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/engine"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/entity"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func sewingTarget(id, line, wo, date string, perHour float64, submitted *time.Time) *entity.SewingTarget {
	return &entity.SewingTarget{
		SubmissionCore: entity.SubmissionCore{
			ID:             id,
			ProductionDate: day(date),
			LineID:         line,
			WorkOrderID:    wo,
			SubmittedAt:    submitted,
		},
		PerHourTarget: perHour,
	}
}

func sewingActual(id, line, wo, date string, good, hours float64, submitted *time.Time) *entity.SewingActual {
	return &entity.SewingActual{
		SubmissionCore: entity.SubmissionCore{
			ID:             id,
			ProductionDate: day(date),
			LineID:         line,
			WorkOrderID:    wo,
			SubmittedAt:    submitted,
		},
		GoodToday:   good,
		HoursActual: hours,
	}
}

func TestMergePairsTargetAndActual(t *testing.T) {
	records := []engine.Record{
		sewingTarget("t1", "L1", "WO-1", "2024-01-05", 50, ts("2024-01-05T08:00:00Z")),
		sewingActual("a1", "L1", "WO-1", "2024-01-05", 380, 8, ts("2024-01-05T18:00:00Z")),
	}

	merged, warnings, err := engine.Merge(records, engine.MatchLoose)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged group, got %d", len(merged))
	}

	m := merged[0]
	if m.Target == nil || m.Target.RecordID() != "t1" {
		t.Errorf("target not paired: %+v", m.Target)
	}
	if m.Actual == nil || m.Actual.RecordID() != "a1" {
		t.Errorf("actual not paired: %+v", m.Actual)
	}
	if m.Key.WorkOrderID != "" {
		t.Errorf("loose mode key must not carry work order, got %q", m.Key.WorkOrderID)
	}
	if m.LatestSubmittedAt == nil || !m.LatestSubmittedAt.Equal(*ts("2024-01-05T18:00:00Z")) {
		t.Errorf("latest submitted = %v, want actual's timestamp", m.LatestSubmittedAt)
	}
}

func TestMergeStrictSplitsByWorkOrder(t *testing.T) {
	// Same line and date but different work orders: strict mode keeps them
	// apart, loose mode pairs them.
	records := []engine.Record{
		sewingTarget("t1", "L1", "WO-1", "2024-01-05", 50, nil),
		sewingActual("a1", "L1", "WO-2", "2024-01-05", 100, 8, nil),
	}

	strict, _, err := engine.Merge(records, engine.MatchStrict)
	if err != nil {
		t.Fatalf("strict merge: %v", err)
	}
	if len(strict) != 2 {
		t.Fatalf("strict mode: expected 2 groups, got %d", len(strict))
	}

	loose, _, err := engine.Merge(records, engine.MatchLoose)
	if err != nil {
		t.Fatalf("loose merge: %v", err)
	}
	if len(loose) != 1 {
		t.Fatalf("loose mode: expected 1 group, got %d", len(loose))
	}
}

func TestMergeAtMostOnePerKey(t *testing.T) {
	// Duplicate targets for one key is upstream corruption: the most
	// recently submitted one wins and the collision is reported.
	records := []engine.Record{
		sewingTarget("t-old", "L1", "WO-1", "2024-01-05", 40, ts("2024-01-05T07:00:00Z")),
		sewingTarget("t-new", "L1", "WO-1", "2024-01-05", 50, ts("2024-01-05T08:30:00Z")),
	}

	merged, warnings, err := engine.Merge(records, engine.MatchStrict)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if len(merged) != 1 {
		t.Fatalf("expected 1 group, got %d", len(merged))
	}
	if got := merged[0].Target.RecordID(); got != "t-new" {
		t.Errorf("kept target = %q, want t-new", got)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if !errors.Is(warnings[0].Err, engine.ErrAmbiguousGroup) {
		t.Errorf("warning error = %v, want ErrAmbiguousGroup", warnings[0].Err)
	}
	if warnings[0].DroppedID != "t-old" {
		t.Errorf("dropped = %q, want t-old", warnings[0].DroppedID)
	}
}

func TestMergeCollisionTieKeepsFirstSeen(t *testing.T) {
	same := ts("2024-01-05T08:00:00Z")
	records := []engine.Record{
		sewingTarget("t-first", "L1", "WO-1", "2024-01-05", 40, same),
		sewingTarget("t-second", "L1", "WO-1", "2024-01-05", 50, same),
	}

	merged, warnings, err := engine.Merge(records, engine.MatchStrict)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if got := merged[0].Target.RecordID(); got != "t-first" {
		t.Errorf("tie-break kept %q, want first arrival t-first", got)
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(warnings))
	}
}

func TestMergeOrderedByDateDescending(t *testing.T) {
	records := []engine.Record{
		sewingTarget("t1", "L1", "WO-1", "2024-01-03", 10, nil),
		sewingTarget("t2", "L2", "WO-1", "2024-01-05", 10, nil),
		sewingTarget("t3", "L3", "WO-1", "2024-01-04", 10, nil),
		sewingTarget("t4", "L4", "WO-1", "2024-01-05", 10, nil),
	}

	merged, _, err := engine.Merge(records, engine.MatchStrict)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}

	var got []string
	for _, m := range merged {
		got = append(got, m.Target.RecordID())
	}
	// Most recent date first; same-date groups keep insertion order.
	want := []string{"t2", "t4", "t3", "t1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestMergeIdempotent(t *testing.T) {
	records := []engine.Record{
		sewingTarget("t1", "L1", "WO-1", "2024-01-05", 50, ts("2024-01-05T08:00:00Z")),
		sewingActual("a1", "L1", "WO-1", "2024-01-05", 380, 8, ts("2024-01-05T18:00:00Z")),
		sewingTarget("t2", "L2", "WO-1", "2024-01-04", 45, ts("2024-01-04T08:00:00Z")),
		sewingTarget("t2b", "L2", "WO-1", "2024-01-04", 46, ts("2024-01-04T09:00:00Z")),
	}

	first, firstWarn, err := engine.Merge(records, engine.MatchStrict)
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	second, secondWarn, err := engine.Merge(records, engine.MatchStrict)
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("merge is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if !reflect.DeepEqual(firstWarn, secondWarn) {
		t.Errorf("warnings differ between runs")
	}
}

func TestMergeRejectsMissingIdentifiers(t *testing.T) {
	missingLine := sewingTarget("bad", "", "WO-1", "2024-01-05", 50, nil)

	_, _, err := engine.Merge([]engine.Record{missingLine}, engine.MatchStrict)
	if err == nil {
		t.Fatal("expected validation error for missing line")
	}
	var verr *engine.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if verr.Field != "line_id" {
		t.Errorf("field = %q, want line_id", verr.Field)
	}
}

func TestMergeEmptyInput(t *testing.T) {
	merged, warnings, err := engine.Merge(nil, engine.MatchStrict)
	if err != nil {
		t.Fatalf("Merge(nil) error: %v", err)
	}
	if len(merged) != 0 || len(warnings) != 0 {
		t.Errorf("expected empty output, got %d groups %d warnings", len(merged), len(warnings))
	}
}
