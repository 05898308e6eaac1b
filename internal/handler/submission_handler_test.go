package handler

import (
	"net/http"
	"testing"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/config"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/repository"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/service"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/testutil"
	"go.uber.org/zap"
)

func setupSubmissionHandlerTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{}
	cfg.Tracker.TargetCutoffHour = 10

	subRepo := repository.NewSubmissionRepository(db)
	woRepo := repository.NewWorkOrderRepository(db)
	lineRepo := repository.NewLineRepository(db)
	logger := zap.NewNop()

	subHandler := NewSubmissionHandler(service.NewSubmissionService(subRepo, woRepo, nil, cfg, logger))
	dashHandler := NewDashboardHandler(service.NewDashboardService(subRepo, lineRepo, logger))

	router := testutil.SetupRouter()
	api := router.Group("/api/v1")
	api.POST("/submissions/sewing/targets", subHandler.CreateSewingTarget)
	api.POST("/submissions/sewing/actuals", subHandler.CreateSewingActual)
	api.GET("/dashboard/daily", dashHandler.GetDaily)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// TestSubmissionFlowsToDailyBoard posts a plan and an actual over HTTP and
// reads them back merged on the daily board.
func TestSubmissionFlowsToDailyBoard(t *testing.T) {
	env := setupSubmissionHandlerTest(t)
	wo := testutil.SeedWorkOrder(t, env.DB, "dddddddd-0000-0000-0000-000000000001", "PO-9001", 400)
	testutil.SeedLine(t, env.DB, "line-9", "Line 9", "sewing")

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/submissions/sewing/targets", map[string]interface{}{
		"production_date": "2026-08-25",
		"line_id":         "line-9",
		"work_order_id":   wo.ID,
		"per_hour_target": 45,
	}, "planner")
	if w.Code != http.StatusOK {
		t.Fatalf("create target status = %d, body %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/submissions/sewing/actuals", map[string]interface{}{
		"production_date": "2026-08-25",
		"line_id":         "line-9",
		"work_order_id":   wo.ID,
		"good_today":      320,
		"hours_actual":    8,
		"blocker": map[string]interface{}{
			"has_blocker": true,
			"description": "fabric delay",
		},
	}, "line-lead")
	if w.Code != http.StatusOK {
		t.Fatalf("create actual status = %d, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["submitted_by"].(string) != "line-lead" {
		t.Errorf("submitter should come from the X-Submitted-By header, got %v", resp["data"])
	}

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/dashboard/daily?date=2026-08-25&stage=sewing", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("daily board status = %d, body %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	board := resp["data"].(map[string]interface{})
	rows := board["rows"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("expected 1 merged row, got %d", len(rows))
	}
	row := rows[0].(map[string]interface{})
	if row["status"].(string) != "blocker" {
		t.Errorf("status = %v, want blocker", row["status"])
	}
}

// TestSubmissionHandlerValidation rejects bodies missing required fields.
func TestSubmissionHandlerValidation(t *testing.T) {
	env := setupSubmissionHandlerTest(t)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/submissions/sewing/targets", map[string]interface{}{
		"per_hour_target": 45,
	}, "planner")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 10001 {
		t.Errorf("code = %v, want 10001", resp["code"])
	}

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/dashboard/daily?date=not-a-date", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad date status = %d, want 400", w.Code)
	}
}
