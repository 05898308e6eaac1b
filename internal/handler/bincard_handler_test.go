package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/repository"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/service"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/testutil"
	"go.uber.org/zap"
)

func setupBinCardHandlerTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	svc := service.NewBinCardService(repository.NewBinCardRepository(db), zap.NewNop())
	h := NewBinCardHandler(svc)

	router := testutil.SetupRouter()
	api := router.Group("/api/v1")
	api.POST("/bin-cards", h.Create)
	api.GET("/bin-cards/:id/ledger", h.GetLedger)
	api.POST("/bin-cards/:id/transactions", h.AppendTransaction)
	api.DELETE("/bin-cards/:id", h.Delete)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// TestBinCardHandlerLifecycle drives create, append, ledger and the guarded
// delete through the HTTP surface.
func TestBinCardHandlerLifecycle(t *testing.T) {
	env := setupBinCardHandlerTest(t)

	// Create a card
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/bin-cards", map[string]interface{}{
		"po_number":       "PO-8001",
		"buyer":           "Test Buyer",
		"group_signature": "rack-h",
	}, "storekeeper")
	if w.Code != http.StatusOK {
		t.Fatalf("create card status = %d, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 0 {
		t.Fatalf("create card envelope = %v", resp)
	}
	cardID := resp["data"].(map[string]interface{})["id"].(string)

	// Append a receive
	w = testutil.DoRequest(env.Router, "POST", fmt.Sprintf("/api/v1/bin-cards/%s/transactions", cardID), map[string]interface{}{
		"transaction_date": "2026-08-01",
		"receive_qty":      250,
	}, "storekeeper")
	if w.Code != http.StatusOK {
		t.Fatalf("append status = %d, body %s", w.Code, w.Body.String())
	}

	// Ledger reflects the entry
	w = testutil.DoRequest(env.Router, "GET", fmt.Sprintf("/api/v1/bin-cards/%s/ledger", cardID), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("ledger status = %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["latest_balance"].(string) != "250" {
		t.Errorf("latest balance = %v, want 250", data["latest_balance"])
	}

	// Delete without cascade is refused while transactions exist
	w = testutil.DoRequest(env.Router, "DELETE", fmt.Sprintf("/api/v1/bin-cards/%s", cardID), nil, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("guarded delete status = %d, want 409", w.Code)
	}
	resp = testutil.ParseResponse(w)
	if resp["code"].(float64) != 40901 {
		t.Errorf("guarded delete code = %v, want 40901", resp["code"])
	}

	// Cascade delete succeeds
	w = testutil.DoRequest(env.Router, "DELETE", fmt.Sprintf("/api/v1/bin-cards/%s?cascade=true", cardID), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("cascade delete status = %d, body %s", w.Code, w.Body.String())
	}

	// Ledger is gone
	w = testutil.DoRequest(env.Router, "GET", fmt.Sprintf("/api/v1/bin-cards/%s/ledger", cardID), nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("ledger after delete status = %d, want 404", w.Code)
	}
}

// TestBinCardHandlerAppendUnknownCard returns 404 for a missing card.
func TestBinCardHandlerAppendUnknownCard(t *testing.T) {
	env := setupBinCardHandlerTest(t)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/bin-cards/99999999-9999-9999-9999-999999999999/transactions", map[string]interface{}{
		"transaction_date": "2026-08-01",
		"receive_qty":      10,
	}, "storekeeper")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 10002 {
		t.Errorf("code = %v, want 10002", resp["code"])
	}
}
