package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func salesTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/sales", RecordSale)
	r.DELETE("/sales/:id", DeleteSale)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRecordSaleRejectsMissingFields(t *testing.T) {
	r := salesTestRouter()

	if w := postJSON(r, "/sales", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty body, got %d", w.Code)
	}
}

func TestRecordSaleRejectsNonPositiveQuantity(t *testing.T) {
	r := salesTestRouter()

	body := `{"ulam_id":"64a000000000000000000001","quantity_sold":-3,"price_per_serving":50,"sale_date":"2026-08-28"}`
	if w := postJSON(r, "/sales", body); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative quantity, got %d", w.Code)
	}
}

func TestRecordSaleRejectsNonPositivePrice(t *testing.T) {
	r := salesTestRouter()

	body := `{"ulam_id":"64a000000000000000000001","quantity_sold":3,"price_per_serving":-1,"sale_date":"2026-08-28"}`
	if w := postJSON(r, "/sales", body); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative price, got %d", w.Code)
	}
}

func TestRecordSaleRejectsBadDate(t *testing.T) {
	r := salesTestRouter()

	body := `{"ulam_id":"64a000000000000000000001","quantity_sold":3,"price_per_serving":50,"sale_date":"28-08-2026"}`
	if w := postJSON(r, "/sales", body); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad date format, got %d", w.Code)
	}
}

func TestRecordSaleRejectsInvalidUlamID(t *testing.T) {
	r := salesTestRouter()

	body := `{"ulam_id":"not-hex","quantity_sold":3,"price_per_serving":50,"sale_date":"2026-08-28"}`
	if w := postJSON(r, "/sales", body); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid ulam id, got %d", w.Code)
	}
}

func TestDeleteSaleRejectsInvalidID(t *testing.T) {
	r := salesTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/sales/not-hex", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid sale id, got %d", w.Code)
	}
}

func TestTopAndLowSeller(t *testing.T) {
	top, low := TopAndLowSeller(map[string]int{
		"Adobo":    7,
		"Sinigang": 2,
		"Tinola":   4,
	})
	if top != "Adobo" {
		t.Errorf("expected top seller Adobo, got %q", top)
	}
	if low != "Sinigang" {
		t.Errorf("expected low seller Sinigang, got %q", low)
	}
}

func TestTopAndLowSellerEmpty(t *testing.T) {
	top, low := TopAndLowSeller(nil)
	if top != "" || low != "" {
		t.Errorf("expected empty sellers for no sales, got %q / %q", top, low)
	}
}

func TestTopAndLowSellerTieIsStable(t *testing.T) {
	top, low := TopAndLowSeller(map[string]int{"Tinola": 3, "Adobo": 3})
	if top != "Adobo" || low != "Adobo" {
		t.Errorf("tie should resolve alphabetically, got %q / %q", top, low)
	}
}
