package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"CoinSage/internal/domain/models"
	xlogger "CoinSage/pkg/logger"

	"github.com/labstack/echo/v4"
)

func testHandler(t *testing.T) *AdvisorHandler {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &AdvisorHandler{logger: l}
}

func responseStatus(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body.Status
}

func TestFailMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"insufficient data", &models.InsufficientDataError{Symbol: "BTCUSDT", Need: 50, Have: 10}, http.StatusBadRequest},
		{"unknown timeframe", &models.UnknownTimeframeError{Timeframe: "2h"}, http.StatusBadRequest},
		{"unknown risk level", &models.UnknownRiskLevelError{Level: "reckless"}, http.StatusBadRequest},
		{"collaborator down", models.Collaborator("fetch klines", errors.New("timeout")), http.StatusServiceUnavailable},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	h := testHandler(t)
	e := echo.New()
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := h.fail(c, "test", tc.err); err != nil {
			t.Fatalf("%s: fail returned %v", tc.name, err)
		}
		if got := responseStatus(t, rec); got != tc.want {
			t.Fatalf("%s: expected status %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestSplitSymbols(t *testing.T) {
	got := splitSymbols(" btcusdt, ETHUSDT ,,solusdt")
	want := []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitListEmpty(t *testing.T) {
	if got := splitList(""); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}
