package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wager-analytics/internal/application/services"
	"github.com/bimakw/wager-analytics/internal/domain/analytics"
	"github.com/bimakw/wager-analytics/internal/domain/entities"
	"github.com/bimakw/wager-analytics/internal/testutil"
)

func setupMetricsHandlerTest() (http.Handler, *testutil.MockRecordRepository) {
	repo := testutil.NewMockRecordRepository()
	logger := zap.NewNop()
	classifier := analytics.NewClassifier(analytics.DefaultAliases())

	service := services.NewMetricsService(repo, classifier, nil, time.Minute, time.UTC, logger)
	handler := NewMetricsHandler(service, logger)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, repo
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seedWagers(repo *testutil.MockRecordRepository) {
	repo.AddBatch("b1",
		testutil.CreateTestRecord(testutil.WithID("r1"), testutil.WithSport("AFL"),
			testutil.WithStake("100"), testutil.WithPayout("150"), testutil.WithBetType("Single")),
		testutil.CreateTestRecord(testutil.WithID("r2"), testutil.WithSport("AFL"),
			testutil.WithStake("50"), testutil.WithPayout("0"), testutil.WithBetType("Multi")),
		testutil.CreateTestRecord(testutil.WithID("r3"), testutil.WithoutSport(),
			testutil.WithStake("20"), testutil.WithPayout("0")),
		testutil.CreateTestRecord(testutil.WithID("h1"), testutil.WithTrack(testutil.Randwick),
			testutil.WithStake("10"), testutil.WithPayout("40")),
		testutil.CreateDeposit("d1", "500"),
		testutil.CreateWithdrawal("w1", "120"),
	)
}

func TestMetricsHandler_GetOverview(t *testing.T) {
	router, repo := setupMetricsHandlerTest()
	seedWagers(repo)

	rec := get(router, "/metrics/overview")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response services.OverviewResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Data) != 4 {
		t.Fatalf("expected 4 cards, got %d", len(response.Data))
	}
	if response.Data[3].Value != "AFL" {
		t.Errorf("expected best sport AFL, got %v", response.Data[3].Value)
	}
}

func TestMetricsHandler_GetExtendedOverview(t *testing.T) {
	router, repo := setupMetricsHandlerTest()
	seedWagers(repo)

	rec := get(router, "/metrics/overview/extended")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response services.ExtendedOverviewResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Data) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(response.Data))
	}
	if response.Data[0].Value != analytics.UnclassifiedLabel {
		t.Errorf("expected worst sport %s, got %v", analytics.UnclassifiedLabel, response.Data[0].Value)
	}
	if response.Data[1].Value != 60.0 {
		t.Errorf("expected singles P/L 60, got %v", response.Data[1].Value)
	}
	if response.Data[2].Value != -50.0 || response.Data[2].Helper != "Win rate 0.0%" {
		t.Errorf("unexpected multis card %+v", response.Data[2])
	}
}

func TestMetricsHandler_GetOverview_EmptyStore(t *testing.T) {
	router, _ := setupMetricsHandlerTest()

	rec := get(router, "/metrics/overview")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, card := range body.Data {
		if v, ok := card["value"]; !ok || v != nil {
			t.Errorf("expected explicit null value, got %v", v)
		}
		if card["status"] != "no_data" {
			t.Errorf("expected status no_data, got %v", card["status"])
		}
	}
}

func TestMetricsHandler_GetCashflow(t *testing.T) {
	router, repo := setupMetricsHandlerTest()
	seedWagers(repo)

	rec := get(router, "/metrics/cashflow")

	var response services.CashflowResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Data.Deposits != 500 || response.Data.Withdrawals != 120 {
		t.Errorf("expected 500/120, got %v/%v", response.Data.Deposits, response.Data.Withdrawals)
	}
}

func TestMetricsHandler_GetTimeline(t *testing.T) {
	router, repo := setupMetricsHandlerTest()
	seedWagers(repo)

	tests := []struct {
		name     string
		target   string
		status   int
		expected float64
	}{
		{"all categories", "/metrics/timeseries", http.StatusOK, 10},
		{"sport only", "/metrics/timeseries?category=sport", http.StatusOK, -20},
		{"case insensitive", "/metrics/timeseries?category=RACING", http.StatusOK, 30},
		{"unknown category", "/metrics/timeseries?category=greyhounds", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			if tt.status != http.StatusOK {
				return
			}

			var response services.TimelineResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(response.Data) != 1 {
				t.Fatalf("expected 1 point, got %d", len(response.Data))
			}
			if response.Data[0].Profit != tt.expected {
				t.Errorf("expected profit %v, got %v", tt.expected, response.Data[0].Profit)
			}
		})
	}
}

func TestMetricsHandler_GetBreakdown(t *testing.T) {
	router, repo := setupMetricsHandlerTest()
	seedWagers(repo)

	rec := get(router, "/metrics/breakdown/sport?category=sport")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data []map[string]interface{} `json:"data"`
		Meta services.Meta            `json:"meta"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Data) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(body.Data))
	}
	if body.Data[0]["key"] != "AFL" {
		t.Errorf("expected first key AFL, got %v", body.Data[0]["key"])
	}
	if v, ok := body.Data[1]["key"]; !ok || v != nil {
		t.Errorf("expected null key for unclassified row, got %v", v)
	}
	if body.Meta.Snapshot != "b1.1" {
		t.Errorf("expected snapshot b1.1, got %s", body.Meta.Snapshot)
	}
}

func TestMetricsHandler_GetBreakdown_SportFilter(t *testing.T) {
	router, repo := setupMetricsHandlerTest()
	seedWagers(repo)

	tests := []struct {
		name   string
		target string
		rows   int
	}{
		{"named sport", "/metrics/breakdown/bet_type?category=sport&sport=AFL", 2},
		{"unclassified keyword", "/metrics/breakdown/bet_type?category=sport&sport=unclassified", 1},
		{"unknown keyword", "/metrics/breakdown/bet_type?category=sport&sport=Unknown", 1},
		{"no match", "/metrics/breakdown/bet_type?category=sport&sport=Darts", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}

			var response services.BreakdownResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(response.Data) != tt.rows {
				t.Errorf("expected %d rows, got %d", tt.rows, len(response.Data))
			}
		})
	}
}

func TestMetricsHandler_GetBreakdown_BadRequest(t *testing.T) {
	router, repo := setupMetricsHandlerTest()

	tests := []struct {
		name   string
		target string
	}{
		{"missing category", "/metrics/breakdown/sport"},
		{"unknown dimension", "/metrics/breakdown/jockey?category=racing"},
		{"unknown category", "/metrics/breakdown/sport?category=esports"},
		{"track for sport", "/metrics/breakdown/track?category=sport"},
		{"sport for racing", "/metrics/breakdown/sport?category=racing"},
		{"sport filter on racing", "/metrics/breakdown/track?category=racing&sport=AFL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}

			var response ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Error == "" {
				t.Error("expected error message")
			}
		})
	}

	if repo.CallCount("Snapshot") != 0 {
		t.Errorf("expected no snapshot reads for rejected queries, got %d", repo.CallCount("Snapshot"))
	}
}

func TestMetricsHandler_StoreUnavailable(t *testing.T) {
	router, repo := setupMetricsHandlerTest()
	repo.SnapshotFunc = func(ctx context.Context) (*entities.Snapshot, error) {
		return nil, errors.New("connection refused")
	}

	for _, target := range []string{
		"/metrics/overview",
		"/metrics/cashflow",
		"/metrics/timeseries",
		"/metrics/breakdown/sport?category=sport",
		"/metrics/dashboard",
	} {
		rec := get(router, target)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected status 503, got %d", target, rec.Code)
			continue
		}

		var response ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !response.Retryable {
			t.Errorf("%s: expected retryable error", target)
		}
	}
}

func TestMetricsHandler_GetDashboard(t *testing.T) {
	router, repo := setupMetricsHandlerTest()
	seedWagers(repo)

	rec := get(router, "/metrics/dashboard")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response services.DashboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Data.Overview) != 4 {
		t.Errorf("expected 4 cards, got %d", len(response.Data.Overview))
	}
	if len(response.Data.Timelines.Racing) != 1 || response.Data.Timelines.Racing[0].Profit != 30 {
		t.Errorf("unexpected racing timeline %+v", response.Data.Timelines.Racing)
	}
	if response.Data.Cashflow.Withdrawals != 120 {
		t.Errorf("expected withdrawals 120, got %v", response.Data.Cashflow.Withdrawals)
	}
}
