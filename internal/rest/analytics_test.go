package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"agrikoSearch/domain"
)

type trackedCall struct {
	kind      string
	sessionID string
	productID uint64
	query     string
	amount    float64
}

type fakeTracking struct {
	mu      sync.Mutex
	calls   []trackedCall
	evicted int
}

func (f *fakeTracking) TrackSearch(sessionID, query, _ string, _ []uint64) {
	f.add(trackedCall{kind: "search", sessionID: sessionID, query: query})
}

func (f *fakeTracking) TrackClick(sessionID string, productID uint64, query string, _ int) {
	f.add(trackedCall{kind: "click", sessionID: sessionID, productID: productID, query: query})
}

func (f *fakeTracking) TrackPurchase(sessionID string, productID uint64, _ string, amount float64) {
	f.add(trackedCall{kind: "purchase", sessionID: sessionID, productID: productID, amount: amount})
}

func (f *fakeTracking) add(c trackedCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeTracking) Summary(context.Context) domain.AnalyticsSummary {
	return domain.AnalyticsSummary{ActiveProfiles: 7, EventTotals: map[string]int64{"search": 3}}
}

func (f *fakeTracking) SanitizedProfile(sessionID string) domain.SanitizedProfile {
	return domain.SanitizedProfile{SessionID: sessionID, SearchCount: 2}
}

func (f *fakeTracking) Cleanup(time.Duration) int {
	return f.evicted
}

func TestTrackEventSearch(t *testing.T) {
	tracking := &fakeTracking{}
	h := NewAnalyticsHandler(tracking, 24*time.Hour)

	body := `{"action":"track_search","data":{"sessionId":"s1","query":"turmeric","searchType":"hybrid","resultProductIds":[1,2]}}`
	rec, err := postRequest(t, h.TrackEvent, "/api/v1/search/analytics", body)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if len(tracking.calls) != 1 || tracking.calls[0].kind != "search" || tracking.calls[0].sessionID != "s1" {
		t.Errorf("calls = %+v", tracking.calls)
	}
}

func TestTrackEventClickAndPurchase(t *testing.T) {
	tracking := &fakeTracking{}
	h := NewAnalyticsHandler(tracking, 24*time.Hour)

	cases := []string{
		`{"action":"track_click","data":{"sessionId":"s1","productId":9,"query":"tea","position":2}}`,
		`{"action":"track_purchase","data":{"sessionId":"s1","productId":9,"context":"cart","amount":19.5}}`,
	}
	for _, body := range cases {
		rec, err := postRequest(t, h.TrackEvent, "/api/v1/search/analytics", body)
		if err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d for %s", rec.Code, body)
		}
	}

	if len(tracking.calls) != 2 {
		t.Fatalf("calls = %+v", tracking.calls)
	}
	if tracking.calls[0].productID != 9 || tracking.calls[1].amount != 19.5 {
		t.Errorf("calls = %+v", tracking.calls)
	}
}

func TestTrackEventUnknownAction(t *testing.T) {
	h := NewAnalyticsHandler(&fakeTracking{}, 24*time.Hour)

	_, err := postRequest(t, h.TrackEvent, "/api/v1/search/analytics", `{"action":"delete_everything","data":{}}`)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want a validation error", err)
	}
	if ve.Field != "action" {
		t.Errorf("field = %q", ve.Field)
	}
}

func TestTrackEventMissingRequiredData(t *testing.T) {
	tracking := &fakeTracking{}
	h := NewAnalyticsHandler(tracking, 24*time.Hour)

	// click without a product id fails payload validation
	rec, err := postRequest(t, h.TrackEvent, "/api/v1/search/analytics", `{"action":"track_click","data":{"sessionId":"s1"}}`)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(tracking.calls) != 0 {
		t.Errorf("invalid payload was tracked: %+v", tracking.calls)
	}
}

func TestAnalyticsSummary(t *testing.T) {
	h := NewAnalyticsHandler(&fakeTracking{}, 24*time.Hour)

	rec, err := getRequest(t, h.Analytics, "/api/v1/search/analytics?action=summary")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Summary.ActiveProfiles != 7 {
		t.Errorf("body = %+v", body)
	}
}

func TestAnalyticsUserProfile(t *testing.T) {
	h := NewAnalyticsHandler(&fakeTracking{}, 24*time.Hour)

	rec, err := getRequest(t, h.Analytics, "/api/v1/search/analytics?action=user_profile&sessionId=s1")
	if err != nil {
		t.Fatal(err)
	}

	var body ProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Profile.SessionID != "s1" || body.Profile.SearchCount != 2 {
		t.Errorf("body = %+v", body)
	}
}

func TestAnalyticsUserProfileRequiresSession(t *testing.T) {
	h := NewAnalyticsHandler(&fakeTracking{}, 24*time.Hour)

	rec, err := getRequest(t, h.Analytics, "/api/v1/search/analytics?action=user_profile")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyticsCleanup(t *testing.T) {
	h := NewAnalyticsHandler(&fakeTracking{evicted: 4}, 24*time.Hour)

	rec, err := getRequest(t, h.Analytics, "/api/v1/search/analytics?action=cleanup")
	if err != nil {
		t.Fatal(err)
	}

	var body CleanupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Evicted != 4 {
		t.Errorf("body = %+v", body)
	}
}

func TestAnalyticsUnknownAction(t *testing.T) {
	h := NewAnalyticsHandler(&fakeTracking{}, 24*time.Hour)

	_, err := getRequest(t, h.Analytics, "/api/v1/search/analytics?action=drop_tables")

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want a validation error", err)
	}
}
