package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"agrikoSearch/domain"
	"agrikoSearch/pkg/logger"
	jsonres "agrikoSearch/pkg/response"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type TrackingService interface {
	TrackSearch(sessionID, query, searchType string, resultIDs []uint64)
	TrackClick(sessionID string, productID uint64, query string, position int)
	TrackPurchase(sessionID string, productID uint64, purchaseContext string, amount float64)
	Summary(ctx context.Context) domain.AnalyticsSummary
	SanitizedProfile(sessionID string) domain.SanitizedProfile
	Cleanup(maxAge time.Duration) int
}

type AnalyticsHandler struct {
	tracking      TrackingService
	validator     *validator.Validate
	timeout       time.Duration
	profileMaxAge time.Duration
}

func NewAnalyticsHandler(tracking TrackingService, profileMaxAge time.Duration) *AnalyticsHandler {
	return &AnalyticsHandler{
		tracking:      tracking,
		validator:     validator.New(),
		timeout:       10 * time.Second,
		profileMaxAge: profileMaxAge,
	}
}

// TrackEventRequest is a tagged union: action selects which data payload
// shape applies.
type TrackEventRequest struct {
	Action string          `json:"action" validate:"required"`
	Data   json.RawMessage `json:"data" validate:"required"`
}

type TrackSearchData struct {
	SessionID        string   `json:"sessionId" validate:"required"`
	Query            string   `json:"query" validate:"required"`
	SearchType       string   `json:"searchType"`
	ResultProductIDs []uint64 `json:"resultProductIds"`
}

type TrackClickData struct {
	SessionID string `json:"sessionId" validate:"required"`
	ProductID uint64 `json:"productId" validate:"required"`
	Query     string `json:"query"`
	Position  int    `json:"position" validate:"gte=0"`
}

type TrackPurchaseData struct {
	SessionID string  `json:"sessionId" validate:"required"`
	ProductID uint64  `json:"productId" validate:"required"`
	Context   string  `json:"context"`
	Amount    float64 `json:"amount" validate:"gte=0"`
}

type SummaryResponse struct {
	Success bool                    `json:"success"`
	Summary domain.AnalyticsSummary `json:"summary"`
}

type ProfileResponse struct {
	Success bool                    `json:"success"`
	Profile domain.SanitizedProfile `json:"profile"`
}

type CleanupResponse struct {
	Success bool `json:"success"`
	Evicted int  `json:"evicted"`
}

// TrackEvent records a behavioral event. Submission is fire-and-forget; a
// 200 means the event was accepted, not that it was persisted.
func (h *AnalyticsHandler) TrackEvent(c echo.Context) error {
	var body TrackEventRequest
	if err := c.Bind(&body); err != nil {
		logger.Error("Invalid tracking body", "error", err)
		return c.JSON(http.StatusBadRequest, fres.Response.StatusBadRequest("Invalid request"))
	}

	if err := h.validator.Struct(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	switch body.Action {
	case "track_search":
		var data TrackSearchData
		if err := h.decode(body.Data, &data); err != nil {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		h.tracking.TrackSearch(data.SessionID, data.Query, data.SearchType, data.ResultProductIDs)

	case "track_click":
		var data TrackClickData
		if err := h.decode(body.Data, &data); err != nil {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		h.tracking.TrackClick(data.SessionID, data.ProductID, data.Query, data.Position)

	case "track_purchase":
		var data TrackPurchaseData
		if err := h.decode(body.Data, &data); err != nil {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		h.tracking.TrackPurchase(data.SessionID, data.ProductID, data.Context, data.Amount)

	default:
		return &domain.ValidationError{Field: "action", Message: "unknown action: " + body.Action}
	}

	return c.JSON(http.StatusOK, jsonres.Success("event accepted", nil))
}

// Analytics serves the read side. action selects summary, user_profile, or
// cleanup; summary is the default.
func (h *AnalyticsHandler) Analytics(c echo.Context) error {
	switch c.QueryParam("action") {
	case "", "summary":
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		defer cancel()
		return c.JSON(http.StatusOK, SummaryResponse{
			Success: true,
			Summary: h.tracking.Summary(ctx),
		})

	case "user_profile":
		sessionID := c.QueryParam("sessionId")
		if sessionID == "" {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "query parameter 'sessionId' is required"})
		}
		return c.JSON(http.StatusOK, ProfileResponse{
			Success: true,
			Profile: h.tracking.SanitizedProfile(sessionID),
		})

	case "cleanup":
		maxAge := h.profileMaxAge
		if hours := parseIntDefault(c.QueryParam("maxAgeHours"), 0); hours > 0 {
			maxAge = time.Duration(hours) * time.Hour
		}
		return c.JSON(http.StatusOK, CleanupResponse{
			Success: true,
			Evicted: h.tracking.Cleanup(maxAge),
		})

	default:
		return &domain.ValidationError{Field: "action", Message: "unknown action: " + c.QueryParam("action")}
	}
}

func (h *AnalyticsHandler) decode(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return err
	}
	return h.validator.Struct(out)
}
