package api

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "dinefine-workers/internal/common/errors"
	"dinefine-workers/internal/common/logger"
	"dinefine-workers/internal/engine"
	"dinefine-workers/internal/models"
)

// maxBodyBytes bounds request bodies; menus are the largest payload.
const maxBodyBytes = 1 << 20

// Handler holds the API route handlers.
type Handler struct {
	engine *engine.Engine
	logger logger.Logger
}

func NewHandler(eng *engine.Engine, log logger.Logger) *Handler {
	return &Handler{engine: eng, logger: logger.ForComponent(log, "api")}
}

type validatable interface {
	Validate() error
}

// decode reads a JSON body into dst and validates it. It writes the 400
// response itself and reports whether the handler may continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst validatable) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(apperrors.NewInvalidInputError("malformed JSON body: "+err.Error())))
		return false
	}
	if err := dst.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(apperrors.NewInvalidInputError(err.Error())))
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, err error, ec engine.ErrorContext) {
	stdErr := h.engine.StandardErrorFor(err, ec)
	status := statusFor(stdErr.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", map[string]interface{}{
			"code":  string(stdErr.Code),
			"error": err,
		})
	}
	writeJSON(w, status, errorBody(stdErr))
}

func (h *Handler) diner(r *http.Request, userID string, inline *models.DinerProfile) (models.DinerProfile, error) {
	return h.engine.ResolveDiner(r.Context(), userID, inline)
}

// ScanRestaurant handles POST /api/v1/restaurants/scan.
func (h *Handler) ScanRestaurant(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !h.decode(w, r, &req) {
		return
	}

	diner, err := h.diner(r, req.UserID, req.Diner)
	if err != nil {
		h.fail(w, err, engine.ErrorContext{UserID: req.UserID})
		return
	}

	writeJSON(w, http.StatusOK, h.engine.ScanRestaurant(req.Restaurant, diner))
}

type evaluateResponse struct {
	models.MenuSafetySummary
	Items []models.ItemSafety `json:"items"`
}

// EvaluateMenu handles POST /api/v1/menus/evaluate.
func (h *Handler) EvaluateMenu(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !h.decode(w, r, &req) {
		return
	}

	diner, err := h.diner(r, req.UserID, req.Diner)
	if err != nil {
		h.fail(w, err, engine.ErrorContext{UserID: req.UserID})
		return
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		MenuSafetySummary: h.engine.EvaluateMenu(req.Items, diner),
		Items:             h.engine.Annotate(req.Items, diner),
	})
}

type analyzeResponse struct {
	Items           []models.MenuItem        `json:"items"`
	ServedFromCache bool                     `json:"servedFromCache"`
	CacheDecision   string                   `json:"cacheDecision"`
	MenuUpdatedAt   time.Time                `json:"menuUpdatedAt"`
	Summary         models.MenuSafetySummary `json:"summary"`
	Annotations     []models.ItemSafety      `json:"annotations"`
	QuotaRemaining  *int                     `json:"quotaRemaining,omitempty"`
}

// AnalyzeMenu handles POST /api/v1/menus/analyze.
func (h *Handler) AnalyzeMenu(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !h.decode(w, r, &req) {
		return
	}
	ec := engine.ErrorContext{SourceKey: req.SourceKey, DinerID: req.UserID, UserID: req.UserID}

	diner, err := h.diner(r, req.UserID, req.Diner)
	if err != nil {
		h.fail(w, err, ec)
		return
	}

	analysis, err := h.engine.AnalyzeMenu(r.Context(), engine.MenuRequest{
		SourceKey:      req.SourceKey,
		Query:          req.Query,
		DinerID:        req.UserID,
		RestaurantName: req.RestaurantName,
	}, diner)
	if err != nil {
		h.fail(w, err, ec)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Items:           analysis.Items,
		ServedFromCache: analysis.ServedFromCache,
		CacheDecision:   string(analysis.Decision),
		MenuUpdatedAt:   analysis.UpdatedAt,
		Summary:         analysis.Summary,
		Annotations:     analysis.Annotations,
		QuotaRemaining:  analysis.QuotaRemaining,
	})
}
