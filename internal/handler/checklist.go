package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/repairbox/api/internal/database"
	"github.com/repairbox/api/internal/service"
)

// ChecklistServicer defines the service methods needed by checklist handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type ChecklistServicer interface {
	PopulateChecklist(ctx context.Context, orderID uuid.UUID, replace bool) (*service.ChecklistResult, error)
	SetInspectionStatus(ctx context.Context, orderID, itemID uuid.UUID, status string, notes *string) (database.InspectionItem, error)
	BulkSetInspectionStatus(ctx context.Context, orderID uuid.UUID, status string) ([]database.InspectionItem, error)
}

// ChecklistHandler handles inspection checklist endpoints.
type ChecklistHandler struct {
	svc ChecklistServicer
}

// NewChecklistHandler creates a new ChecklistHandler.
func NewChecklistHandler(svc ChecklistServicer) *ChecklistHandler {
	return &ChecklistHandler{svc: svc}
}

// RegisterRoutes registers checklist endpoints on the given Chi router.
// Expected to be called inside an /orders/{id} route block.
func (h *ChecklistHandler) RegisterRoutes(r chi.Router) {
	r.Route("/checklist", func(r chi.Router) {
		r.Post("/", h.Populate)
		r.Post("/bulk", h.BulkUpdate)
		r.Patch("/{itemID}", h.UpdateItem)
	})
}

type populateChecklistRequest struct {
	Replace bool `json:"replace"`
}

type checklistResponse struct {
	TemplateFound bool                     `json:"template_found"`
	TemplateName  string                   `json:"template_name,omitempty"`
	Items         []inspectionItemResponse `json:"items"`
}

type updateItemRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

type bulkUpdateRequest struct {
	Status string `json:"status"`
}

// Populate handles POST /orders/{id}/checklist: load items from the
// device's template. Pass replace=true to overwrite an existing checklist.
func (h *ChecklistHandler) Populate(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req populateChecklistRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	result, err := h.svc.PopulateChecklist(r.Context(), orderID, req.Replace)
	if err != nil {
		h.respondChecklistError(w, err)
		return
	}

	items := make([]inspectionItemResponse, len(result.Items))
	for i, it := range result.Items {
		items[i] = toInspectionItemResponse(it)
	}
	writeJSON(w, http.StatusOK, checklistResponse{
		TemplateFound: result.TemplateFound,
		TemplateName:  result.TemplateName,
		Items:         items,
	})
}

// UpdateItem handles PATCH /orders/{id}/checklist/{itemID}.
func (h *ChecklistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.svc.SetInspectionStatus(r.Context(), orderID, itemID, req.Status, req.Notes)
	if err != nil {
		h.respondChecklistError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toInspectionItemResponse(item))
}

// BulkUpdate handles POST /orders/{id}/checklist/bulk: set every item on
// the order to the same status.
func (h *ChecklistHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req bulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items, err := h.svc.BulkSetInspectionStatus(r.Context(), orderID, req.Status)
	if err != nil {
		h.respondChecklistError(w, err)
		return
	}

	resp := make([]inspectionItemResponse, len(items))
	for i, it := range items {
		resp[i] = toInspectionItemResponse(it)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": resp})
}

func (h *ChecklistHandler) respondChecklistError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrChecklistExists) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":            err.Error(),
			"replace_required": "true",
		})
		return
	}
	respondServiceError(w, "checklist", err)
}
