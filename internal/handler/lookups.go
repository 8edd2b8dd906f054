package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/repairbox/api/internal/database"
)

// LookupStore defines the database methods needed by lookup handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type LookupStore interface {
	ListBrands(ctx context.Context) ([]database.Brand, error)
	ListDevicesByBrand(ctx context.Context, brand string) ([]database.Device, error)
	ListDefectsByDevice(ctx context.Context, device string) ([]database.Defect, error)
	ListPriorities(ctx context.Context) ([]database.RepairPriority, error)
	ListStatusConfigs(ctx context.Context) ([]database.RepairStatusConfig, error)
}

// LookupHandler serves the master-data lists the intake form is built from.
type LookupHandler struct {
	store LookupStore
}

// NewLookupHandler creates a new LookupHandler.
func NewLookupHandler(store LookupStore) *LookupHandler {
	return &LookupHandler{store: store}
}

// RegisterRoutes registers lookup endpoints on the given Chi router.
func (h *LookupHandler) RegisterRoutes(r chi.Router) {
	r.Get("/brands", h.ListBrands)
	r.Get("/brands/{brand}/devices", h.ListDevices)
	r.Get("/devices/{device}/defects", h.ListDefects)
	r.Get("/priorities", h.ListPriorities)
	r.Get("/statuses", h.ListStatuses)
}

type defectResponse struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Device           string    `json:"device"`
	Brand            *string   `json:"brand"`
	SellingPrice     string    `json:"selling_price"`
	EstimatedMinutes *int32    `json:"estimated_minutes"`
}

type priorityResponse struct {
	Name        string `json:"name"`
	ExtraCharge string `json:"extra_charge"`
	IsDefault   bool   `json:"is_default"`
}

type statusResponse struct {
	Name           string `json:"name"`
	IsDefault      bool   `json:"is_default"`
	NotifyCustomer bool   `json:"notify_customer"`
	SortOrder      int32  `json:"sort_order"`
}

// ListBrands handles GET /brands.
func (h *LookupHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.store.ListBrands(r.Context())
	if err != nil {
		log.Printf("ERROR: list brands: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	names := make([]string, len(brands))
	for i, b := range brands {
		names[i] = b.Name
	}
	writeJSON(w, http.StatusOK, map[string]any{"brands": names})
}

// ListDevices handles GET /brands/{brand}/devices.
func (h *LookupHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	brand := chi.URLParam(r, "brand")

	devices, err := h.store.ListDevicesByBrand(r.Context(), brand)
	if err != nil {
		log.Printf("ERROR: list devices: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.Name
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": names})
}

// ListDefects handles GET /devices/{device}/defects: the defect catalog
// for one device, with standard prices.
func (h *LookupHandler) ListDefects(w http.ResponseWriter, r *http.Request) {
	device := chi.URLParam(r, "device")

	defects, err := h.store.ListDefectsByDevice(r.Context(), device)
	if err != nil {
		log.Printf("ERROR: list defects: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]defectResponse, len(defects))
	for i, d := range defects {
		resp[i] = toDefectResponse(d)
	}
	writeJSON(w, http.StatusOK, map[string]any{"defects": resp})
}

// ListPriorities handles GET /priorities.
func (h *LookupHandler) ListPriorities(w http.ResponseWriter, r *http.Request) {
	priorities, err := h.store.ListPriorities(r.Context())
	if err != nil {
		log.Printf("ERROR: list priorities: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]priorityResponse, len(priorities))
	for i, p := range priorities {
		resp[i] = priorityResponse{
			Name:        p.Name,
			ExtraCharge: numericToString(p.ExtraCharge),
			IsDefault:   p.IsDefault,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"priorities": resp})
}

// ListStatuses handles GET /statuses.
func (h *LookupHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.store.ListStatusConfigs(r.Context())
	if err != nil {
		log.Printf("ERROR: list statuses: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]statusResponse, len(statuses))
	for i, s := range statuses {
		resp[i] = statusResponse{
			Name:           s.Name,
			IsDefault:      s.IsDefault,
			NotifyCustomer: s.NotifyCustomer,
			SortOrder:      s.SortOrder,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"statuses": resp})
}

func toDefectResponse(d database.Defect) defectResponse {
	resp := defectResponse{
		ID:           d.ID,
		Title:        d.Title,
		Device:       d.Device,
		SellingPrice: numericToString(d.SellingPrice),
	}
	if d.Brand.Valid {
		resp.Brand = &d.Brand.String
	}
	if d.EstimatedMinutes.Valid {
		resp.EstimatedMinutes = &d.EstimatedMinutes.Int32
	}
	return resp
}
