package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/repairbox/api/internal/database"
	"github.com/repairbox/api/internal/middleware"
	"github.com/repairbox/api/internal/service"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderDetail, error)
	GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*service.OrderDetail, error)
	ExecuteAction(ctx context.Context, req service.ActionRequest) (*service.ActionResult, error)
	SetIntake(ctx context.Context, orderID uuid.UUID, upd service.IntakeUpdate) (*service.IntakeResult, error)
	SetNotes(ctx context.Context, orderID uuid.UUID, upd service.NotesUpdate) (*service.OrderDetail, error)
	SetPriority(ctx context.Context, orderID uuid.UUID, priority string) (*service.OrderDetail, error)
	SetPaidAmount(ctx context.Context, orderID uuid.UUID, paidAmount string) (*service.OrderDetail, error)
	ReplaceDefectLines(ctx context.Context, orderID uuid.UUID, inputs []service.DefectLineInput) (*service.OrderDetail, error)
}

// OrderStore defines the database methods needed by order list handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	ListRepairOrders(ctx context.Context, arg database.ListRepairOrdersParams) ([]database.RepairOrder, error)
	ListActiveRepairsByTechnician(ctx context.Context, technicianID uuid.UUID) ([]database.RepairOrder, error)
	ListOverdueRepairOrders(ctx context.Context, asOf time.Time) ([]database.RepairOrder, error)
}

// OrderHandler handles repair order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store}
}

// RegisterRoutes registers collection-level order endpoints on the given
// Chi router. Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/my", h.MyRepairs)
	r.Get("/overdue", h.Overdue)
}

// RegisterDetailRoutes registers single-order endpoints. Expected to be
// called inside an /orders/{id} route block so checklist routes can share
// the same subtree.
func (h *OrderHandler) RegisterDetailRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Patch("/", h.Update)
	r.Post("/actions", h.ExecuteAction)
	r.Put("/defects", h.ReplaceDefects)
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerID   string              `json:"customer_id"`
	CustomerName string              `json:"customer_name"`
	Email        string              `json:"email"`
	Phone        string              `json:"phone"`
	Brand        string              `json:"brand"`
	Device       string              `json:"device"`
	DeviceModel  string              `json:"device_model"`
	SerialNumber string              `json:"serial_number"`
	Priority     string              `json:"priority"`
	AssignedTo   string              `json:"assigned_to"`
	BookingDate  string              `json:"booking_date"`
	Defects      []defectLineRequest `json:"defects"`
}

type defectLineRequest struct {
	DefectID     string `json:"defect_id"`
	Title        string `json:"title"`
	SellingPrice string `json:"selling_price"`
}

type updateOrderRequest struct {
	CustomerID   *string `json:"customer_id"`
	CustomerName *string `json:"customer_name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Brand        *string `json:"brand"`
	Device       *string `json:"device"`
	DeviceModel  *string `json:"device_model"`
	SerialNumber *string `json:"serial_number"`

	Priority        *string `json:"priority"`
	PaidAmount      *string `json:"paid_amount"`
	TechnicianNotes *string `json:"technician_notes"`
	AdditionalNotes *string `json:"additional_notes"`
}

type actionRequest struct {
	Action    string `json:"action"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
	Confirmed bool   `json:"confirmed"`
}

type replaceDefectsRequest struct {
	Defects []defectLineRequest `json:"defects"`
}

type orderResponse struct {
	ID                 uuid.UUID  `json:"id"`
	TrackingID         string     `json:"tracking_id"`
	CustomerID         *string    `json:"customer_id"`
	CustomerName       string     `json:"customer_name"`
	Email              *string    `json:"email"`
	Phone              *string    `json:"phone"`
	Brand              *string    `json:"brand"`
	Device             *string    `json:"device"`
	DeviceModel        *string    `json:"device_model"`
	SerialNumber       *string    `json:"serial_number"`
	Status             string     `json:"status"`
	Priority           *string    `json:"priority"`
	PriorityCharge     string     `json:"priority_charge"`
	AssignedTo         *string    `json:"assigned_to"`
	BookingDate        time.Time  `json:"booking_date"`
	ExpectedCompletion *time.Time `json:"expected_completion"`
	ActualCompletion   *time.Time `json:"actual_completion"`
	TotalServiceAmount string     `json:"total_service_amount"`
	TaxAmount          string     `json:"tax_amount"`
	GrandTotal         string     `json:"grand_total"`
	PaidAmount         string     `json:"paid_amount"`
	PaymentStatus      string     `json:"payment_status"`
	TechnicianNotes    *string    `json:"technician_notes"`
	AdditionalNotes    *string    `json:"additional_notes"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type defectLineResponse struct {
	ID           uuid.UUID `json:"id"`
	DefectID     *string   `json:"defect_id"`
	Title        string    `json:"title"`
	SellingPrice string    `json:"selling_price"`
	SortOrder    int32     `json:"sort_order"`
}

type inspectionItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ItemName    string    `json:"item_name"`
	Category    *string   `json:"category"`
	IsMandatory bool      `json:"is_mandatory"`
	Status      string    `json:"status"`
	IsDefective bool      `json:"is_defective"`
	Notes       string    `json:"notes"`
	SortOrder   int32     `json:"sort_order"`
}

type repairEventResponse struct {
	ID         uuid.UUID `json:"id"`
	Action     string    `json:"action"`
	FromStatus *string   `json:"from_status"`
	ToStatus   *string   `json:"to_status"`
	Reason     *string   `json:"reason"`
	Actor      *string   `json:"actor"`
	CreatedAt  time.Time `json:"created_at"`
}

// orderDetailResponse is the full order view: order, children, and the
// derived lock/action sets.
type orderDetailResponse struct {
	Order           orderResponse            `json:"order"`
	DefectLines     []defectLineResponse     `json:"defect_lines"`
	InspectionItems []inspectionItemResponse `json:"inspection_items"`
	Events          []repairEventResponse    `json:"events"`
	LockedFields    []string                 `json:"locked_fields"`
	AllowedActions  []string                 `json:"allowed_actions"`
}

type actionResponse struct {
	Order          orderResponse `json:"order"`
	Notified       bool          `json:"notified"`
	Warning        string        `json:"warning,omitempty"`
	LockedFields   []string      `json:"locked_fields"`
	AllowedActions []string      `json:"allowed_actions"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type updateOrderResponse struct {
	orderDetailResponse
	ChecklistConfirmRequired bool `json:"checklist_confirm_required,omitempty"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.CustomerName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "customer_name is required"})
		return
	}
	for i, d := range req.Defects {
		if d.DefectID == "" && d.Title == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatDefectError(i, "defect_id or title is required"),
			})
			return
		}
	}

	detail, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Brand:        req.Brand,
		Device:       req.Device,
		DeviceModel:  req.DeviceModel,
		SerialNumber: req.SerialNumber,
		Priority:     req.Priority,
		AssignedTo:   req.AssignedTo,
		BookingDate:  req.BookingDate,
		Defects:      toDefectInputs(req.Defects),
		CreatedBy:    claims.UserID,
	})
	if err != nil {
		respondServiceError(w, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderDetailResponse(detail))
}

// List handles GET /orders with optional status / assigned_to filters.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	params := database.ListRepairOrdersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		params.Status = pgtype.Text{String: s, Valid: true}
	}
	if s := r.URL.Query().Get("assigned_to"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid assigned_to"})
			return
		}
		params.AssignedTo = pgtype.UUID{Bytes: id, Valid: true}
	}

	orders, err := h.store.ListRepairOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, orderListResponse{Orders: resp, Limit: limit, Offset: offset})
}

// MyRepairs handles GET /orders/my: the caller's active workload.
func (h *OrderHandler) MyRepairs(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orders, err := h.store.ListActiveRepairsByTechnician(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: list my repairs: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": resp})
}

// Overdue handles GET /orders/overdue: active orders past their expected
// completion date.
func (h *OrderHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOverdueRepairOrders(r.Context(), time.Now())
	if err != nil {
		log.Printf("ERROR: list overdue: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": resp})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	detail, err := h.svc.GetOrderDetail(r.Context(), orderID)
	if err != nil {
		respondServiceError(w, "get order", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

// ExecuteAction handles POST /orders/{id}/actions: one workflow action.
func (h *OrderHandler) ExecuteAction(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Action == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "action is required"})
		return
	}

	result, err := h.svc.ExecuteAction(r.Context(), service.ActionRequest{
		OrderID:   orderID,
		Action:    req.Action,
		Reason:    req.Reason,
		Message:   req.Message,
		Confirmed: req.Confirmed,
		Actor:     claims.UserID,
	})
	if err != nil {
		respondServiceError(w, "execute action", err)
		return
	}

	writeJSON(w, http.StatusOK, actionResponse{
		Order:          toOrderResponse(result.Order),
		Notified:       result.Notified,
		Warning:        result.Warning,
		LockedFields:   service.LockedFieldNames(result.Order.Status),
		AllowedActions: service.AllowedActions(result.Order.Status),
	})
}

// Update handles PATCH /orders/{id}: partial edits to unlocked fields.
// Identity, priority, payment, and notes edits are dispatched to the
// service separately so each one hits its own lock rule.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var detail *service.OrderDetail
	deviceChanged := false

	if req.CustomerID != nil || req.CustomerName != nil || req.Email != nil ||
		req.Phone != nil || req.Brand != nil || req.Device != nil ||
		req.DeviceModel != nil || req.SerialNumber != nil {
		result, err := h.svc.SetIntake(r.Context(), orderID, service.IntakeUpdate{
			CustomerID:   req.CustomerID,
			CustomerName: req.CustomerName,
			Email:        req.Email,
			Phone:        req.Phone,
			Brand:        req.Brand,
			Device:       req.Device,
			DeviceModel:  req.DeviceModel,
			SerialNumber: req.SerialNumber,
		})
		if err != nil {
			respondServiceError(w, "update intake", err)
			return
		}
		detail = result.Detail
		deviceChanged = result.DeviceChanged
	}

	if req.Priority != nil {
		detail, err = h.svc.SetPriority(r.Context(), orderID, *req.Priority)
		if err != nil {
			respondServiceError(w, "update priority", err)
			return
		}
	}

	if req.PaidAmount != nil {
		detail, err = h.svc.SetPaidAmount(r.Context(), orderID, *req.PaidAmount)
		if err != nil {
			respondServiceError(w, "update paid amount", err)
			return
		}
	}

	if req.TechnicianNotes != nil || req.AdditionalNotes != nil {
		detail, err = h.svc.SetNotes(r.Context(), orderID, service.NotesUpdate{
			TechnicianNotes: req.TechnicianNotes,
			AdditionalNotes: req.AdditionalNotes,
		})
		if err != nil {
			respondServiceError(w, "update notes", err)
			return
		}
	}

	if detail == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no fields to update"})
		return
	}

	writeJSON(w, http.StatusOK, updateOrderResponse{
		orderDetailResponse: toOrderDetailResponse(detail),
		// The UI should offer a checklist reload when the device changed.
		ChecklistConfirmRequired: deviceChanged,
	})
}

// ReplaceDefects handles PUT /orders/{id}/defects: swap the defect lines
// and recompute billing.
func (h *OrderHandler) ReplaceDefects(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req replaceDefectsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	for i, d := range req.Defects {
		if d.DefectID == "" && d.Title == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatDefectError(i, "defect_id or title is required"),
			})
			return
		}
	}

	detail, err := h.svc.ReplaceDefectLines(r.Context(), orderID, toDefectInputs(req.Defects))
	if err != nil {
		respondServiceError(w, "replace defects", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

// --- Helpers ---

func formatDefectError(idx int, msg string) string {
	return "defects[" + strconv.Itoa(idx) + "]: " + msg
}

func toDefectInputs(reqs []defectLineRequest) []service.DefectLineInput {
	inputs := make([]service.DefectLineInput, len(reqs))
	for i, d := range reqs {
		inputs[i] = service.DefectLineInput{
			DefectID:     d.DefectID,
			Title:        d.Title,
			SellingPrice: d.SellingPrice,
		}
	}
	return inputs
}

// respondServiceError maps known service errors to HTTP status codes.
func respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrStatusConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrFieldLocked),
		errors.Is(err, service.ErrInvalidAction):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case isValidationError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrConfirmationRequired):
		// 409 with a hint so the client can retry with confirmed=true.
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":                 err.Error(),
			"confirmation_required": "true",
		})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrUnknownAction) ||
		errors.Is(err, service.ErrReasonRequired) ||
		errors.Is(err, service.ErrNoDefectLines) ||
		errors.Is(err, service.ErrInvalidItemStatus) ||
		errors.Is(err, service.ErrInvalidPaidAmount) ||
		errors.Is(err, service.ErrInvalidSellingPrice) ||
		errors.Is(err, service.ErrCustomerNameRequired) ||
		errors.Is(err, service.ErrDefectNotFound)
}

func toOrderDetailResponse(d *service.OrderDetail) orderDetailResponse {
	lines := make([]defectLineResponse, len(d.DefectLines))
	for i, l := range d.DefectLines {
		lines[i] = toDefectLineResponse(l)
	}
	items := make([]inspectionItemResponse, len(d.InspectionItems))
	for i, it := range d.InspectionItems {
		items[i] = toInspectionItemResponse(it)
	}
	events := make([]repairEventResponse, len(d.Events))
	for i, e := range d.Events {
		events[i] = toRepairEventResponse(e)
	}
	return orderDetailResponse{
		Order:           toOrderResponse(d.Order),
		DefectLines:     lines,
		InspectionItems: items,
		Events:          events,
		LockedFields:    d.LockedFields,
		AllowedActions:  d.AllowedActions,
	}
}

func toOrderResponse(o database.RepairOrder) orderResponse {
	resp := orderResponse{
		ID:                 o.ID,
		TrackingID:         o.TrackingID,
		CustomerName:       o.CustomerName,
		Status:             o.Status,
		PriorityCharge:     numericToString(o.PriorityCharge),
		BookingDate:        o.BookingDate,
		TotalServiceAmount: numericToString(o.TotalServiceAmount),
		TaxAmount:          numericToString(o.TaxAmount),
		GrandTotal:         numericToString(o.GrandTotal),
		PaidAmount:         numericToString(o.PaidAmount),
		PaymentStatus:      o.PaymentStatus,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	if o.CustomerID.Valid {
		s := uuid.UUID(o.CustomerID.Bytes).String()
		resp.CustomerID = &s
	}
	if o.Email.Valid {
		resp.Email = &o.Email.String
	}
	if o.Phone.Valid {
		resp.Phone = &o.Phone.String
	}
	if o.Brand.Valid {
		resp.Brand = &o.Brand.String
	}
	if o.Device.Valid {
		resp.Device = &o.Device.String
	}
	if o.DeviceModel.Valid {
		resp.DeviceModel = &o.DeviceModel.String
	}
	if o.SerialNumber.Valid {
		resp.SerialNumber = &o.SerialNumber.String
	}
	if o.Priority.Valid {
		resp.Priority = &o.Priority.String
	}
	if o.AssignedTo.Valid {
		s := uuid.UUID(o.AssignedTo.Bytes).String()
		resp.AssignedTo = &s
	}
	if o.ExpectedCompletion.Valid {
		resp.ExpectedCompletion = &o.ExpectedCompletion.Time
	}
	if o.ActualCompletion.Valid {
		resp.ActualCompletion = &o.ActualCompletion.Time
	}
	if o.TechnicianNotes.Valid {
		resp.TechnicianNotes = &o.TechnicianNotes.String
	}
	if o.AdditionalNotes.Valid {
		resp.AdditionalNotes = &o.AdditionalNotes.String
	}
	return resp
}

func toDefectLineResponse(l database.DefectLine) defectLineResponse {
	resp := defectLineResponse{
		ID:           l.ID,
		Title:        l.Title,
		SellingPrice: numericToString(l.SellingPrice),
		SortOrder:    l.SortOrder,
	}
	if l.DefectID.Valid {
		s := uuid.UUID(l.DefectID.Bytes).String()
		resp.DefectID = &s
	}
	return resp
}

func toInspectionItemResponse(it database.InspectionItem) inspectionItemResponse {
	resp := inspectionItemResponse{
		ID:          it.ID,
		ItemName:    it.ItemName,
		IsMandatory: it.IsMandatory,
		Status:      it.Status,
		IsDefective: it.IsDefective,
		Notes:       it.Notes,
		SortOrder:   it.SortOrder,
	}
	if it.Category.Valid {
		resp.Category = &it.Category.String
	}
	return resp
}

func toRepairEventResponse(e database.RepairEvent) repairEventResponse {
	resp := repairEventResponse{
		ID:        e.ID,
		Action:    e.Action,
		CreatedAt: e.CreatedAt,
	}
	if e.FromStatus.Valid {
		resp.FromStatus = &e.FromStatus.String
	}
	if e.ToStatus.Valid {
		resp.ToStatus = &e.ToStatus.String
	}
	if e.Reason.Valid {
		resp.Reason = &e.Reason.String
	}
	if e.Actor.Valid {
		s := uuid.UUID(e.Actor.Bytes).String()
		resp.Actor = &s
	}
	return resp
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
