package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/repairbox/api/internal/database"
	"github.com/repairbox/api/internal/enum"
	"github.com/repairbox/api/internal/notify"
	"github.com/shopspring/decimal"
)

const maxTrackingIDRetries = 3

// completionBuffer pads the estimated repair time when deriving the
// expected completion date.
const completionBuffer = 1.2

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store defines the DB methods the repair order service needs.
// Satisfied by *database.Queries (and its WithTx variant).
type Store interface {
	GetRepairOrder(ctx context.Context, id uuid.UUID) (database.RepairOrder, error)
	CreateRepairOrder(ctx context.Context, arg database.CreateRepairOrderParams) (database.RepairOrder, error)
	TransitionOrderStatus(ctx context.Context, arg database.TransitionOrderStatusParams) (database.RepairOrder, error)
	UpdateOrderIntake(ctx context.Context, arg database.UpdateOrderIntakeParams) (database.RepairOrder, error)
	UpdateOrderNotes(ctx context.Context, arg database.UpdateOrderNotesParams) (database.RepairOrder, error)
	UpdateOrderPriority(ctx context.Context, arg database.UpdateOrderPriorityParams) (database.RepairOrder, error)
	UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.RepairOrder, error)
	UpdateOrderPaidAmount(ctx context.Context, arg database.UpdateOrderPaidAmountParams) (database.RepairOrder, error)
	UpdateOrderExpectedCompletion(ctx context.Context, arg database.UpdateOrderExpectedCompletionParams) (database.RepairOrder, error)

	CreateDefectLine(ctx context.Context, arg database.CreateDefectLineParams) (database.DefectLine, error)
	ListDefectLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.DefectLine, error)
	DeleteDefectLinesByOrder(ctx context.Context, orderID uuid.UUID) error

	CreateInspectionItem(ctx context.Context, arg database.CreateInspectionItemParams) (database.InspectionItem, error)
	ListInspectionItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.InspectionItem, error)
	GetInspectionItem(ctx context.Context, arg database.GetInspectionItemParams) (database.InspectionItem, error)
	UpdateInspectionItemStatus(ctx context.Context, arg database.UpdateInspectionItemStatusParams) (database.InspectionItem, error)
	BulkUpdateInspectionStatus(ctx context.Context, arg database.BulkUpdateInspectionStatusParams) error
	DeleteInspectionItemsByOrder(ctx context.Context, orderID uuid.UUID) error

	CreateRepairEvent(ctx context.Context, arg database.CreateRepairEventParams) (database.RepairEvent, error)
	ListRepairEventsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.RepairEvent, error)

	GetDefaultStatus(ctx context.Context) (database.RepairStatusConfig, error)
	GetStatusConfig(ctx context.Context, name string) (database.RepairStatusConfig, error)
	GetDefaultPriority(ctx context.Context) (database.RepairPriority, error)
	GetPriority(ctx context.Context, name string) (database.RepairPriority, error)
	GetDefect(ctx context.Context, id uuid.UUID) (database.Defect, error)
	GetChecklistTemplateByDevice(ctx context.Context, device string) (database.ChecklistTemplate, error)
	ListChecklistTemplateItems(ctx context.Context, templateID uuid.UUID) ([]database.ChecklistTemplateItem, error)
}

// NewStore creates a Store from a DBTX (pool or tx), so the service can
// bind query methods to transactions it opens.
type NewStore func(db database.DBTX) Store

// Broadcaster pushes order events to the live workshop board.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

// OrderService owns the repair order workflow: creation, derived billing,
// status transitions, field locking, and the inspection checklist.
type OrderService struct {
	store    Store
	pool     TxBeginner
	newStore NewStore
	notifier notify.Sender
	board    Broadcaster
	now      func() time.Time
}

// NewOrderService creates a new OrderService. board may be nil when no live
// board is attached.
func NewOrderService(store Store, pool TxBeginner, newStore NewStore, notifier notify.Sender, board Broadcaster) *OrderService {
	return &OrderService{
		store:    store,
		pool:     pool,
		newStore: newStore,
		notifier: notifier,
		board:    board,
		now:      time.Now,
	}
}

// --- Requests / results ---

// CreateOrderRequest is the validated input for booking a repair.
type CreateOrderRequest struct {
	CustomerID   string
	CustomerName string
	Email        string
	Phone        string
	Brand        string
	Device       string
	DeviceModel  string
	SerialNumber string
	Priority     string // empty means use the configured default
	AssignedTo   string
	BookingDate  string // RFC3339, empty means now
	Defects      []DefectLineInput
	CreatedBy    uuid.UUID
}

// DefectLineInput is one requested defect line. An empty SellingPrice means
// "take the catalog price"; the stored price stays editable afterwards.
type DefectLineInput struct {
	DefectID     string
	Title        string
	SellingPrice string
}

// OrderDetail is the full order view handed to the UI on load: the order,
// its child collections, and the derived lock/action sets for the current
// status.
type OrderDetail struct {
	Order           database.RepairOrder
	DefectLines     []database.DefectLine
	InspectionItems []database.InspectionItem
	Events          []database.RepairEvent
	LockedFields    []string
	AllowedActions  []string
}

// --- Creation ---

// CreateOrder books a new repair: defaults status/priority from the
// configured defaults (soft lookups), prices the requested defect lines
// from the catalog, derives billing totals and the expected completion
// date, all in one transaction. Retries on tracking ID collisions.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderDetail, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, ErrCustomerNameRequired
	}

	var lastErr error
	for attempt := 0; attempt < maxTrackingIDRetries; attempt++ {
		detail, err := s.createOrderTx(ctx, req)
		if err == nil {
			if s.board != nil {
				s.board.Broadcast("order.created", boardPayload(detail.Order))
			}
			return detail, nil
		}
		if isTrackingIDConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func isTrackingIDConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "repair_orders_tracking_id_key"
	}
	return false
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// Default status: soft lookup, fall back to Pending Review.
	status := enum.StatusPendingReview
	if sc, err := store.GetDefaultStatus(ctx); err == nil {
		status = sc.Name
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get default status: %w", err)
	}

	// Priority: requested or configured default; its surcharge is an input
	// to the pricing engine. A missing lookup means no charge.
	priority := pgtype.Text{}
	priorityCharge := decimal.Zero
	priorityName := req.Priority
	if priorityName == "" {
		if p, err := store.GetDefaultPriority(ctx); err == nil {
			priorityName = p.Name
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get default priority: %w", err)
		}
	}
	if priorityName != "" {
		priority = pgtype.Text{String: priorityName, Valid: true}
		if p, err := store.GetPriority(ctx, priorityName); err == nil {
			priorityCharge = numericToDecimal(p.ExtraCharge)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get priority: %w", err)
		}
	}

	bookingDate := s.now()
	if req.BookingDate != "" {
		t, err := time.Parse(time.RFC3339, req.BookingDate)
		if err != nil {
			return nil, fmt.Errorf("invalid booking_date: %w", err)
		}
		bookingDate = t
	}

	customerID := pgtype.UUID{}
	if req.CustomerID != "" {
		cid, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("invalid customer_id: %w", err)
		}
		customerID = pgtype.UUID{Bytes: cid, Valid: true}
	}

	assignedTo := pgtype.UUID{}
	if req.AssignedTo != "" {
		aid, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("invalid assigned_to: %w", err)
		}
		assignedTo = pgtype.UUID{Bytes: aid, Valid: true}
	}

	order, err := store.CreateRepairOrder(ctx, database.CreateRepairOrderParams{
		TrackingID:     s.generateTrackingID(),
		CustomerID:     customerID,
		CustomerName:   strings.TrimSpace(req.CustomerName),
		Email:          textOrNull(req.Email),
		Phone:          textOrNull(req.Phone),
		Brand:          textOrNull(req.Brand),
		Device:         textOrNull(req.Device),
		DeviceModel:    textOrNull(req.DeviceModel),
		SerialNumber:   textOrNull(req.SerialNumber),
		Status:         status,
		Priority:       priority,
		PriorityCharge: decimalToNumeric(priorityCharge),
		AssignedTo:     assignedTo,
		BookingDate:    bookingDate,
		PaymentStatus:  enum.PaymentStatusUnpaid,
		CreatedBy:      pgtype.UUID{Bytes: req.CreatedBy, Valid: req.CreatedBy != uuid.Nil},
	})
	if err != nil {
		return nil, fmt.Errorf("create repair order: %w", err)
	}

	lines, estimatedMinutes, err := s.insertDefectLines(ctx, store, order.ID, req.Defects)
	if err != nil {
		return nil, err
	}

	order, err = s.applyTotals(ctx, store, order, lines)
	if err != nil {
		return nil, err
	}

	// Auto-derive the expected completion from the catalog repair times,
	// with a buffer on top.
	if estimatedMinutes > 0 {
		expected := bookingDate.Add(time.Duration(float64(estimatedMinutes)*completionBuffer) * time.Minute)
		order, err = store.UpdateOrderExpectedCompletion(ctx, database.UpdateOrderExpectedCompletionParams{
			ID:                 order.ID,
			ExpectedCompletion: pgtype.Timestamptz{Time: expected, Valid: true},
		})
		if err != nil {
			return nil, fmt.Errorf("set expected completion: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &OrderDetail{
		Order:          order,
		DefectLines:    lines,
		LockedFields:   LockedFieldNames(order.Status),
		AllowedActions: AllowedActions(order.Status),
	}, nil
}

// insertDefectLines creates the requested lines, pricing unpriced ones from
// the defect catalog, and returns the lines plus the summed estimated
// repair minutes.
func (s *OrderService) insertDefectLines(ctx context.Context, store Store, orderID uuid.UUID, inputs []DefectLineInput) ([]database.DefectLine, int32, error) {
	var lines []database.DefectLine
	var estimatedMinutes int32

	for i, in := range inputs {
		defectID := pgtype.UUID{}
		title := strings.TrimSpace(in.Title)
		price := decimal.Zero

		if in.SellingPrice != "" {
			p, err := decimal.NewFromString(in.SellingPrice)
			if err != nil || p.IsNegative() {
				return nil, 0, fmt.Errorf("defects[%d]: %w", i, ErrInvalidSellingPrice)
			}
			price = p
		}

		if in.DefectID != "" {
			did, err := uuid.Parse(in.DefectID)
			if err != nil {
				return nil, 0, fmt.Errorf("defects[%d]: %w", i, ErrDefectNotFound)
			}
			defect, err := store.GetDefect(ctx, did)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, 0, fmt.Errorf("defects[%d]: %w", i, ErrDefectNotFound)
				}
				return nil, 0, fmt.Errorf("defects[%d]: get defect: %w", i, err)
			}
			defectID = pgtype.UUID{Bytes: did, Valid: true}
			if title == "" {
				title = defect.Title
			}
			if in.SellingPrice == "" {
				price = numericToDecimal(defect.SellingPrice)
			}
			if defect.EstimatedMinutes.Valid {
				estimatedMinutes += defect.EstimatedMinutes.Int32
			}
		}

		line, err := store.CreateDefectLine(ctx, database.CreateDefectLineParams{
			OrderID:      orderID,
			DefectID:     defectID,
			Title:        title,
			SellingPrice: decimalToNumeric(price),
			SortOrder:    int32(i),
		})
		if err != nil {
			return nil, 0, fmt.Errorf("create defect line: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, estimatedMinutes, nil
}

// applyTotals recomputes billing from the given lines and persists it,
// keeping payment status in step with the new grand total.
func (s *OrderService) applyTotals(ctx context.Context, store Store, order database.RepairOrder, lines []database.DefectLine) (database.RepairOrder, error) {
	totals := RecomputeTotals(lines, order.PriorityCharge)
	paymentStatus := RecomputePaymentStatus(numericToDecimal(order.PaidAmount), totals.GrandTotal)

	updated, err := store.UpdateOrderTotals(ctx, database.UpdateOrderTotalsParams{
		ID:                 order.ID,
		TotalServiceAmount: decimalToNumeric(totals.TotalServiceAmount),
		TaxAmount:          decimalToNumeric(totals.TaxAmount),
		GrandTotal:         decimalToNumeric(totals.GrandTotal),
		PaymentStatus:      paymentStatus,
	})
	if err != nil {
		return order, fmt.Errorf("update totals: %w", err)
	}
	return updated, nil
}

// --- Load ---

// GetOrderDetail assembles the full order view for the UI, including the
// lock set and allowed actions for the current status.
func (s *OrderService) GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.store.GetRepairOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get repair order: %w", err)
	}

	lines, err := s.store.ListDefectLinesByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list defect lines: %w", err)
	}
	items, err := s.store.ListInspectionItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list inspection items: %w", err)
	}
	events, err := s.store.ListRepairEventsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list repair events: %w", err)
	}

	return &OrderDetail{
		Order:           order,
		DefectLines:     lines,
		InspectionItems: items,
		Events:          events,
		LockedFields:    LockedFieldNames(order.Status),
		AllowedActions:  AllowedActions(order.Status),
	}, nil
}

// --- Field edits ---

// SetPriority changes the order priority, refreshes the surcharge from the
// priority master (a missing lookup means zero charge) and recomputes the
// billing totals.
func (s *OrderService) SetPriority(ctx context.Context, orderID uuid.UUID, priority string) (*OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetRepairOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get repair order: %w", err)
	}

	charge := decimal.Zero
	if priority != "" {
		if p, err := store.GetPriority(ctx, priority); err == nil {
			charge = numericToDecimal(p.ExtraCharge)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get priority: %w", err)
		}
	}

	order, err = store.UpdateOrderPriority(ctx, database.UpdateOrderPriorityParams{
		ID:             orderID,
		Priority:       textOrNull(priority),
		PriorityCharge: decimalToNumeric(charge),
	})
	if err != nil {
		return nil, fmt.Errorf("update priority: %w", err)
	}

	lines, err := store.ListDefectLinesByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list defect lines: %w", err)
	}
	order, err = s.applyTotals(ctx, store, order, lines)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.broadcastUpdated(order)
	return &OrderDetail{
		Order:          order,
		DefectLines:    lines,
		LockedFields:   LockedFieldNames(order.Status),
		AllowedActions: AllowedActions(order.Status),
	}, nil
}

// SetPaidAmount records a payment and re-derives the payment status.
// Rejected while the paid amount field is locked for the current status.
func (s *OrderService) SetPaidAmount(ctx context.Context, orderID uuid.UUID, paidAmount string) (*OrderDetail, error) {
	paid, err := decimal.NewFromString(paidAmount)
	if err != nil || paid.IsNegative() {
		return nil, ErrInvalidPaidAmount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetRepairOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get repair order: %w", err)
	}

	if LockedFields(order.Status)[FieldPaidAmount] {
		return nil, fmt.Errorf("%w: %s", ErrFieldLocked, FieldPaidAmount)
	}

	order, err = store.UpdateOrderPaidAmount(ctx, database.UpdateOrderPaidAmountParams{
		ID:            orderID,
		PaidAmount:    decimalToNumeric(paid),
		PaymentStatus: RecomputePaymentStatus(paid, numericToDecimal(order.GrandTotal)),
	})
	if err != nil {
		return nil, fmt.Errorf("update paid amount: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.broadcastUpdated(order)
	return &OrderDetail{
		Order:          order,
		LockedFields:   LockedFieldNames(order.Status),
		AllowedActions: AllowedActions(order.Status),
	}, nil
}

// NotesUpdate carries note edits; nil means leave unchanged.
type NotesUpdate struct {
	TechnicianNotes *string
	AdditionalNotes *string
}

// SetNotes updates the free-text notes, rejected once notes are locked.
func (s *OrderService) SetNotes(ctx context.Context, orderID uuid.UUID, upd NotesUpdate) (*OrderDetail, error) {
	order, err := s.store.GetRepairOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get repair order: %w", err)
	}

	locked := LockedFields(order.Status)
	if upd.TechnicianNotes != nil && locked[FieldTechnicianNotes] {
		return nil, fmt.Errorf("%w: %s", ErrFieldLocked, FieldTechnicianNotes)
	}
	if upd.AdditionalNotes != nil && locked[FieldAdditionalNotes] {
		return nil, fmt.Errorf("%w: %s", ErrFieldLocked, FieldAdditionalNotes)
	}

	technician := order.TechnicianNotes
	if upd.TechnicianNotes != nil {
		technician = textOrNull(*upd.TechnicianNotes)
	}
	additional := order.AdditionalNotes
	if upd.AdditionalNotes != nil {
		additional = textOrNull(*upd.AdditionalNotes)
	}

	order, err = s.store.UpdateOrderNotes(ctx, database.UpdateOrderNotesParams{
		ID:              orderID,
		TechnicianNotes: technician,
		AdditionalNotes: additional,
	})
	if err != nil {
		return nil, fmt.Errorf("update notes: %w", err)
	}

	return &OrderDetail{
		Order:          order,
		LockedFields:   LockedFieldNames(order.Status),
		AllowedActions: AllowedActions(order.Status),
	}, nil
}

// IntakeUpdate carries edits to customer and device identity; nil means
// leave unchanged.
type IntakeUpdate struct {
	CustomerID   *string
	CustomerName *string
	Email        *string
	Phone        *string
	Brand        *string
	Device       *string
	DeviceModel  *string
	SerialNumber *string
}

// IntakeResult reports the updated order and whether the device changed,
// which is the caller's cue to offer a checklist reload.
type IntakeResult struct {
	Detail        *OrderDetail
	DeviceChanged bool
}

// SetIntake edits the customer and device identity fields, permitted only
// while the order is still in review.
func (s *OrderService) SetIntake(ctx context.Context, orderID uuid.UUID, upd IntakeUpdate) (*IntakeResult, error) {
	order, err := s.store.GetRepairOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get repair order: %w", err)
	}

	if LockedFields(order.Status)[FieldCustomer] {
		return nil, fmt.Errorf("%w: %s", ErrFieldLocked, FieldCustomer)
	}

	customerID := order.CustomerID
	if upd.CustomerID != nil {
		customerID = pgtype.UUID{}
		if *upd.CustomerID != "" {
			cid, err := uuid.Parse(*upd.CustomerID)
			if err != nil {
				return nil, fmt.Errorf("invalid customer_id: %w", err)
			}
			customerID = pgtype.UUID{Bytes: cid, Valid: true}
		}
	}

	customerName := order.CustomerName
	if upd.CustomerName != nil {
		if strings.TrimSpace(*upd.CustomerName) == "" {
			return nil, ErrCustomerNameRequired
		}
		customerName = strings.TrimSpace(*upd.CustomerName)
	}

	device := order.Device
	deviceChanged := false
	if upd.Device != nil {
		device = textOrNull(*upd.Device)
		deviceChanged = device.String != order.Device.String || device.Valid != order.Device.Valid
	}

	order, err = s.store.UpdateOrderIntake(ctx, database.UpdateOrderIntakeParams{
		ID:           orderID,
		CustomerID:   customerID,
		CustomerName: customerName,
		Email:        textPtrOr(upd.Email, order.Email),
		Phone:        textPtrOr(upd.Phone, order.Phone),
		Brand:        textPtrOr(upd.Brand, order.Brand),
		Device:       device,
		DeviceModel:  textPtrOr(upd.DeviceModel, order.DeviceModel),
		SerialNumber: textPtrOr(upd.SerialNumber, order.SerialNumber),
	})
	if err != nil {
		return nil, fmt.Errorf("update intake: %w", err)
	}

	return &IntakeResult{
		Detail: &OrderDetail{
			Order:          order,
			LockedFields:   LockedFieldNames(order.Status),
			AllowedActions: AllowedActions(order.Status),
		},
		DeviceChanged: deviceChanged,
	}, nil
}

// ReplaceDefectLines swaps the order's defect lines for the given set and
// recomputes billing. Rejected once defect lines are locked.
func (s *OrderService) ReplaceDefectLines(ctx context.Context, orderID uuid.UUID, inputs []DefectLineInput) (*OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetRepairOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get repair order: %w", err)
	}

	if LockedFields(order.Status)[FieldDefectLines] {
		return nil, fmt.Errorf("%w: %s", ErrFieldLocked, FieldDefectLines)
	}

	if err := store.DeleteDefectLinesByOrder(ctx, orderID); err != nil {
		return nil, fmt.Errorf("delete defect lines: %w", err)
	}

	lines, estimatedMinutes, err := s.insertDefectLines(ctx, store, orderID, inputs)
	if err != nil {
		return nil, err
	}

	order, err = s.applyTotals(ctx, store, order, lines)
	if err != nil {
		return nil, err
	}

	if !order.ExpectedCompletion.Valid && estimatedMinutes > 0 {
		expected := order.BookingDate.Add(time.Duration(float64(estimatedMinutes)*completionBuffer) * time.Minute)
		order, err = store.UpdateOrderExpectedCompletion(ctx, database.UpdateOrderExpectedCompletionParams{
			ID:                 orderID,
			ExpectedCompletion: pgtype.Timestamptz{Time: expected, Valid: true},
		})
		if err != nil {
			return nil, fmt.Errorf("set expected completion: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.broadcastUpdated(order)
	return &OrderDetail{
		Order:          order,
		DefectLines:    lines,
		LockedFields:   LockedFieldNames(order.Status),
		AllowedActions: AllowedActions(order.Status),
	}, nil
}

// --- Helpers ---

const trackingIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func (s *OrderService) generateTrackingID() string {
	b := make([]byte, 5)
	for i := range b {
		b[i] = trackingIDCharset[rand.Intn(len(trackingIDCharset))]
	}
	return "RB-" + string(b)
}

func (s *OrderService) broadcastUpdated(order database.RepairOrder) {
	if s.board != nil {
		s.board.Broadcast("order.updated", boardPayload(order))
	}
}

// boardEvent is the payload pushed to the live workshop board.
type boardEvent struct {
	ID            uuid.UUID `json:"id"`
	TrackingID    string    `json:"tracking_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Device        string    `json:"device"`
}

func boardPayload(o database.RepairOrder) boardEvent {
	return boardEvent{
		ID:            o.ID,
		TrackingID:    o.TrackingID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Device:        o.Device.String,
	}
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func textPtrOr(p *string, current pgtype.Text) pgtype.Text {
	if p == nil {
		return current
	}
	return textOrNull(*p)
}
