package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const repairOrderColumns = `id, tracking_id, customer_id, customer_name, email, phone,
	brand, device, device_model, serial_number, status, priority, priority_charge,
	assigned_to, booking_date, expected_completion, actual_completion,
	total_service_amount, tax_amount, grand_total, paid_amount, payment_status,
	technician_notes, additional_notes, created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepairOrder(row rowScanner) (RepairOrder, error) {
	var o RepairOrder
	err := row.Scan(
		&o.ID, &o.TrackingID, &o.CustomerID, &o.CustomerName, &o.Email, &o.Phone,
		&o.Brand, &o.Device, &o.DeviceModel, &o.SerialNumber, &o.Status, &o.Priority, &o.PriorityCharge,
		&o.AssignedTo, &o.BookingDate, &o.ExpectedCompletion, &o.ActualCompletion,
		&o.TotalServiceAmount, &o.TaxAmount, &o.GrandTotal, &o.PaidAmount, &o.PaymentStatus,
		&o.TechnicianNotes, &o.AdditionalNotes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

const createRepairOrder = `
INSERT INTO repair_orders (
	tracking_id, customer_id, customer_name, email, phone,
	brand, device, device_model, serial_number,
	status, priority, priority_charge, assigned_to, booking_date, payment_status, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING ` + repairOrderColumns

type CreateRepairOrderParams struct {
	TrackingID     string
	CustomerID     pgtype.UUID
	CustomerName   string
	Email          pgtype.Text
	Phone          pgtype.Text
	Brand          pgtype.Text
	Device         pgtype.Text
	DeviceModel    pgtype.Text
	SerialNumber   pgtype.Text
	Status         string
	Priority       pgtype.Text
	PriorityCharge pgtype.Numeric
	AssignedTo     pgtype.UUID
	BookingDate    time.Time
	PaymentStatus  string
	CreatedBy      pgtype.UUID
}

func (q *Queries) CreateRepairOrder(ctx context.Context, arg CreateRepairOrderParams) (RepairOrder, error) {
	row := q.db.QueryRow(ctx, createRepairOrder,
		arg.TrackingID, arg.CustomerID, arg.CustomerName, arg.Email, arg.Phone,
		arg.Brand, arg.Device, arg.DeviceModel, arg.SerialNumber,
		arg.Status, arg.Priority, arg.PriorityCharge, arg.AssignedTo, arg.BookingDate,
		arg.PaymentStatus, arg.CreatedBy,
	)
	return scanRepairOrder(row)
}

const getRepairOrder = `
SELECT ` + repairOrderColumns + `
FROM repair_orders
WHERE id = $1`

func (q *Queries) GetRepairOrder(ctx context.Context, id uuid.UUID) (RepairOrder, error) {
	return scanRepairOrder(q.db.QueryRow(ctx, getRepairOrder, id))
}

const listRepairOrders = `
SELECT ` + repairOrderColumns + `
FROM repair_orders
WHERE ($1::text IS NULL OR status = $1)
  AND ($2::uuid IS NULL OR assigned_to = $2)
ORDER BY booking_date DESC
LIMIT $3 OFFSET $4`

type ListRepairOrdersParams struct {
	Status     pgtype.Text
	AssignedTo pgtype.UUID
	Limit      int32
	Offset     int32
}

func (q *Queries) ListRepairOrders(ctx context.Context, arg ListRepairOrdersParams) ([]RepairOrder, error) {
	rows, err := q.db.Query(ctx, listRepairOrders, arg.Status, arg.AssignedTo, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []RepairOrder
	for rows.Next() {
		o, err := scanRepairOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listActiveRepairsByTechnician = `
SELECT ` + repairOrderColumns + `
FROM repair_orders
WHERE assigned_to = $1
  AND status NOT IN ('Delivered', 'Cancelled')
ORDER BY expected_completion ASC NULLS LAST`

// ListActiveRepairsByTechnician returns the technician's open workload,
// soonest deadline first.
func (q *Queries) ListActiveRepairsByTechnician(ctx context.Context, technicianID uuid.UUID) ([]RepairOrder, error) {
	rows, err := q.db.Query(ctx, listActiveRepairsByTechnician, technicianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []RepairOrder
	for rows.Next() {
		o, err := scanRepairOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listOverdueRepairOrders = `
SELECT ` + repairOrderColumns + `
FROM repair_orders
WHERE expected_completion < $1
  AND status NOT IN ('Delivered', 'Cancelled', 'Completed')
ORDER BY expected_completion ASC`

func (q *Queries) ListOverdueRepairOrders(ctx context.Context, asOf time.Time) ([]RepairOrder, error) {
	rows, err := q.db.Query(ctx, listOverdueRepairOrders, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []RepairOrder
	for rows.Next() {
		o, err := scanRepairOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listApprovalReminderCandidates = `
SELECT ` + repairOrderColumns + `
FROM repair_orders
WHERE status = 'Awaiting Customer Approval'
  AND updated_at < $1
ORDER BY updated_at ASC`

// ListApprovalReminderCandidates returns orders that have been waiting on
// customer approval since before the cutoff.
func (q *Queries) ListApprovalReminderCandidates(ctx context.Context, cutoff time.Time) ([]RepairOrder, error) {
	rows, err := q.db.Query(ctx, listApprovalReminderCandidates, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []RepairOrder
	for rows.Next() {
		o, err := scanRepairOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const transitionOrderStatus = `
UPDATE repair_orders
SET status = $3,
    actual_completion = COALESCE($4, actual_completion),
    updated_at = now()
WHERE id = $1 AND status = $2
RETURNING ` + repairOrderColumns

type TransitionOrderStatusParams struct {
	ID               uuid.UUID
	FromStatus       string
	ToStatus         string
	ActualCompletion pgtype.Timestamptz
}

// TransitionOrderStatus applies a status change guarded by the expected
// current status. pgx.ErrNoRows means another session moved the order first.
func (q *Queries) TransitionOrderStatus(ctx context.Context, arg TransitionOrderStatusParams) (RepairOrder, error) {
	row := q.db.QueryRow(ctx, transitionOrderStatus, arg.ID, arg.FromStatus, arg.ToStatus, arg.ActualCompletion)
	return scanRepairOrder(row)
}

const updateOrderIntake = `
UPDATE repair_orders
SET customer_id = $2, customer_name = $3, email = $4, phone = $5,
    brand = $6, device = $7, device_model = $8, serial_number = $9,
    updated_at = now()
WHERE id = $1
RETURNING ` + repairOrderColumns

type UpdateOrderIntakeParams struct {
	ID           uuid.UUID
	CustomerID   pgtype.UUID
	CustomerName string
	Email        pgtype.Text
	Phone        pgtype.Text
	Brand        pgtype.Text
	Device       pgtype.Text
	DeviceModel  pgtype.Text
	SerialNumber pgtype.Text
}

func (q *Queries) UpdateOrderIntake(ctx context.Context, arg UpdateOrderIntakeParams) (RepairOrder, error) {
	row := q.db.QueryRow(ctx, updateOrderIntake,
		arg.ID, arg.CustomerID, arg.CustomerName, arg.Email, arg.Phone,
		arg.Brand, arg.Device, arg.DeviceModel, arg.SerialNumber,
	)
	return scanRepairOrder(row)
}

const updateOrderNotes = `
UPDATE repair_orders
SET technician_notes = $2, additional_notes = $3, updated_at = now()
WHERE id = $1
RETURNING ` + repairOrderColumns

type UpdateOrderNotesParams struct {
	ID              uuid.UUID
	TechnicianNotes pgtype.Text
	AdditionalNotes pgtype.Text
}

func (q *Queries) UpdateOrderNotes(ctx context.Context, arg UpdateOrderNotesParams) (RepairOrder, error) {
	row := q.db.QueryRow(ctx, updateOrderNotes, arg.ID, arg.TechnicianNotes, arg.AdditionalNotes)
	return scanRepairOrder(row)
}

const updateOrderPriority = `
UPDATE repair_orders
SET priority = $2, priority_charge = $3, updated_at = now()
WHERE id = $1
RETURNING ` + repairOrderColumns

type UpdateOrderPriorityParams struct {
	ID             uuid.UUID
	Priority       pgtype.Text
	PriorityCharge pgtype.Numeric
}

func (q *Queries) UpdateOrderPriority(ctx context.Context, arg UpdateOrderPriorityParams) (RepairOrder, error) {
	row := q.db.QueryRow(ctx, updateOrderPriority, arg.ID, arg.Priority, arg.PriorityCharge)
	return scanRepairOrder(row)
}

const updateOrderTotals = `
UPDATE repair_orders
SET total_service_amount = $2, tax_amount = $3, grand_total = $4,
    payment_status = $5, updated_at = now()
WHERE id = $1
RETURNING ` + repairOrderColumns

type UpdateOrderTotalsParams struct {
	ID                 uuid.UUID
	TotalServiceAmount pgtype.Numeric
	TaxAmount          pgtype.Numeric
	GrandTotal         pgtype.Numeric
	PaymentStatus      string
}

func (q *Queries) UpdateOrderTotals(ctx context.Context, arg UpdateOrderTotalsParams) (RepairOrder, error) {
	row := q.db.QueryRow(ctx, updateOrderTotals,
		arg.ID, arg.TotalServiceAmount, arg.TaxAmount, arg.GrandTotal, arg.PaymentStatus,
	)
	return scanRepairOrder(row)
}

const updateOrderPaidAmount = `
UPDATE repair_orders
SET paid_amount = $2, payment_status = $3, updated_at = now()
WHERE id = $1
RETURNING ` + repairOrderColumns

type UpdateOrderPaidAmountParams struct {
	ID            uuid.UUID
	PaidAmount    pgtype.Numeric
	PaymentStatus string
}

func (q *Queries) UpdateOrderPaidAmount(ctx context.Context, arg UpdateOrderPaidAmountParams) (RepairOrder, error) {
	row := q.db.QueryRow(ctx, updateOrderPaidAmount, arg.ID, arg.PaidAmount, arg.PaymentStatus)
	return scanRepairOrder(row)
}

const updateOrderExpectedCompletion = `
UPDATE repair_orders
SET expected_completion = $2, updated_at = now()
WHERE id = $1
RETURNING ` + repairOrderColumns

type UpdateOrderExpectedCompletionParams struct {
	ID                 uuid.UUID
	ExpectedCompletion pgtype.Timestamptz
}

func (q *Queries) UpdateOrderExpectedCompletion(ctx context.Context, arg UpdateOrderExpectedCompletionParams) (RepairOrder, error) {
	row := q.db.QueryRow(ctx, updateOrderExpectedCompletion, arg.ID, arg.ExpectedCompletion)
	return scanRepairOrder(row)
}
