package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ── Defect lines ──

const createDefectLine = `
INSERT INTO defect_lines (order_id, defect_id, title, selling_price, sort_order)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, defect_id, title, selling_price, sort_order`

type CreateDefectLineParams struct {
	OrderID      uuid.UUID
	DefectID     pgtype.UUID
	Title        string
	SellingPrice pgtype.Numeric
	SortOrder    int32
}

func (q *Queries) CreateDefectLine(ctx context.Context, arg CreateDefectLineParams) (DefectLine, error) {
	var l DefectLine
	err := q.db.QueryRow(ctx, createDefectLine,
		arg.OrderID, arg.DefectID, arg.Title, arg.SellingPrice, arg.SortOrder,
	).Scan(&l.ID, &l.OrderID, &l.DefectID, &l.Title, &l.SellingPrice, &l.SortOrder)
	return l, err
}

const listDefectLinesByOrder = `
SELECT id, order_id, defect_id, title, selling_price, sort_order
FROM defect_lines
WHERE order_id = $1
ORDER BY sort_order, id`

func (q *Queries) ListDefectLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]DefectLine, error) {
	rows, err := q.db.Query(ctx, listDefectLinesByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []DefectLine
	for rows.Next() {
		var l DefectLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.DefectID, &l.Title, &l.SellingPrice, &l.SortOrder); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

const deleteDefectLinesByOrder = `DELETE FROM defect_lines WHERE order_id = $1`

func (q *Queries) DeleteDefectLinesByOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteDefectLinesByOrder, orderID)
	return err
}

// ── Inspection items ──

const createInspectionItem = `
INSERT INTO inspection_items (order_id, item_name, category, is_mandatory, status, is_defective, notes, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, order_id, item_name, category, is_mandatory, status, is_defective, notes, sort_order`

type CreateInspectionItemParams struct {
	OrderID     uuid.UUID
	ItemName    string
	Category    pgtype.Text
	IsMandatory bool
	Status      string
	IsDefective bool
	Notes       string
	SortOrder   int32
}

func (q *Queries) CreateInspectionItem(ctx context.Context, arg CreateInspectionItemParams) (InspectionItem, error) {
	var it InspectionItem
	err := q.db.QueryRow(ctx, createInspectionItem,
		arg.OrderID, arg.ItemName, arg.Category, arg.IsMandatory, arg.Status, arg.IsDefective, arg.Notes, arg.SortOrder,
	).Scan(&it.ID, &it.OrderID, &it.ItemName, &it.Category, &it.IsMandatory, &it.Status, &it.IsDefective, &it.Notes, &it.SortOrder)
	return it, err
}

const listInspectionItemsByOrder = `
SELECT id, order_id, item_name, category, is_mandatory, status, is_defective, notes, sort_order
FROM inspection_items
WHERE order_id = $1
ORDER BY sort_order, id`

func (q *Queries) ListInspectionItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]InspectionItem, error) {
	rows, err := q.db.Query(ctx, listInspectionItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []InspectionItem
	for rows.Next() {
		var it InspectionItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemName, &it.Category, &it.IsMandatory, &it.Status, &it.IsDefective, &it.Notes, &it.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const getInspectionItem = `
SELECT id, order_id, item_name, category, is_mandatory, status, is_defective, notes, sort_order
FROM inspection_items
WHERE id = $1 AND order_id = $2`

type GetInspectionItemParams struct {
	ID      uuid.UUID
	OrderID uuid.UUID
}

func (q *Queries) GetInspectionItem(ctx context.Context, arg GetInspectionItemParams) (InspectionItem, error) {
	var it InspectionItem
	err := q.db.QueryRow(ctx, getInspectionItem, arg.ID, arg.OrderID).
		Scan(&it.ID, &it.OrderID, &it.ItemName, &it.Category, &it.IsMandatory, &it.Status, &it.IsDefective, &it.Notes, &it.SortOrder)
	return it, err
}

const updateInspectionItemStatus = `
UPDATE inspection_items
SET status = $3, is_defective = $4, notes = $5
WHERE id = $1 AND order_id = $2
RETURNING id, order_id, item_name, category, is_mandatory, status, is_defective, notes, sort_order`

type UpdateInspectionItemStatusParams struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Status      string
	IsDefective bool
	Notes       string
}

func (q *Queries) UpdateInspectionItemStatus(ctx context.Context, arg UpdateInspectionItemStatusParams) (InspectionItem, error) {
	var it InspectionItem
	err := q.db.QueryRow(ctx, updateInspectionItemStatus,
		arg.ID, arg.OrderID, arg.Status, arg.IsDefective, arg.Notes,
	).Scan(&it.ID, &it.OrderID, &it.ItemName, &it.Category, &it.IsMandatory, &it.Status, &it.IsDefective, &it.Notes, &it.SortOrder)
	return it, err
}

const bulkUpdateInspectionStatus = `
UPDATE inspection_items
SET status = $2, is_defective = $3, notes = CASE WHEN $2 = '' THEN '' ELSE notes END
WHERE order_id = $1`

type BulkUpdateInspectionStatusParams struct {
	OrderID     uuid.UUID
	Status      string
	IsDefective bool
}

// BulkUpdateInspectionStatus applies one status to every item on the order.
// Reset (empty status) also clears the per-item notes.
func (q *Queries) BulkUpdateInspectionStatus(ctx context.Context, arg BulkUpdateInspectionStatusParams) error {
	_, err := q.db.Exec(ctx, bulkUpdateInspectionStatus, arg.OrderID, arg.Status, arg.IsDefective)
	return err
}

const deleteInspectionItemsByOrder = `DELETE FROM inspection_items WHERE order_id = $1`

func (q *Queries) DeleteInspectionItemsByOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteInspectionItemsByOrder, orderID)
	return err
}

// ── Repair events (audit log) ──

const createRepairEvent = `
INSERT INTO repair_events (order_id, action, from_status, to_status, reason, actor)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_id, action, from_status, to_status, reason, actor, created_at`

type CreateRepairEventParams struct {
	OrderID    uuid.UUID
	Action     string
	FromStatus pgtype.Text
	ToStatus   pgtype.Text
	Reason     pgtype.Text
	Actor      pgtype.UUID
}

func (q *Queries) CreateRepairEvent(ctx context.Context, arg CreateRepairEventParams) (RepairEvent, error) {
	var e RepairEvent
	err := q.db.QueryRow(ctx, createRepairEvent,
		arg.OrderID, arg.Action, arg.FromStatus, arg.ToStatus, arg.Reason, arg.Actor,
	).Scan(&e.ID, &e.OrderID, &e.Action, &e.FromStatus, &e.ToStatus, &e.Reason, &e.Actor, &e.CreatedAt)
	return e, err
}

const listRepairEventsByOrder = `
SELECT id, order_id, action, from_status, to_status, reason, actor, created_at
FROM repair_events
WHERE order_id = $1
ORDER BY created_at, id`

func (q *Queries) ListRepairEventsByOrder(ctx context.Context, orderID uuid.UUID) ([]RepairEvent, error) {
	rows, err := q.db.Query(ctx, listRepairEventsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []RepairEvent
	for rows.Next() {
		var e RepairEvent
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Action, &e.FromStatus, &e.ToStatus, &e.Reason, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
