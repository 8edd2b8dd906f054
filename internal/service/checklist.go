package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/repairbox/api/internal/database"
	"github.com/repairbox/api/internal/enum"
)

// ChecklistResult reports a populate run. TemplateFound is false when the
// device has no checklist template, which is not an error: the order just
// has no checklist to load.
type ChecklistResult struct {
	TemplateFound bool
	TemplateName  string
	Items         []database.InspectionItem
}

// PopulateChecklist loads the inspection checklist for the order's device
// from the matching template. When the order already has items, the caller
// must pass replace=true to wipe and reload them; otherwise the existing
// items stay untouched and ErrChecklistExists is returned.
func (s *OrderService) PopulateChecklist(ctx context.Context, orderID uuid.UUID, replace bool) (*ChecklistResult, error) {
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

	if LockedFields(order.Status)[FieldInspectionItems] {
		return nil, fmt.Errorf("%w: %s", ErrFieldLocked, FieldInspectionItems)
	}
	if !order.Device.Valid {
		return &ChecklistResult{}, nil
	}

	template, err := store.GetChecklistTemplateByDevice(ctx, order.Device.String)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &ChecklistResult{}, nil
		}
		return nil, fmt.Errorf("get checklist template: %w", err)
	}

	existing, err := store.ListInspectionItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list inspection items: %w", err)
	}
	if len(existing) > 0 && !replace {
		return nil, ErrChecklistExists
	}
	if len(existing) > 0 {
		if err := store.DeleteInspectionItemsByOrder(ctx, orderID); err != nil {
			return nil, fmt.Errorf("delete inspection items: %w", err)
		}
	}

	templateItems, err := store.ListChecklistTemplateItems(ctx, template.ID)
	if err != nil {
		return nil, fmt.Errorf("list template items: %w", err)
	}

	items := make([]database.InspectionItem, 0, len(templateItems))
	for _, ti := range templateItems {
		item, err := store.CreateInspectionItem(ctx, database.CreateInspectionItemParams{
			OrderID:     orderID,
			ItemName:    ti.ItemName,
			Category:    ti.Category,
			IsMandatory: ti.IsMandatory,
			Status:      enum.InspectionStatusUnset,
			SortOrder:   ti.SortOrder,
		})
		if err != nil {
			return nil, fmt.Errorf("create inspection item: %w", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &ChecklistResult{
		TemplateFound: true,
		TemplateName:  template.TemplateName,
		Items:         items,
	}, nil
}

// normalizeInspectionStatus maps the legacy "Not Tested" label to unset and
// validates the result against the allowed statuses.
func normalizeInspectionStatus(status string) (string, error) {
	if status == enum.InspectionStatusNotTested {
		status = enum.InspectionStatusUnset
	}
	switch status {
	case enum.InspectionStatusUnset, enum.InspectionStatusPass,
		enum.InspectionStatusFail, enum.InspectionStatusNA:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidItemStatus, status)
}

// SetInspectionStatus records one checklist result. The defective flag is
// derived, never client-supplied: an item is defective exactly when it
// fails. nil notes leave the stored notes unchanged.
func (s *OrderService) SetInspectionStatus(ctx context.Context, orderID, itemID uuid.UUID, status string, notes *string) (database.InspectionItem, error) {
	normalized, err := normalizeInspectionStatus(status)
	if err != nil {
		return database.InspectionItem{}, err
	}

	order, err := s.store.GetRepairOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.InspectionItem{}, ErrOrderNotFound
		}
		return database.InspectionItem{}, fmt.Errorf("get repair order: %w", err)
	}
	if LockedFields(order.Status)[FieldInspectionItems] {
		return database.InspectionItem{}, fmt.Errorf("%w: %s", ErrFieldLocked, FieldInspectionItems)
	}

	item, err := s.store.GetInspectionItem(ctx, database.GetInspectionItemParams{
		ID:      itemID,
		OrderID: orderID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.InspectionItem{}, ErrItemNotFound
		}
		return database.InspectionItem{}, fmt.Errorf("get inspection item: %w", err)
	}

	newNotes := item.Notes
	if notes != nil {
		newNotes = *notes
	}

	return s.store.UpdateInspectionItemStatus(ctx, database.UpdateInspectionItemStatusParams{
		ID:          itemID,
		OrderID:     orderID,
		Status:      normalized,
		IsDefective: normalized == enum.InspectionStatusFail,
		Notes:       newNotes,
	})
}

// BulkSetInspectionStatus applies one status to every checklist item on the
// order (all-pass, all-N/A, or reset to unset, which also clears notes).
func (s *OrderService) BulkSetInspectionStatus(ctx context.Context, orderID uuid.UUID, status string) ([]database.InspectionItem, error) {
	normalized, err := normalizeInspectionStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.store.GetRepairOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get repair order: %w", err)
	}
	if LockedFields(order.Status)[FieldInspectionItems] {
		return nil, fmt.Errorf("%w: %s", ErrFieldLocked, FieldInspectionItems)
	}

	if err := s.store.BulkUpdateInspectionStatus(ctx, database.BulkUpdateInspectionStatusParams{
		OrderID:     orderID,
		Status:      normalized,
		IsDefective: normalized == enum.InspectionStatusFail,
	}); err != nil {
		return nil, fmt.Errorf("bulk update inspection items: %w", err)
	}

	return s.store.ListInspectionItemsByOrder(ctx, orderID)
}
