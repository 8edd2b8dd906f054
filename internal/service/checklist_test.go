package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/repairbox/api/internal/database"
	"github.com/repairbox/api/internal/enum"
)

func TestPopulateChecklistFromTemplate(t *testing.T) {
	order := testOrder(enum.StatusPendingReview)
	templateID := uuid.MustParse("b5f9c1f1-3f41-4a88-9c99-0f6f56b5b001")

	var created []database.CreateInspectionItemParams
	store := &mockStore{
		getRepairOrderFn: func(ctx context.Context, id uuid.UUID) (database.RepairOrder, error) {
			return order, nil
		},
		getChecklistTemplateByDeviceFn: func(ctx context.Context, device string) (database.ChecklistTemplate, error) {
			if device != "iPhone 12" {
				t.Fatalf("looked up template for %q", device)
			}
			return database.ChecklistTemplate{ID: templateID, TemplateName: "Smartphone Standard"}, nil
		},
		listInspectionItemsByOrderFn: func(ctx context.Context, orderID uuid.UUID) ([]database.InspectionItem, error) {
			return nil, nil
		},
		listChecklistTemplateItemsFn: func(ctx context.Context, id uuid.UUID) ([]database.ChecklistTemplateItem, error) {
			return []database.ChecklistTemplateItem{
				{ItemName: "Display", IsMandatory: true, SortOrder: 0},
				{ItemName: "Battery Health", SortOrder: 1},
			}, nil
		},
		createInspectionItemFn: func(ctx context.Context, arg database.CreateInspectionItemParams) (database.InspectionItem, error) {
			created = append(created, arg)
			return database.InspectionItem{OrderID: arg.OrderID, ItemName: arg.ItemName, Status: arg.Status}, nil
		},
	}
	svc, tx := newTestService(store, &mockSender{}, nil)

	result, err := svc.PopulateChecklist(context.Background(), order.ID, false)
	if err != nil {
		t.Fatalf("PopulateChecklist: %v", err)
	}
	if !result.TemplateFound {
		t.Fatal("TemplateFound = false")
	}
	if result.TemplateName != "Smartphone Standard" {
		t.Errorf("TemplateName = %q", result.TemplateName)
	}
	if len(created) != 2 {
		t.Fatalf("created %d items, want 2", len(created))
	}
	for _, arg := range created {
		if arg.Status != enum.InspectionStatusUnset {
			t.Errorf("new item %q starts at %q, want unset", arg.ItemName, arg.Status)
		}
		if arg.IsDefective {
			t.Errorf("new item %q starts defective", arg.ItemName)
		}
	}
	if !tx.committed {
		t.Error("transaction not committed")
	}
}

func TestPopulateChecklistNoTemplate(t *testing.T) {
	order := testOrder(enum.StatusPendingReview)
	store := &mockStore{
		getRepairOrderFn: func(ctx context.Context, id uuid.UUID) (database.RepairOrder, error) {
			return order, nil
		},
		getChecklistTemplateByDeviceFn: func(ctx context.Context, device string) (database.ChecklistTemplate, error) {
			return database.ChecklistTemplate{}, pgx.ErrNoRows
		},
	}
	svc, tx := newTestService(store, &mockSender{}, nil)

	result, err := svc.PopulateChecklist(context.Background(), order.ID, false)
	if err != nil {
		t.Fatalf("missing template must not be an error: %v", err)
	}
	if result.TemplateFound {
		t.Error("TemplateFound = true")
	}
	if tx.committed {
		t.Error("nothing to commit when no template matches")
	}
}

func TestPopulateChecklistExistingNeedsReplace(t *testing.T) {
	order := testOrder(enum.StatusInProgress)
	store := &mockStore{
		getRepairOrderFn: func(ctx context.Context, id uuid.UUID) (database.RepairOrder, error) {
			return order, nil
		},
		getChecklistTemplateByDeviceFn: func(ctx context.Context, device string) (database.ChecklistTemplate, error) {
			return database.ChecklistTemplate{ID: uuid.New(), TemplateName: "Smartphone Standard"}, nil
		},
		listInspectionItemsByOrderFn: func(ctx context.Context, orderID uuid.UUID) ([]database.InspectionItem, error) {
			return []database.InspectionItem{{ItemName: "Display", Status: enum.InspectionStatusPass}}, nil
		},
	}
	svc, _ := newTestService(store, &mockSender{}, nil)

	_, err := svc.PopulateChecklist(context.Background(), order.ID, false)
	if !errors.Is(err, ErrChecklistExists) {
		t.Fatalf("err = %v, want ErrChecklistExists", err)
	}
}

func TestPopulateChecklistReplaceWipes(t *testing.T) {
	order := testOrder(enum.StatusInProgress)
	deleted := false
	store := &mockStore{
		getRepairOrderFn: func(ctx context.Context, id uuid.UUID) (database.RepairOrder, error) {
			return order, nil
		},
		getChecklistTemplateByDeviceFn: func(ctx context.Context, device string) (database.ChecklistTemplate, error) {
			return database.ChecklistTemplate{ID: uuid.New(), TemplateName: "Smartphone Standard"}, nil
		},
		listInspectionItemsByOrderFn: func(ctx context.Context, orderID uuid.UUID) ([]database.InspectionItem, error) {
			return []database.InspectionItem{{ItemName: "Display", Status: enum.InspectionStatusPass}}, nil
		},
		deleteInspectionItemsByOrderFn: func(ctx context.Context, orderID uuid.UUID) error {
			deleted = true
			return nil
		},
		listChecklistTemplateItemsFn: func(ctx context.Context, id uuid.UUID) ([]database.ChecklistTemplateItem, error) {
			return []database.ChecklistTemplateItem{{ItemName: "Display"}}, nil
		},
		createInspectionItemFn: func(ctx context.Context, arg database.CreateInspectionItemParams) (database.InspectionItem, error) {
			return database.InspectionItem{ItemName: arg.ItemName}, nil
		},
	}
	svc, tx := newTestService(store, &mockSender{}, nil)

	result, err := svc.PopulateChecklist(context.Background(), order.ID, true)
	if err != nil {
		t.Fatalf("PopulateChecklist: %v", err)
	}
	if !deleted {
		t.Error("existing items not wiped before reload")
	}
	if !result.TemplateFound || !tx.committed {
		t.Error("replace run should commit a fresh checklist")
	}
}

func TestPopulateChecklistLockedStatus(t *testing.T) {
	order := testOrder(enum.StatusCompleted)
	store := &mockStore{
		getRepairOrderFn: func(ctx context.Context, id uuid.UUID) (database.RepairOrder, error) {
			return order, nil
		},
	}
	svc, _ := newTestService(store, &mockSender{}, nil)

	_, err := svc.PopulateChecklist(context.Background(), order.ID, true)
	if !errors.Is(err, ErrFieldLocked) {
		t.Fatalf("err = %v, want ErrFieldLocked", err)
	}
}

func TestSetInspectionStatusFailMarksDefective(t *testing.T) {
	order := testOrder(enum.StatusInProgress)
	itemID := uuid.MustParse("3f0ac1d4-71c2-4a3e-8a73-3bd62e9a9c11")

	store := &mockStore{
		getRepairOrderFn: func(ctx context.Context, id uuid.UUID) (database.RepairOrder, error) {
			return order, nil
		},
		getInspectionItemFn: func(ctx context.Context, arg database.GetInspectionItemParams) (database.InspectionItem, error) {
			return database.InspectionItem{ID: arg.ID, OrderID: arg.OrderID, ItemName: "Display", Notes: "old note"}, nil
		},
		updateInspectionItemStatusFn: func(ctx context.Context, arg database.UpdateInspectionItemStatusParams) (database.InspectionItem, error) {
			if !arg.IsDefective {
				t.Error("Fail must mark the item defective")
			}
			if arg.Notes != "old note" {
				t.Errorf("notes = %q, want unchanged", arg.Notes)
			}
			return database.InspectionItem{ID: arg.ID, Status: arg.Status, IsDefective: arg.IsDefective, Notes: arg.Notes}, nil
		},
	}
	svc, _ := newTestService(store, &mockSender{}, nil)

	item, err := svc.SetInspectionStatus(context.Background(), order.ID, itemID, enum.InspectionStatusFail, nil)
	if err != nil {
		t.Fatalf("SetInspectionStatus: %v", err)
	}
	if item.Status != enum.InspectionStatusFail {
		t.Errorf("status = %q", item.Status)
	}
}

func TestSetInspectionStatusClearsDefectiveOnPass(t *testing.T) {
	order := testOrder(enum.StatusInProgress)
	store := &mockStore{
		getRepairOrderFn: func(ctx context.Context, id uuid.UUID) (database.RepairOrder, error) {
			return order, nil
		},
		getInspectionItemFn: func(ctx context.Context, arg database.GetInspectionItemParams) (database.InspectionItem, error) {
			return database.InspectionItem{ID: arg.ID, Status: enum.InspectionStatusFail, IsDefective: true}, nil
		},
		updateInspectionItemStatusFn: func(ctx context.Context, arg database.UpdateInspectionItemStatusParams) (database.InspectionItem, error) {
			if arg.IsDefective {
				t.Error("Pass must clear the defective flag")
			}
			return database.InspectionItem{ID: arg.ID, Status: arg.Status}, nil
		},
	}
	svc, _ := newTestService(store, &mockSender{}, nil)

	if _, err := svc.SetInspectionStatus(context.Background(), order.ID, uuid.New(), enum.InspectionStatusPass, nil); err != nil {
		t.Fatalf("SetInspectionStatus: %v", err)
	}
}

func TestSetInspectionStatusNormalizesNotTested(t *testing.T) {
	order := testOrder(enum.StatusInProgress)
	store := &mockStore{
		getRepairOrderFn: func(ctx context.Context, id uuid.UUID) (database.RepairOrder, error) {
			return order, nil
		},
		getInspectionItemFn: func(ctx context.Context, arg database.GetInspectionItemParams) (database.InspectionItem, error) {
			return database.InspectionItem{ID: arg.ID}, nil
		},
		updateInspectionItemStatusFn: func(ctx context.Context, arg database.UpdateInspectionItemStatusParams) (database.InspectionItem, error) {
			if arg.Status != enum.InspectionStatusUnset {
				t.Errorf("status = %q, want unset", arg.Status)
			}
			return database.InspectionItem{ID: arg.ID, Status: arg.Status}, nil
		},
	}
	svc, _ := newTestService(store, &mockSender{}, nil)

	if _, err := svc.SetInspectionStatus(context.Background(), order.ID, uuid.New(), enum.InspectionStatusNotTested, nil); err != nil {
		t.Fatalf("SetInspectionStatus: %v", err)
	}
}

func TestSetInspectionStatusInvalid(t *testing.T) {
	svc, _ := newTestService(&mockStore{}, &mockSender{}, nil)

	_, err := svc.SetInspectionStatus(context.Background(), uuid.New(), uuid.New(), "Broken", nil)
	if !errors.Is(err, ErrInvalidItemStatus) {
		t.Fatalf("err = %v, want ErrInvalidItemStatus", err)
	}
}

func TestSetInspectionStatusItemNotFound(t *testing.T) {
	order := testOrder(enum.StatusInProgress)
	store := &mockStore{
		getRepairOrderFn: func(ctx context.Context, id uuid.UUID) (database.RepairOrder, error) {
			return order, nil
		},
		getInspectionItemFn: func(ctx context.Context, arg database.GetInspectionItemParams) (database.InspectionItem, error) {
			return database.InspectionItem{}, pgx.ErrNoRows
		},
	}
	svc, _ := newTestService(store, &mockSender{}, nil)

	_, err := svc.SetInspectionStatus(context.Background(), order.ID, uuid.New(), enum.InspectionStatusPass, nil)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}
}

func TestBulkSetInspectionStatus(t *testing.T) {
	order := testOrder(enum.StatusTesting)
	var bulkArg database.BulkUpdateInspectionStatusParams
	store := &mockStore{
		getRepairOrderFn: func(ctx context.Context, id uuid.UUID) (database.RepairOrder, error) {
			return order, nil
		},
		bulkUpdateInspectionStatusFn: func(ctx context.Context, arg database.BulkUpdateInspectionStatusParams) error {
			bulkArg = arg
			return nil
		},
		listInspectionItemsByOrderFn: func(ctx context.Context, orderID uuid.UUID) ([]database.InspectionItem, error) {
			return []database.InspectionItem{
				{ItemName: "Display", Status: enum.InspectionStatusPass},
				{ItemName: "Battery Health", Status: enum.InspectionStatusPass},
			}, nil
		},
	}
	svc, _ := newTestService(store, &mockSender{}, nil)

	items, err := svc.BulkSetInspectionStatus(context.Background(), order.ID, enum.InspectionStatusPass)
	if err != nil {
		t.Fatalf("BulkSetInspectionStatus: %v", err)
	}
	if bulkArg.Status != enum.InspectionStatusPass || bulkArg.IsDefective {
		t.Errorf("bulk args = %+v", bulkArg)
	}
	if len(items) != 2 {
		t.Errorf("returned %d items", len(items))
	}
}

func TestBulkSetInspectionStatusReset(t *testing.T) {
	order := testOrder(enum.StatusTesting)
	store := &mockStore{
		getRepairOrderFn: func(ctx context.Context, id uuid.UUID) (database.RepairOrder, error) {
			return order, nil
		},
		bulkUpdateInspectionStatusFn: func(ctx context.Context, arg database.BulkUpdateInspectionStatusParams) error {
			if arg.Status != enum.InspectionStatusUnset || arg.IsDefective {
				t.Errorf("reset args = %+v", arg)
			}
			return nil
		},
		listInspectionItemsByOrderFn: func(ctx context.Context, orderID uuid.UUID) ([]database.InspectionItem, error) {
			return nil, nil
		},
	}
	svc, _ := newTestService(store, &mockSender{}, nil)

	if _, err := svc.BulkSetInspectionStatus(context.Background(), order.ID, enum.InspectionStatusUnset); err != nil {
		t.Fatalf("BulkSetInspectionStatus: %v", err)
	}
}
