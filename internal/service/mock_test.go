package service

import (
	"context"
	"errors"
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

// mockStore implements Store with per-method function fields. Methods a
// test does not expect to be called are left nil and panic.
type mockStore struct {
	getRepairOrderFn                func(ctx context.Context, id uuid.UUID) (database.RepairOrder, error)
	createRepairOrderFn             func(ctx context.Context, arg database.CreateRepairOrderParams) (database.RepairOrder, error)
	transitionOrderStatusFn         func(ctx context.Context, arg database.TransitionOrderStatusParams) (database.RepairOrder, error)
	updateOrderIntakeFn             func(ctx context.Context, arg database.UpdateOrderIntakeParams) (database.RepairOrder, error)
	updateOrderNotesFn              func(ctx context.Context, arg database.UpdateOrderNotesParams) (database.RepairOrder, error)
	updateOrderPriorityFn           func(ctx context.Context, arg database.UpdateOrderPriorityParams) (database.RepairOrder, error)
	updateOrderTotalsFn             func(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.RepairOrder, error)
	updateOrderPaidAmountFn         func(ctx context.Context, arg database.UpdateOrderPaidAmountParams) (database.RepairOrder, error)
	updateOrderExpectedCompletionFn func(ctx context.Context, arg database.UpdateOrderExpectedCompletionParams) (database.RepairOrder, error)

	createDefectLineFn         func(ctx context.Context, arg database.CreateDefectLineParams) (database.DefectLine, error)
	listDefectLinesByOrderFn   func(ctx context.Context, orderID uuid.UUID) ([]database.DefectLine, error)
	deleteDefectLinesByOrderFn func(ctx context.Context, orderID uuid.UUID) error

	createInspectionItemFn         func(ctx context.Context, arg database.CreateInspectionItemParams) (database.InspectionItem, error)
	listInspectionItemsByOrderFn   func(ctx context.Context, orderID uuid.UUID) ([]database.InspectionItem, error)
	getInspectionItemFn            func(ctx context.Context, arg database.GetInspectionItemParams) (database.InspectionItem, error)
	updateInspectionItemStatusFn   func(ctx context.Context, arg database.UpdateInspectionItemStatusParams) (database.InspectionItem, error)
	bulkUpdateInspectionStatusFn   func(ctx context.Context, arg database.BulkUpdateInspectionStatusParams) error
	deleteInspectionItemsByOrderFn func(ctx context.Context, orderID uuid.UUID) error

	createRepairEventFn       func(ctx context.Context, arg database.CreateRepairEventParams) (database.RepairEvent, error)
	listRepairEventsByOrderFn func(ctx context.Context, orderID uuid.UUID) ([]database.RepairEvent, error)

	getDefaultStatusFn             func(ctx context.Context) (database.RepairStatusConfig, error)
	getStatusConfigFn              func(ctx context.Context, name string) (database.RepairStatusConfig, error)
	getDefaultPriorityFn           func(ctx context.Context) (database.RepairPriority, error)
	getPriorityFn                  func(ctx context.Context, name string) (database.RepairPriority, error)
	getDefectFn                    func(ctx context.Context, id uuid.UUID) (database.Defect, error)
	getChecklistTemplateByDeviceFn func(ctx context.Context, device string) (database.ChecklistTemplate, error)
	listChecklistTemplateItemsFn   func(ctx context.Context, templateID uuid.UUID) ([]database.ChecklistTemplateItem, error)
}

func (m *mockStore) GetRepairOrder(ctx context.Context, id uuid.UUID) (database.RepairOrder, error) {
	if m.getRepairOrderFn == nil {
		panic("unexpected GetRepairOrder call")
	}
	return m.getRepairOrderFn(ctx, id)
}

func (m *mockStore) CreateRepairOrder(ctx context.Context, arg database.CreateRepairOrderParams) (database.RepairOrder, error) {
	if m.createRepairOrderFn == nil {
		panic("unexpected CreateRepairOrder call")
	}
	return m.createRepairOrderFn(ctx, arg)
}

func (m *mockStore) TransitionOrderStatus(ctx context.Context, arg database.TransitionOrderStatusParams) (database.RepairOrder, error) {
	if m.transitionOrderStatusFn == nil {
		panic("unexpected TransitionOrderStatus call")
	}
	return m.transitionOrderStatusFn(ctx, arg)
}

func (m *mockStore) UpdateOrderIntake(ctx context.Context, arg database.UpdateOrderIntakeParams) (database.RepairOrder, error) {
	if m.updateOrderIntakeFn == nil {
		panic("unexpected UpdateOrderIntake call")
	}
	return m.updateOrderIntakeFn(ctx, arg)
}

func (m *mockStore) UpdateOrderNotes(ctx context.Context, arg database.UpdateOrderNotesParams) (database.RepairOrder, error) {
	if m.updateOrderNotesFn == nil {
		panic("unexpected UpdateOrderNotes call")
	}
	return m.updateOrderNotesFn(ctx, arg)
}

func (m *mockStore) UpdateOrderPriority(ctx context.Context, arg database.UpdateOrderPriorityParams) (database.RepairOrder, error) {
	if m.updateOrderPriorityFn == nil {
		panic("unexpected UpdateOrderPriority call")
	}
	return m.updateOrderPriorityFn(ctx, arg)
}

func (m *mockStore) UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.RepairOrder, error) {
	if m.updateOrderTotalsFn == nil {
		panic("unexpected UpdateOrderTotals call")
	}
	return m.updateOrderTotalsFn(ctx, arg)
}

func (m *mockStore) UpdateOrderPaidAmount(ctx context.Context, arg database.UpdateOrderPaidAmountParams) (database.RepairOrder, error) {
	if m.updateOrderPaidAmountFn == nil {
		panic("unexpected UpdateOrderPaidAmount call")
	}
	return m.updateOrderPaidAmountFn(ctx, arg)
}

func (m *mockStore) UpdateOrderExpectedCompletion(ctx context.Context, arg database.UpdateOrderExpectedCompletionParams) (database.RepairOrder, error) {
	if m.updateOrderExpectedCompletionFn == nil {
		panic("unexpected UpdateOrderExpectedCompletion call")
	}
	return m.updateOrderExpectedCompletionFn(ctx, arg)
}

func (m *mockStore) CreateDefectLine(ctx context.Context, arg database.CreateDefectLineParams) (database.DefectLine, error) {
	if m.createDefectLineFn == nil {
		panic("unexpected CreateDefectLine call")
	}
	return m.createDefectLineFn(ctx, arg)
}

func (m *mockStore) ListDefectLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.DefectLine, error) {
	if m.listDefectLinesByOrderFn == nil {
		panic("unexpected ListDefectLinesByOrder call")
	}
	return m.listDefectLinesByOrderFn(ctx, orderID)
}

func (m *mockStore) DeleteDefectLinesByOrder(ctx context.Context, orderID uuid.UUID) error {
	if m.deleteDefectLinesByOrderFn == nil {
		panic("unexpected DeleteDefectLinesByOrder call")
	}
	return m.deleteDefectLinesByOrderFn(ctx, orderID)
}

func (m *mockStore) CreateInspectionItem(ctx context.Context, arg database.CreateInspectionItemParams) (database.InspectionItem, error) {
	if m.createInspectionItemFn == nil {
		panic("unexpected CreateInspectionItem call")
	}
	return m.createInspectionItemFn(ctx, arg)
}

func (m *mockStore) ListInspectionItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.InspectionItem, error) {
	if m.listInspectionItemsByOrderFn == nil {
		panic("unexpected ListInspectionItemsByOrder call")
	}
	return m.listInspectionItemsByOrderFn(ctx, orderID)
}

func (m *mockStore) GetInspectionItem(ctx context.Context, arg database.GetInspectionItemParams) (database.InspectionItem, error) {
	if m.getInspectionItemFn == nil {
		panic("unexpected GetInspectionItem call")
	}
	return m.getInspectionItemFn(ctx, arg)
}

func (m *mockStore) UpdateInspectionItemStatus(ctx context.Context, arg database.UpdateInspectionItemStatusParams) (database.InspectionItem, error) {
	if m.updateInspectionItemStatusFn == nil {
		panic("unexpected UpdateInspectionItemStatus call")
	}
	return m.updateInspectionItemStatusFn(ctx, arg)
}

func (m *mockStore) BulkUpdateInspectionStatus(ctx context.Context, arg database.BulkUpdateInspectionStatusParams) error {
	if m.bulkUpdateInspectionStatusFn == nil {
		panic("unexpected BulkUpdateInspectionStatus call")
	}
	return m.bulkUpdateInspectionStatusFn(ctx, arg)
}

func (m *mockStore) DeleteInspectionItemsByOrder(ctx context.Context, orderID uuid.UUID) error {
	if m.deleteInspectionItemsByOrderFn == nil {
		panic("unexpected DeleteInspectionItemsByOrder call")
	}
	return m.deleteInspectionItemsByOrderFn(ctx, orderID)
}

func (m *mockStore) CreateRepairEvent(ctx context.Context, arg database.CreateRepairEventParams) (database.RepairEvent, error) {
	if m.createRepairEventFn == nil {
		panic("unexpected CreateRepairEvent call")
	}
	return m.createRepairEventFn(ctx, arg)
}

func (m *mockStore) ListRepairEventsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.RepairEvent, error) {
	if m.listRepairEventsByOrderFn == nil {
		panic("unexpected ListRepairEventsByOrder call")
	}
	return m.listRepairEventsByOrderFn(ctx, orderID)
}

func (m *mockStore) GetDefaultStatus(ctx context.Context) (database.RepairStatusConfig, error) {
	if m.getDefaultStatusFn == nil {
		panic("unexpected GetDefaultStatus call")
	}
	return m.getDefaultStatusFn(ctx)
}

func (m *mockStore) GetStatusConfig(ctx context.Context, name string) (database.RepairStatusConfig, error) {
	if m.getStatusConfigFn == nil {
		panic("unexpected GetStatusConfig call")
	}
	return m.getStatusConfigFn(ctx, name)
}

func (m *mockStore) GetDefaultPriority(ctx context.Context) (database.RepairPriority, error) {
	if m.getDefaultPriorityFn == nil {
		panic("unexpected GetDefaultPriority call")
	}
	return m.getDefaultPriorityFn(ctx)
}

func (m *mockStore) GetPriority(ctx context.Context, name string) (database.RepairPriority, error) {
	if m.getPriorityFn == nil {
		panic("unexpected GetPriority call")
	}
	return m.getPriorityFn(ctx, name)
}

func (m *mockStore) GetDefect(ctx context.Context, id uuid.UUID) (database.Defect, error) {
	if m.getDefectFn == nil {
		panic("unexpected GetDefect call")
	}
	return m.getDefectFn(ctx, id)
}

func (m *mockStore) GetChecklistTemplateByDevice(ctx context.Context, device string) (database.ChecklistTemplate, error) {
	if m.getChecklistTemplateByDeviceFn == nil {
		panic("unexpected GetChecklistTemplateByDevice call")
	}
	return m.getChecklistTemplateByDeviceFn(ctx, device)
}

func (m *mockStore) ListChecklistTemplateItems(ctx context.Context, templateID uuid.UUID) ([]database.ChecklistTemplateItem, error) {
	if m.listChecklistTemplateItemsFn == nil {
		panic("unexpected ListChecklistTemplateItems call")
	}
	return m.listChecklistTemplateItemsFn(ctx, templateID)
}

// mockTx implements pgx.Tx for service tests. Only Commit and Rollback
// matter; everything else panics.
type mockTx struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *mockTx) Commit(ctx context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *mockTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (t *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (t *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (t *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (t *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (t *mockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (t *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (t *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (t *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockBeginner hands out the same mockTx for every Begin.
type mockBeginner struct {
	tx       *mockTx
	beginErr error
}

func (b *mockBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

// mockSender records sent messages.
type mockSender struct {
	sent    []notify.Message
	sendErr error
}

func (s *mockSender) Send(ctx context.Context, msg notify.Message) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, msg)
	return nil
}

// mockBoard records broadcast events.
type mockBoard struct {
	events []string
}

func (b *mockBoard) Broadcast(event string, payload any) {
	b.events = append(b.events, event)
}

var errBoom = errors.New("boom")

// newTestService wires an OrderService whose tx-bound and pool-bound
// stores are the same mock, with a fixed clock.
func newTestService(store *mockStore, sender notify.Sender, board Broadcaster) (*OrderService, *mockTx) {
	tx := &mockTx{}
	svc := NewOrderService(store, &mockBeginner{tx: tx}, func(db database.DBTX) Store { return store }, sender, board)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	return svc, tx
}

// num builds a pgtype.Numeric from a decimal string for fixtures.
func num(s string) pgtype.Numeric {
	return decimalToNumeric(decimal.RequireFromString(s))
}

// testOrder is a minimal order fixture in the given status.
func testOrder(status string) database.RepairOrder {
	return database.RepairOrder{
		ID:            uuid.MustParse("7b41cbb7-0ae1-44e4-a5cf-ef89533f2f0f"),
		TrackingID:    "RB-TEST1",
		CustomerName:  "Ahmed Ben Ali",
		Phone:         pgtype.Text{String: "+21612345678", Valid: true},
		Device:        pgtype.Text{String: "iPhone 12", Valid: true},
		Status:        status,
		PaymentStatus: enum.PaymentStatusUnpaid,
		GrandTotal:    num("202.30"),
		BookingDate:   time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC),
	}
}
