package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/repairbox/api/internal/database"
	"github.com/repairbox/api/internal/enum"
	"github.com/repairbox/api/internal/notify"
)

// notifyKind selects the customer message an action sends. Actions without
// a dedicated message fall back to the status-change notice, gated by the
// status config's notify flag.
type notifyKind int

const (
	notifyNone notifyKind = iota
	notifyRequestInfo
	notifyApproval
	notifyReminder
	notifyReady
)

// transitionRule describes one allowed action from a given status. A zero
// "to" means the action keeps the status (message-only actions).
type transitionRule struct {
	to             string
	requireReason  bool
	requireDefects bool
	confirmUnpaid  bool
	setCompletion  bool
	notify         notifyKind
}

// transitions is the status-specific action table. put_on_hold and
// cancel_order are handled in ruleFor since they apply from any
// non-terminal status.
var transitions = map[string]map[string]transitionRule{
	enum.StatusPendingReview: {
		enum.ActionStartRepair: {to: enum.StatusInProgress},
		enum.ActionRequestInfo: {notify: notifyRequestInfo},
	},
	enum.StatusInProgress: {
		enum.ActionMarkTesting:     {to: enum.StatusTesting},
		enum.ActionOrderParts:      {to: enum.StatusAwaitingParts},
		enum.ActionRequestApproval: {to: enum.StatusAwaitingApproval, notify: notifyApproval},
	},
	enum.StatusAwaitingParts: {
		enum.ActionPartsReceived: {to: enum.StatusInProgress},
	},
	enum.StatusAwaitingApproval: {
		enum.ActionCustomerApproved: {to: enum.StatusInProgress},
		enum.ActionSendReminder:     {notify: notifyReminder},
	},
	enum.StatusTesting: {
		enum.ActionMarkCompleted:  {to: enum.StatusCompleted, requireDefects: true, setCompletion: true},
		enum.ActionReturnToRepair: {to: enum.StatusInProgress, requireReason: true},
	},
	enum.StatusCompleted: {
		enum.ActionNotifyReady: {to: enum.StatusReadyForPickup, notify: notifyReady},
		enum.ActionMarkReady:   {to: enum.StatusReadyForPickup},
	},
	enum.StatusReadyForPickup: {
		enum.ActionMarkDelivered: {to: enum.StatusDelivered, confirmUnpaid: true, setCompletion: true},
	},
	enum.StatusOnHold: {
		enum.ActionResumeRepair: {to: enum.StatusInProgress},
	},
}

var knownActions = map[string]bool{
	enum.ActionStartRepair:      true,
	enum.ActionRequestInfo:      true,
	enum.ActionMarkTesting:      true,
	enum.ActionOrderParts:       true,
	enum.ActionRequestApproval:  true,
	enum.ActionPartsReceived:    true,
	enum.ActionCustomerApproved: true,
	enum.ActionSendReminder:     true,
	enum.ActionMarkCompleted:    true,
	enum.ActionReturnToRepair:   true,
	enum.ActionNotifyReady:      true,
	enum.ActionMarkReady:        true,
	enum.ActionMarkDelivered:    true,
	enum.ActionResumeRepair:     true,
	enum.ActionPutOnHold:        true,
	enum.ActionCancelOrder:      true,
}

// IsTerminal reports whether a status admits no further actions.
func IsTerminal(status string) bool {
	return status == enum.StatusDelivered || status == enum.StatusCancelled
}

// ruleFor resolves the rule for an action in the given status, including
// the cross-cutting hold/cancel actions. Unknown action ids and actions
// not valid for the status come back as distinct errors.
func ruleFor(status, action string) (transitionRule, error) {
	if !knownActions[action] {
		return transitionRule{}, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	if !IsTerminal(status) {
		switch action {
		case enum.ActionPutOnHold:
			return transitionRule{to: enum.StatusOnHold, requireReason: true}, nil
		case enum.ActionCancelOrder:
			return transitionRule{to: enum.StatusCancelled, requireReason: true}, nil
		}
	}
	if rule, ok := transitions[status][action]; ok {
		return rule, nil
	}
	return transitionRule{}, fmt.Errorf("%w: %s from %s", ErrInvalidAction, action, status)
}

// AllowedActions lists the action ids valid from a status, in stable order
// for API responses.
func AllowedActions(status string) []string {
	if IsTerminal(status) {
		return nil
	}
	actions := make([]string, 0, len(transitions[status])+2)
	for action := range transitions[status] {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return append(actions, enum.ActionPutOnHold, enum.ActionCancelOrder)
}

// ActionRequest is one workflow action against an order. Reason is
// mandatory for actions that demand one; Message optionally overrides the
// customer message body; Confirmed acknowledges delivering an unpaid order.
type ActionRequest struct {
	OrderID   uuid.UUID
	Action    string
	Reason    string
	Message   string
	Confirmed bool
	Actor     uuid.UUID
}

// ActionResult reports the post-action order. Warning carries a customer
// notification failure: the transition itself already committed.
type ActionResult struct {
	Order    database.RepairOrder
	Notified bool
	Warning  string
}

// ExecuteAction runs one workflow action: validates it against the current
// status, writes the audit event and the guarded status update in one
// transaction, then sends any customer notification after commit. A
// concurrent move of the same order surfaces as ErrStatusConflict.
func (s *OrderService) ExecuteAction(ctx context.Context, req ActionRequest) (*ActionResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetRepairOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get repair order: %w", err)
	}

	rule, err := ruleFor(order.Status, req.Action)
	if err != nil {
		return nil, err
	}
	if rule.requireReason && strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: %s", ErrReasonRequired, req.Action)
	}
	if rule.requireDefects {
		lines, err := store.ListDefectLinesByOrder(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("list defect lines: %w", err)
		}
		if len(lines) == 0 {
			return nil, ErrNoDefectLines
		}
	}
	if rule.confirmUnpaid && order.PaymentStatus != enum.PaymentStatusPaid && !req.Confirmed {
		return nil, fmt.Errorf("%w: order is %s", ErrConfirmationRequired, order.PaymentStatus)
	}

	toStatus := pgtype.Text{}
	if rule.to != "" {
		toStatus = pgtype.Text{String: rule.to, Valid: true}
	}
	if _, err := store.CreateRepairEvent(ctx, database.CreateRepairEventParams{
		OrderID:    order.ID,
		Action:     req.Action,
		FromStatus: pgtype.Text{String: order.Status, Valid: true},
		ToStatus:   toStatus,
		Reason:     textOrNull(strings.TrimSpace(req.Reason)),
		Actor:      pgtype.UUID{Bytes: req.Actor, Valid: req.Actor != uuid.Nil},
	}); err != nil {
		return nil, fmt.Errorf("create repair event: %w", err)
	}

	updated := order
	if rule.to != "" {
		completion := pgtype.Timestamptz{}
		if rule.setCompletion {
			completion = pgtype.Timestamptz{Time: s.now(), Valid: true}
		}
		updated, err = store.TransitionOrderStatus(ctx, database.TransitionOrderStatusParams{
			ID:               order.ID,
			FromStatus:       order.Status,
			ToStatus:         rule.to,
			ActualCompletion: completion,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: order moved out of %s", ErrStatusConflict, order.Status)
			}
			return nil, fmt.Errorf("transition status: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	result := &ActionResult{Order: updated}
	s.notifyAfterAction(ctx, updated, rule, req.Message, result)

	if s.board != nil && rule.to != "" {
		s.board.Broadcast("order.status_changed", boardPayload(updated))
	}
	return result, nil
}

// notifyAfterAction sends the customer message for a committed action.
// Action-specific messages win over the generic status notice, which only
// fires when the status config says to notify. Failures become a warning
// on the result, never an error.
func (s *OrderService) notifyAfterAction(ctx context.Context, order database.RepairOrder, rule transitionRule, custom string, result *ActionResult) {
	msg, ok := s.actionMessage(ctx, order, rule, custom)
	if !ok {
		return
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		log.Printf("order %s: notify customer: %v", order.TrackingID, err)
		result.Warning = fmt.Sprintf("customer notification failed: %v", err)
		return
	}
	result.Notified = true
}

func (s *OrderService) actionMessage(ctx context.Context, order database.RepairOrder, rule transitionRule, custom string) (notify.Message, bool) {
	info := orderInfo(order)
	if info.Recipient == "" {
		return notify.Message{}, false
	}

	switch rule.notify {
	case notifyRequestInfo:
		return notify.RequestInfo(info, custom), true
	case notifyApproval:
		return notify.ApprovalRequest(info, custom), true
	case notifyReminder:
		return notify.ApprovalReminder(info), true
	case notifyReady:
		return notify.ReadyForPickup(info), true
	}

	if rule.to == "" {
		return notify.Message{}, false
	}
	cfg, err := s.store.GetStatusConfig(ctx, order.Status)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("order %s: get status config: %v", order.TrackingID, err)
		}
		return notify.Message{}, false
	}
	if !cfg.NotifyCustomer {
		return notify.Message{}, false
	}
	return notify.StatusUpdate(info), true
}

// orderInfo projects an order into the notification template fields,
// preferring the phone contact over email.
func orderInfo(o database.RepairOrder) notify.OrderInfo {
	recipient := o.Phone.String
	if recipient == "" {
		recipient = o.Email.String
	}
	return notify.OrderInfo{
		TrackingID:   o.TrackingID,
		CustomerName: o.CustomerName,
		Device:       o.Device.String,
		Status:       o.Status,
		GrandTotal:   numericToDecimal(o.GrandTotal).StringFixed(2),
		Recipient:    recipient,
	}
}
