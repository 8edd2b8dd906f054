package service

import (
	"context"
	"log"
	"time"

	"github.com/repairbox/api/internal/database"
	"github.com/repairbox/api/internal/notify"
	"github.com/robfig/cron/v3"
)

// approvalReminderAge is how long an order may sit awaiting customer
// approval before the daily job nudges the customer.
const approvalReminderAge = 48 * time.Hour

// ReminderStore is the read surface the scheduled jobs need.
type ReminderStore interface {
	ListApprovalReminderCandidates(ctx context.Context, cutoff time.Time) ([]database.RepairOrder, error)
	ListOverdueRepairOrders(ctx context.Context, asOf time.Time) ([]database.RepairOrder, error)
}

// ReminderService runs the daily background jobs: approval reminders to
// customers and an overdue report in the server log.
type ReminderService struct {
	store    ReminderStore
	notifier notify.Sender
	now      func() time.Time
}

func NewReminderService(store ReminderStore, notifier notify.Sender) *ReminderService {
	return &ReminderService{store: store, notifier: notifier, now: time.Now}
}

// Start schedules the jobs and returns the running cron so the caller can
// stop it on shutdown.
func (s *ReminderService) Start() *cron.Cron {
	c := cron.New()
	c.AddFunc("0 9 * * *", func() { s.SendApprovalReminders(context.Background()) })
	c.AddFunc("0 8 * * *", func() { s.ReportOverdue(context.Background()) })
	c.Start()
	log.Println("reminder scheduler started")
	return c
}

// SendApprovalReminders nudges every customer whose order has been awaiting
// approval past the reminder age. Send failures are logged and skipped so
// one bad contact does not block the rest.
func (s *ReminderService) SendApprovalReminders(ctx context.Context) {
	cutoff := s.now().Add(-approvalReminderAge)
	orders, err := s.store.ListApprovalReminderCandidates(ctx, cutoff)
	if err != nil {
		log.Printf("approval reminders: list candidates: %v", err)
		return
	}

	sent := 0
	for _, order := range orders {
		info := orderInfo(order)
		if info.Recipient == "" {
			continue
		}
		if err := s.notifier.Send(ctx, notify.ApprovalReminder(info)); err != nil {
			log.Printf("approval reminder %s: %v", order.TrackingID, err)
			continue
		}
		sent++
	}
	log.Printf("approval reminders: %d candidates, %d sent", len(orders), sent)
}

// ReportOverdue logs active orders past their expected completion date so
// the morning shift sees them in the server log.
func (s *ReminderService) ReportOverdue(ctx context.Context) {
	orders, err := s.store.ListOverdueRepairOrders(ctx, s.now())
	if err != nil {
		log.Printf("overdue report: %v", err)
		return
	}
	if len(orders) == 0 {
		return
	}
	for _, order := range orders {
		log.Printf("overdue: %s (%s) in %s, expected %s",
			order.TrackingID, order.CustomerName, order.Status,
			order.ExpectedCompletion.Time.Format("2006-01-02"))
	}
	log.Printf("overdue report: %d orders past expected completion", len(orders))
}
