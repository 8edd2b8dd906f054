package notify

import (
	"fmt"

	"github.com/repairbox/api/internal/enum"
)

// OrderInfo carries the order fields message templates interpolate.
type OrderInfo struct {
	TrackingID   string
	CustomerName string
	Device       string
	Status       string
	GrandTotal   string
	Recipient    string
}

// ApprovalRequest asks the customer to approve the quoted repair cost.
// A non-empty custom body overrides the default template.
func ApprovalRequest(o OrderInfo, custom string) Message {
	body := custom
	if body == "" {
		body = fmt.Sprintf(
			"Dear %s,\n\nYour %s repair requires approval.\n\nTotal Cost: %s\n\nPlease confirm to proceed.",
			o.CustomerName, o.Device, o.GrandTotal,
		)
	}
	return Message{
		Recipient: o.Recipient,
		Subject:   fmt.Sprintf("Approval Required - Repair Order %s", o.TrackingID),
		Body:      body,
	}
}

// ApprovalReminder nudges a customer who has not responded to the approval
// request.
func ApprovalReminder(o OrderInfo) Message {
	return Message{
		Recipient: o.Recipient,
		Subject:   fmt.Sprintf("Reminder: Approval Required - %s", o.TrackingID),
		Body: fmt.Sprintf(
			"Dear %s,\n\nThis is a reminder that your repair order requires approval.\n\nTotal: %s",
			o.CustomerName, o.GrandTotal,
		),
	}
}

// ReadyForPickup tells the customer the device can be collected.
func ReadyForPickup(o OrderInfo) Message {
	return Message{
		Recipient: o.Recipient,
		Subject:   fmt.Sprintf("Your Device is Ready - %s", o.TrackingID),
		Body: fmt.Sprintf(
			"Dear %s,\n\nGood news! Your %s repair is complete and ready for pickup.\n\nTracking ID: %s\nTotal: %s",
			o.CustomerName, o.Device, o.TrackingID, o.GrandTotal,
		),
	}
}

// RequestInfo sends a free-form question to the customer during review.
func RequestInfo(o OrderInfo, body string) Message {
	return Message{
		Recipient: o.Recipient,
		Subject:   fmt.Sprintf("Request Information - Repair Order %s", o.TrackingID),
		Body:      body,
	}
}

// statusBodies maps statuses to the customer notice sent on entering them.
var statusBodies = map[string]string{
	enum.StatusInProgress:       "Your %s repair is now in progress. Our technician is working on it.",
	enum.StatusTesting:          "Your %s repair is complete and undergoing quality testing.",
	enum.StatusCompleted:        "Good news! Your %s repair is complete.",
	enum.StatusReadyForPickup:   "Your %s is ready for pickup!",
	enum.StatusDelivered:        "Thank you for choosing us! Your %s has been delivered.",
	enum.StatusOnHold:           "Your %s repair has been put on hold. We will contact you shortly.",
	enum.StatusCancelled:        "Your %s repair order has been cancelled.",
	enum.StatusAwaitingApproval: "Your %s repair requires approval. Please confirm to proceed.",
}

// StatusUpdate composes the generic notice for a status change.
func StatusUpdate(o OrderInfo) Message {
	body, ok := statusBodies[o.Status]
	if !ok {
		body = "Your %s repair order status has been updated to: " + o.Status
	}
	return Message{
		Recipient: o.Recipient,
		Subject:   fmt.Sprintf("Repair Order %s - Status Update", o.TrackingID),
		Body: fmt.Sprintf(
			"Dear %s,\n\n%s\n\nTracking ID: %s",
			o.CustomerName, fmt.Sprintf(body, o.Device), o.TrackingID,
		),
	}
}
