package enum

// ── Repair order workflow (CHECK constrained in DB) ──

// Status values match the labels shown on the workshop board, so they double
// as display strings. Delivered and Cancelled are terminal.
const (
	StatusPendingReview    = "Pending Review"
	StatusInProgress       = "In Progress"
	StatusTesting          = "Testing"
	StatusCompleted        = "Completed"
	StatusReadyForPickup   = "Ready for Pickup"
	StatusDelivered        = "Delivered"
	StatusAwaitingParts    = "Awaiting Parts"
	StatusAwaitingApproval = "Awaiting Customer Approval"
	StatusOnHold           = "On Hold"
	StatusCancelled        = "Cancelled"
)

// AllStatuses lists every valid repair order status.
var AllStatuses = []string{
	StatusPendingReview,
	StatusInProgress,
	StatusTesting,
	StatusCompleted,
	StatusReadyForPickup,
	StatusDelivered,
	StatusAwaitingParts,
	StatusAwaitingApproval,
	StatusOnHold,
	StatusCancelled,
}

// Workflow actions as wire identifiers (POST /orders/{id}/actions).
const (
	ActionStartRepair      = "start_repair"
	ActionRequestInfo      = "request_more_info"
	ActionMarkTesting      = "mark_as_testing"
	ActionOrderParts       = "order_parts"
	ActionRequestApproval  = "request_customer_approval"
	ActionPartsReceived    = "parts_received"
	ActionCustomerApproved = "customer_approved"
	ActionSendReminder     = "send_reminder"
	ActionMarkCompleted    = "mark_as_completed"
	ActionReturnToRepair   = "return_to_repair"
	ActionNotifyReady      = "notify_customer_ready"
	ActionMarkReady        = "mark_ready_for_pickup"
	ActionMarkDelivered    = "mark_as_delivered"
	ActionResumeRepair     = "resume_repair"
	ActionPutOnHold        = "put_on_hold"
	ActionCancelOrder      = "cancel_order"
)

const (
	PaymentStatusUnpaid        = "Unpaid"
	PaymentStatusPartiallyPaid = "Partially Paid"
	PaymentStatusPaid          = "Paid"
)

// ── Inspection checklist (CHECK constrained in DB) ──

// InspectionStatusNotTested is a legacy sentinel from pre-migration data; it
// is accepted on input and normalised to unset, never written back.
const (
	InspectionStatusUnset     = ""
	InspectionStatusPass      = "Pass"
	InspectionStatusFail      = "Fail"
	InspectionStatusNA        = "N/A"
	InspectionStatusNotTested = "Not Tested"
)

// ── Roles ──

const (
	UserRoleManager    = "MANAGER"
	UserRoleTechnician = "TECHNICIAN"
	UserRoleReception  = "RECEPTION"
)

// ── Configurable labels (no DB constraint) ──

// Inspection item categories carried over from the checklist templates.
const (
	CategoryDisplay      = "Display"
	CategoryAudio        = "Audio"
	CategoryConnectivity = "Connectivity"
	CategoryBattery      = "Battery"
	CategoryCamera       = "Camera"
	CategoryButtonsPorts = "Buttons & Ports"
	CategorySensors      = "Sensors"
	CategoryPerformance  = "Performance"
	CategoryPhysical     = "Physical Condition"
	CategoryOther        = "Other"
)
