package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// RepairOrder is the root entity: one physical device repair job.
// Customer contact is denormalised onto the order at intake time; billing
// columns are derived and only ever written by the service layer.
type RepairOrder struct {
	ID                 uuid.UUID
	TrackingID         string
	CustomerID         pgtype.UUID
	CustomerName       string
	Email              pgtype.Text
	Phone              pgtype.Text
	Brand              pgtype.Text
	Device             pgtype.Text
	DeviceModel        pgtype.Text
	SerialNumber       pgtype.Text
	Status             string
	Priority           pgtype.Text
	PriorityCharge     pgtype.Numeric
	AssignedTo         pgtype.UUID
	BookingDate        time.Time
	ExpectedCompletion pgtype.Timestamptz
	ActualCompletion   pgtype.Timestamptz
	TotalServiceAmount pgtype.Numeric
	TaxAmount          pgtype.Numeric
	GrandTotal         pgtype.Numeric
	PaidAmount         pgtype.Numeric
	PaymentStatus      string
	TechnicianNotes    pgtype.Text
	AdditionalNotes    pgtype.Text
	CreatedBy          pgtype.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DefectLine is one billable repair line on an order. SellingPrice defaults
// from the defect master at selection time but is editable afterwards and is
// the sole input to the totals.
type DefectLine struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	DefectID     pgtype.UUID
	Title        string
	SellingPrice pgtype.Numeric
	SortOrder    int32
}

// InspectionItem is one checklist entry on an order.
type InspectionItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ItemName    string
	Category    pgtype.Text
	IsMandatory bool
	Status      string
	IsDefective bool
	Notes       string
	SortOrder   int32
}

// RepairEvent is an immutable audit record written before every status
// transition (and for reason-carrying actions).
type RepairEvent struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	Action     string
	FromStatus pgtype.Text
	ToStatus   pgtype.Text
	Reason     pgtype.Text
	Actor      pgtype.UUID
	CreatedAt  time.Time
}

type Customer struct {
	ID        uuid.UUID
	Name      string
	Phone     pgtype.Text
	Email     pgtype.Text
	CreatedAt time.Time
}

type User struct {
	ID             uuid.UUID
	FullName       string
	Email          string
	HashedPassword string
	Role           string
	IsActive       bool
	CreatedAt      time.Time
}

// ── Master data ──

type Brand struct {
	Name     string
	IsActive bool
}

type Device struct {
	Name     string
	Brand    string
	IsActive bool
}

// Defect is a catalog entry: a known fault for a device with a standard
// selling price and an estimated repair time in minutes.
type Defect struct {
	ID               uuid.UUID
	Title            string
	Device           string
	Brand            pgtype.Text
	SellingPrice     pgtype.Numeric
	EstimatedMinutes pgtype.Int4
	IsActive         bool
}

type RepairPriority struct {
	Name        string
	ExtraCharge pgtype.Numeric
	IsDefault   bool
}

// RepairStatusConfig carries per-status settings: which status new orders
// default to and whether entering the status notifies the customer.
type RepairStatusConfig struct {
	Name           string
	IsDefault      bool
	NotifyCustomer bool
	SortOrder      int32
}

type ChecklistTemplate struct {
	ID           uuid.UUID
	TemplateName string
	Device       string
	IsDefault    bool
}

type ChecklistTemplateItem struct {
	ID          uuid.UUID
	TemplateID  uuid.UUID
	ItemName    string
	Category    pgtype.Text
	IsMandatory bool
	SortOrder   int32
}
