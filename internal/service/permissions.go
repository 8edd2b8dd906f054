package service

import "github.com/repairbox/api/internal/enum"

// Field names used in the lock set. They match the JSON field names of the
// order payload so the UI can apply them directly.
const (
	FieldCustomer        = "customer"
	FieldBrand           = "brand"
	FieldDevice          = "device"
	FieldDeviceModel     = "device_model"
	FieldSerialNumber    = "serial_number"
	FieldDefectLines     = "defect_lines"
	FieldInspectionItems = "inspection_items"
	FieldTechnicianNotes = "technician_notes"
	FieldAdditionalNotes = "additional_notes"
	FieldPaidAmount      = "paid_amount"
	FieldPaymentStatus   = "payment_status"
)

// LockedFields returns the set of read-only fields for the given status.
// Pure function of status alone; recomputed on load and after every
// transition.
func LockedFields(status string) map[string]bool {
	locked := make(map[string]bool)

	// Customer and device identity freeze once review is over.
	if status != enum.StatusPendingReview {
		locked[FieldCustomer] = true
		locked[FieldBrand] = true
		locked[FieldDevice] = true
		locked[FieldDeviceModel] = true
		locked[FieldSerialNumber] = true
	}

	switch status {
	case enum.StatusCompleted, enum.StatusReadyForPickup, enum.StatusDelivered, enum.StatusCancelled:
		locked[FieldDefectLines] = true
		locked[FieldInspectionItems] = true
	}

	switch status {
	case enum.StatusDelivered, enum.StatusCancelled:
		locked[FieldTechnicianNotes] = true
		locked[FieldAdditionalNotes] = true
	}

	// Payment fields open only in the final stages.
	if status != enum.StatusCompleted && status != enum.StatusReadyForPickup {
		locked[FieldPaidAmount] = true
		locked[FieldPaymentStatus] = true
	}

	return locked
}

// LockedFieldNames returns the lock set as a sorted-stable slice for API
// responses.
func LockedFieldNames(status string) []string {
	locked := LockedFields(status)
	ordered := []string{
		FieldCustomer, FieldBrand, FieldDevice, FieldDeviceModel, FieldSerialNumber,
		FieldDefectLines, FieldInspectionItems,
		FieldTechnicianNotes, FieldAdditionalNotes,
		FieldPaidAmount, FieldPaymentStatus,
	}
	var names []string
	for _, f := range ordered {
		if locked[f] {
			names = append(names, f)
		}
	}
	return names
}
