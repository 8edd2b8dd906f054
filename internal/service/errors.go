package service

import "errors"

// Errors returned by the repair order service.
var (
	ErrInvalidAction        = errors.New("action not permitted in current status")
	ErrUnknownAction        = errors.New("unknown action")
	ErrReasonRequired       = errors.New("a reason is required for this action")
	ErrConfirmationRequired = errors.New("payment is not complete, confirmation required")
	ErrStatusConflict       = errors.New("order status changed, please retry")
	ErrFieldLocked          = errors.New("field is locked in current status")
	ErrNoDefectLines        = errors.New("cannot complete repair without defects recorded")
	ErrChecklistExists      = errors.New("checklist already has items, replace must be confirmed")
	ErrInvalidItemStatus    = errors.New("invalid inspection status")
	ErrInvalidPaidAmount    = errors.New("invalid paid_amount")
	ErrInvalidSellingPrice  = errors.New("invalid selling_price")
	ErrCustomerNameRequired = errors.New("customer_name is required")
	ErrDefectNotFound       = errors.New("defect not found")
	ErrOrderNotFound        = errors.New("repair order not found")
	ErrItemNotFound         = errors.New("inspection item not found")
)
