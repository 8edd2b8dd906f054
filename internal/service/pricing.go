package service

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/repairbox/api/internal/database"
	"github.com/repairbox/api/internal/enum"
	"github.com/shopspring/decimal"
)

// taxRate is the fixed TVA rate applied on top of service amount plus
// priority charge.
var taxRate = decimal.NewFromFloat(0.19)

// Totals holds the derived billing fields for an order.
type Totals struct {
	TotalServiceAmount decimal.Decimal
	PriorityCharge     decimal.Decimal
	TaxAmount          decimal.Decimal
	GrandTotal         decimal.Decimal
}

// RecomputeTotals derives the billing fields from the defect lines and the
// priority charge. A missing or unparsable selling price counts as zero.
func RecomputeTotals(lines []database.DefectLine, priorityCharge pgtype.Numeric) Totals {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(numericToDecimal(line.SellingPrice))
	}

	charge := numericToDecimal(priorityCharge)
	taxable := total.Add(charge)
	tax := taxable.Mul(taxRate).Round(2)

	return Totals{
		TotalServiceAmount: total,
		PriorityCharge:     charge,
		TaxAmount:          tax,
		GrandTotal:         taxable.Add(tax),
	}
}

// RecomputePaymentStatus derives the payment status from paid amount vs
// grand total. Must be re-run whenever either side changes.
func RecomputePaymentStatus(paid, grandTotal decimal.Decimal) string {
	switch {
	case paid.IsZero():
		return enum.PaymentStatusUnpaid
	case paid.GreaterThanOrEqual(grandTotal):
		return enum.PaymentStatusPaid
	default:
		return enum.PaymentStatusPartiallyPaid
	}
}

// --- Numeric conversion helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
