package renewal

import "strconv"

// Fee reconciliation is a pure function of the current selection,
// recomputed after every relevant change. It never touches the network.

// reconcileFees re-derives fee ownership and the computed figures.
//
// While exactly one shift is selected the total fee is system-owned and
// pinned to that shift's nominal fee. Leaving the exactly-one state
// resets the total to 0 and hands the field back to the user. Paid and
// due are always derived; due is deliberately not clamped, so an
// overpayment shows as a negative balance.
func reconcileFees(sel *Selection) {
	switch {
	case len(sel.Shifts) == 1:
		sel.TotalFee = sel.Shifts[0].Fee
		sel.FeeLocked = true
	case sel.FeeLocked:
		sel.TotalFee = 0
		sel.FeeLocked = false
	}

	sel.Paid = sel.Cash + sel.Online
	sel.Due = sel.TotalFee - sel.Discount - sel.Paid
}

// parseAmount converts raw form input to a number. Missing or invalid
// input counts as 0, never an error.
func parseAmount(raw string) float64 {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}
