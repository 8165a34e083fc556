package domain

// BalanceDrift is an account whose stored balance disagrees with the sum
// of its signed entries.
type BalanceDrift struct {
	AccountID   string `json:"account_id"`
	Recorded    Money  `json:"recorded_balance"`
	FromEntries Money  `json:"calculated_balance"`
}

// Difference is how far the stored balance is from the entries.
func (d BalanceDrift) Difference() Money {
	return d.Recorded.Sub(d.FromEntries)
}
