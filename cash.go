package greenpoint

import "github.com/jd/greenpoint/date"

// CashBalances folds cash operations into per-currency balances.
//
// Amounts carry the magnitude and the operation type the direction:
// deposits add, withdrawals subtract. When cutoff is non-nil, operations
// dated after it are excluded.
func CashBalances(ops []CashOperation, cutoff *date.Date) map[string]float64 {
	balances := make(map[string]float64)
	for _, op := range ops {
		if cutoff != nil && op.Date.After(*cutoff) {
			continue
		}
		switch op.Type {
		case Deposit:
			balances[op.Currency] += op.Amount
		case Withdrawal:
			balances[op.Currency] -= op.Amount
		}
	}
	return balances
}
