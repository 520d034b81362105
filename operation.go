package greenpoint

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jd/greenpoint/date"
)

// OperationType identifies the kind of an instrument event.
type OperationType int

const (
	// Trade is an acquisition or disposal; the quantity sign decides which.
	Trade OperationType = iota
	// Dividend is a cash distribution attributed to a held instrument.
	Dividend
	// Tax is a standalone tax event (e.g. a transaction tax charge).
	Tax
)

func (t OperationType) String() string {
	switch t {
	case Trade:
		return "trade"
	case Dividend:
		return "dividend"
	case Tax:
		return "tax"
	default:
		return "unknown"
	}
}

// ParseOperationType parses a string into an OperationType.
func ParseOperationType(s string) (OperationType, error) {
	switch strings.ToLower(s) {
	case "trade":
		return Trade, nil
	case "dividend":
		return Dividend, nil
	case "tax":
		return Tax, nil
	default:
		return 0, fmt.Errorf("unknown operation type: %q", s)
	}
}

// Operation is a single event against a single instrument.
//
// Quantity is signed: positive means acquired, negative disposed, zero for
// Tax events. Price is the per-unit price (zero for Tax). The broker
// importer is responsible for normalizing labels into these three types and
// for resolving signed quantities before the operations reach this package.
type Operation struct {
	ISIN     string
	Type     OperationType
	Date     date.Date
	Quantity float64
	Price    float64
	Fees     float64
	Taxes    float64
	Currency string
}

// Amount is the transacted amount, quantity times per-unit price.
func (o Operation) Amount() float64 { return o.Quantity * o.Price }

// CashOperationType identifies the kind of a cash account event.
type CashOperationType int

const (
	Deposit CashOperationType = iota
	Withdrawal
)

func (t CashOperationType) String() string {
	switch t {
	case Deposit:
		return "deposit"
	case Withdrawal:
		return "withdrawal"
	default:
		return "unknown"
	}
}

// ParseCashOperationType parses a string into a CashOperationType.
func ParseCashOperationType(s string) (CashOperationType, error) {
	switch strings.ToLower(s) {
	case "deposit":
		return Deposit, nil
	case "withdrawal":
		return Withdrawal, nil
	default:
		return 0, fmt.Errorf("unknown cash operation type: %q", s)
	}
}

// CashOperation is a cash movement on the brokerage account.
// Amount carries the magnitude; the type carries the direction.
type CashOperation struct {
	Type     CashOperationType
	Date     date.Date
	Amount   float64
	Currency string
}

// SortOperations sorts operations in place into the canonical replay order:
// ascending by date, and on equal dates by descending quantity.
//
// The quantity tie-break is load-bearing: when an acquisition and a
// disposal fall on the same day, the acquisition replays first, which
// decides which holding partition the disposal is attributed to.
func SortOperations(ops []Operation) {
	slices.SortStableFunc(ops, func(a, b Operation) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		switch {
		case a.Quantity > b.Quantity:
			return -1
		case a.Quantity < b.Quantity:
			return 1
		default:
			return 0
		}
	})
}
