package greenpoint

import "github.com/jd/greenpoint/date"

// Test fixtures share one instrument and a handful of builders so the
// cases read like ledger lines.

const (
	apple  = "US0378331005"
	shell  = "GB00B03MM408"
	loreal = "FR0000120321"
)

func day(s string) date.Date { return date.MustParse(s) }

func buy(day string, qty, price float64) Operation {
	return Operation{ISIN: apple, Type: Trade, Date: date.MustParse(day), Quantity: qty, Price: price, Currency: "EUR"}
}

func sell(day string, qty, price float64) Operation {
	return Operation{ISIN: apple, Type: Trade, Date: date.MustParse(day), Quantity: -qty, Price: price, Currency: "EUR"}
}

func dividend(day string, qty, perUnit float64) Operation {
	return Operation{ISIN: apple, Type: Dividend, Date: date.MustParse(day), Quantity: qty, Price: perUnit, Currency: "EUR"}
}

func taxOp(day string, taxes float64) Operation {
	return Operation{ISIN: apple, Type: Tax, Date: date.MustParse(day), Taxes: taxes, Currency: "EUR"}
}

func deposit(day string, amount float64, cur string) CashOperation {
	return CashOperation{Type: Deposit, Date: date.MustParse(day), Amount: amount, Currency: cur}
}

func withdrawal(day string, amount float64, cur string) CashOperation {
	return CashOperation{Type: Withdrawal, Date: date.MustParse(day), Amount: amount, Currency: cur}
}

func quoteOn(day string, close float64) Quote {
	c := close
	return Quote{Date: date.MustParse(day), Close: &c}
}

func f(v float64) *float64 { return &v }

func i64(v int64) *int64 { return &v }
