package greenpoint

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jd/greenpoint/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// The ledger file is JSONL: one event per line, instrument operations and
// cash operations intermixed the way the broker reported them. The "op"
// tag on each line selects the variant; numeric fields travel as decimals
// so amounts survive re-encoding unchanged.

type operationLine struct {
	Op       string           `json:"op"`
	ISIN     string           `json:"isin,omitempty"`
	Date     date.Date        `json:"date"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Fees     *decimal.Decimal `json:"fees,omitempty"`
	Taxes    *decimal.Decimal `json:"taxes,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Currency string           `json:"currency"`
}

func dec(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func float(d *decimal.Decimal) float64 {
	if d == nil {
		return 0
	}
	return d.InexactFloat64()
}

// EncodeOperation writes one instrument operation as a JSONL line.
func EncodeOperation(w io.Writer, op Operation) error {
	line := operationLine{
		Op:       op.Type.String(),
		ISIN:     op.ISIN,
		Date:     op.Date,
		Quantity: dec(op.Quantity),
		Price:    dec(op.Price),
		Fees:     dec(op.Fees),
		Taxes:    dec(op.Taxes),
		Currency: op.Currency,
	}
	return writeLine(w, line)
}

// EncodeCashOperation writes one cash operation as a JSONL line.
func EncodeCashOperation(w io.Writer, op CashOperation) error {
	line := operationLine{
		Op:       op.Type.String(),
		Date:     op.Date,
		Amount:   dec(op.Amount),
		Currency: op.Currency,
	}
	return writeLine(w, line)
}

func writeLine(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// DecodeLedger reads a JSONL event stream and splits it into instrument
// operations and cash operations. Empty lines are skipped; an
// unrecognized "op" tag is an error, not a silently dropped line.
func DecodeLedger(r io.Reader) ([]Operation, []CashOperation, error) {
	var ops []Operation
	var cash []CashOperation

	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var line operationLine
		if err := json.Unmarshal(b, &line); err != nil {
			return nil, nil, fmt.Errorf("ledger line %d: %w", n, err)
		}
		switch line.Op {
		case "trade", "dividend", "tax":
			typ, _ := ParseOperationType(line.Op)
			ops = append(ops, Operation{
				ISIN:     line.ISIN,
				Type:     typ,
				Date:     line.Date,
				Quantity: float(line.Quantity),
				Price:    float(line.Price),
				Fees:     float(line.Fees),
				Taxes:    float(line.Taxes),
				Currency: line.Currency,
			})
		case "deposit", "withdrawal":
			typ, _ := ParseCashOperationType(line.Op)
			cash = append(cash, CashOperation{
				Type:     typ,
				Date:     line.Date,
				Amount:   float(line.Amount),
				Currency: line.Currency,
			})
		default:
			return nil, nil, fmt.Errorf("ledger line %d: unknown op %q", n, line.Op)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return ops, cash, nil
}

// EncodeLedger writes all events, instrument operations first in canonical
// replay order, then cash operations by date.
func EncodeLedger(w io.Writer, ops []Operation, cash []CashOperation) error {
	SortOperations(ops)
	for _, op := range ops {
		if err := EncodeOperation(w, op); err != nil {
			return err
		}
	}
	for _, op := range cash {
		if err := EncodeCashOperation(w, op); err != nil {
			return err
		}
	}
	return nil
}

type instrumentLine struct {
	ISIN     string `json:"isin"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol,omitempty"`
	MIC      string `json:"mic,omitempty"`
	Currency string `json:"currency"`
	PEA      bool   `json:"pea,omitempty"`
	PEAPME   bool   `json:"pea_pme,omitempty"`
	TTF      bool   `json:"ttf,omitempty"`
}

// DecodeInstruments reads a JSONL instrument table. Every line is
// validated through NewInstrument, so a corrupted table fails loudly.
func DecodeInstruments(r io.Reader) ([]Instrument, error) {
	var instruments []Instrument
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var line instrumentLine
		if err := json.Unmarshal(b, &line); err != nil {
			return nil, fmt.Errorf("instruments line %d: %w", n, err)
		}
		typ, err := ParseInstrumentType(line.Type)
		if err != nil {
			return nil, fmt.Errorf("instruments line %d: %w", n, err)
		}
		inst, err := NewInstrument(line.ISIN, typ, line.Name, line.Symbol, line.MIC, line.Currency)
		if err != nil {
			return nil, fmt.Errorf("instruments line %d: %w", n, err)
		}
		instruments = append(instruments, inst.WithFlags(line.PEA, line.PEAPME, line.TTF))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return instruments, nil
}

// EncodeInstruments writes the instrument table as JSONL.
func EncodeInstruments(w io.Writer, instruments []Instrument) error {
	for _, inst := range instruments {
		line := instrumentLine{
			ISIN:     inst.ISIN(),
			Type:     inst.Type().String(),
			Name:     inst.Name(),
			Symbol:   inst.Symbol(),
			MIC:      inst.MIC(),
			Currency: inst.Currency(),
			PEA:      inst.PEA(),
			PEAPME:   inst.PEAPME(),
			TTF:      inst.TTF(),
		}
		if err := writeLine(w, line); err != nil {
			return err
		}
	}
	return nil
}

type quoteLine struct {
	Date   date.Date        `json:"date"`
	Open   *decimal.Decimal `json:"open,omitempty"`
	Close  *decimal.Decimal `json:"close,omitempty"`
	High   *decimal.Decimal `json:"high,omitempty"`
	Low    *decimal.Decimal `json:"low,omitempty"`
	Volume *int64           `json:"volume,omitempty"`
}

func toFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func toDecimal(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

// DecodeQuotes reads one instrument's quote history from JSONL.
func DecodeQuotes(r io.Reader) ([]Quote, error) {
	var quotes []Quote
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var line quoteLine
		if err := json.Unmarshal(b, &line); err != nil {
			return nil, fmt.Errorf("quotes line %d: %w", n, err)
		}
		quotes = append(quotes, Quote{
			Date:   line.Date,
			Open:   toFloat(line.Open),
			Close:  toFloat(line.Close),
			High:   toFloat(line.High),
			Low:    toFloat(line.Low),
			Volume: line.Volume,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return quotes, nil
}

// EncodeQuotes writes one instrument's quote history as JSONL, in
// chronological order.
func EncodeQuotes(w io.Writer, series *QuoteTimeSeries) error {
	for _, q := range series.Range(nil, nil) {
		line := quoteLine{
			Date:   q.Date,
			Open:   toDecimal(q.Open),
			Close:  toDecimal(q.Close),
			High:   toDecimal(q.High),
			Low:    toDecimal(q.Low),
			Volume: q.Volume,
		}
		if err := writeLine(w, line); err != nil {
			return err
		}
	}
	return nil
}
