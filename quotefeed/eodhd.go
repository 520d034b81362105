package quotefeed

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/jd/greenpoint"
	"github.com/jd/greenpoint/date"
)

// eodhdExchanges maps a venue MIC to EODHD's internal exchange code.
// EODHD uses its own identifiers for trading venues; this covers the
// venues the importers actually produce.
var eodhdExchanges = map[string]string{
	"XPAR": "PA",
	"XBRU": "BR",
	"XAMS": "AS",
	"XLON": "LSE",
	"XETR": "XETRA",
	"XFRA": "F",
	"XNAS": "US",
	"XNYS": "US",
	"ARCX": "US",
	"XASE": "US",
}

// fund histories are served from EODHD's virtual fund exchange.
const eodhdFundExchange = "EUFUND"

// EODHD fetches end-of-day bars from the eodhd.com JSON API.
type EODHD struct {
	APIKey string
	client *http.Client
}

// NewEODHD returns an EODHD provider using the given API key, with a
// daily-cached, rate-limited HTTP client.
func NewEODHD(apiKey string) *EODHD {
	return &EODHD{APIKey: apiKey, client: newDailyClient(4)}
}

func (p *EODHD) Name() string { return "eodhd" }

// ticker maps an instrument to the "SYMBOL.EXCHANGE" ticker EODHD expects.
func (p *EODHD) ticker(inst greenpoint.Instrument) (string, error) {
	if inst.Type() == greenpoint.Fund {
		// Funds are looked up by ISIN on the virtual fund exchange.
		return inst.ISIN() + "." + eodhdFundExchange, nil
	}
	if inst.Symbol() == "" || inst.MIC() == "" {
		return "", fmt.Errorf("instrument %s has no symbol or venue, cannot build an eodhd ticker", inst.ISIN())
	}
	exchange, ok := eodhdExchanges[inst.MIC()]
	if !ok {
		return "", fmt.Errorf("no eodhd exchange code for venue %s", inst.MIC())
	}
	return inst.Symbol() + "." + exchange, nil
}

// FetchDaily implements Provider.
func (p *EODHD) FetchDaily(ctx context.Context, inst greenpoint.Instrument, from, to date.Date) ([]greenpoint.Quote, error) {
	ticker, err := p.ticker(inst)
	if err != nil {
		return nil, err
	}

	// https://eodhd.com/api/eod/MCD.US?api_token=demo&fmt=json
	addr := fmt.Sprintf("https://eodhd.com/api/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		ticker, p.APIKey, from, to)

	type bar struct {
		Date   date.Date        `json:"date"`
		Open   *decimal.Decimal `json:"open"`
		High   *decimal.Decimal `json:"high"`
		Low    *decimal.Decimal `json:"low"`
		Close  *decimal.Decimal `json:"close"`
		Volume *int64           `json:"volume"`
	}

	bars := make([]bar, 0)
	if err := jwget(ctx, p.client, addr, &bars); err != nil {
		return nil, fmt.Errorf("eodhd %s: %w", ticker, err)
	}

	quotes := make([]greenpoint.Quote, 0, len(bars))
	for _, b := range bars {
		quotes = append(quotes, greenpoint.Quote{
			Date:   b.Date,
			Open:   decimalFloat(b.Open),
			High:   decimalFloat(b.High),
			Low:    decimalFloat(b.Low),
			Close:  decimalFloat(b.Close),
			Volume: b.Volume,
		})
	}
	return quotes, nil
}

func decimalFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
