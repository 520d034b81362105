package quotefeed

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/jd/greenpoint"
	"github.com/jd/greenpoint/date"
)

// Tradegate reports the latest price traded on Tradegate as a single
// close-only bar for today.
//
// It only ever covers the current day, so in the provider priority list it
// acts as a gap filler: the merge takes its close for today when no
// end-of-day provider has published a bar yet, and ignores it otherwise.
type Tradegate struct {
	client *http.Client
}

// NewTradegate returns a Tradegate provider with a rate-limited client.
// No cache here, the endpoint is intraday by nature.
func NewTradegate() *Tradegate {
	return &Tradegate{client: &http.Client{Transport: &politeTransport{
		base:    http.DefaultTransport,
		limiter: newLimiter(2),
	}}}
}

func (p *Tradegate) Name() string { return "tradegate" }

// FetchDaily implements Provider.
func (p *Tradegate) FetchDaily(ctx context.Context, inst greenpoint.Instrument, from, to date.Date) ([]greenpoint.Quote, error) {
	today := date.Today()
	if today.Before(from) || today.After(to) {
		return nil, nil
	}

	addr := "https://www.tradegate.de/refresh.php?isin=" + inst.ISIN()
	var jobj any
	if err := jwget(ctx, p.client, addr, &jobj); err != nil {
		return nil, fmt.Errorf("tradegate %s: %w", inst.ISIN(), err)
	}

	// 'last' is the last transaction; it moves slower than the bid but
	// the bid can be 0. Tradegate shows an empty 'last' as "./.".
	jval, err := jsonpath.Get("$.last", jobj)
	if err != nil {
		return nil, fmt.Errorf("tradegate %s: %w", inst.ISIN(), err)
	}
	if s, ok := jval.(string); ok && s == "./." {
		jval, err = jsonpath.Get("$.bid", jobj)
		if err != nil {
			return nil, fmt.Errorf("tradegate %s: %w", inst.ISIN(), err)
		}
	}

	val, err := asFloat(jval)
	if err != nil {
		return nil, fmt.Errorf("tradegate %s: %w", inst.ISIN(), err)
	}
	if val == 0 {
		// An empty bid comes back as 0; there is no price to report.
		return nil, nil
	}
	return []greenpoint.Quote{{Date: today, Close: &val}}, nil
}

// asFloat reads a numeric value that this API returns sometimes as a
// float, sometimes as a localized string.
func asFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		s := strings.ReplaceAll(t, ",", ".")
		s = strings.ReplaceAll(s, " ", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid price string %q: %w", t, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("price is neither float nor string: %v", v)
	}
}
