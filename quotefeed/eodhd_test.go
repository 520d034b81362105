package quotefeed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jd/greenpoint"
)

func mustInstrument(t *testing.T, isin string, typ greenpoint.InstrumentType, symbol, mic string) greenpoint.Instrument {
	t.Helper()
	inst, err := greenpoint.NewInstrument(isin, typ, "test", symbol, mic, "EUR")
	require.NoError(t, err)
	return inst
}

func TestEODHDTicker(t *testing.T) {
	p := NewEODHD("demo")

	ticker, err := p.ticker(mustInstrument(t, "FR0000120321", greenpoint.Stock, "OR", "XPAR"))
	require.NoError(t, err)
	assert.Equal(t, "OR.PA", ticker)

	ticker, err = p.ticker(mustInstrument(t, "US0378331005", greenpoint.Stock, "AAPL", "XNAS"))
	require.NoError(t, err)
	assert.Equal(t, "AAPL.US", ticker)

	// Funds carry no symbol: they are looked up by ISIN on the virtual
	// fund exchange.
	ticker, err = p.ticker(mustInstrument(t, "IE00B4L5Y983", greenpoint.Fund, "", ""))
	require.NoError(t, err)
	assert.Equal(t, "IE00B4L5Y983.EUFUND", ticker)
}

func TestEODHDTickerErrors(t *testing.T) {
	p := NewEODHD("demo")

	_, err := p.ticker(mustInstrument(t, "US0378331005", greenpoint.Stock, "", ""))
	assert.ErrorContains(t, err, "no symbol or venue")

	_, err = p.ticker(mustInstrument(t, "US0378331005", greenpoint.Stock, "AAPL", "XTSE"))
	assert.ErrorContains(t, err, "no eodhd exchange code")
}

func TestAsFloat(t *testing.T) {
	v, err := asFloat(12.5)
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	// Tradegate localizes decimals and pads thousands with spaces.
	v, err = asFloat("1 234,56")
	require.NoError(t, err)
	assert.Equal(t, 1234.56, v)

	_, err = asFloat("./.")
	assert.Error(t, err)

	_, err = asFloat(nil)
	assert.Error(t, err)
}
