package quotefeed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jd/greenpoint"
	"github.com/jd/greenpoint/date"
)

type fakeProvider struct {
	name   string
	quotes []greenpoint.Quote
	err    error
	delay  time.Duration

	mu    sync.Mutex
	calls int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) FetchDaily(ctx context.Context, _ greenpoint.Instrument, _, _ date.Date) ([]greenpoint.Quote, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.quotes, p.err
}

func fp(v float64) *float64 { return &v }

func vol(v int64) *int64 { return &v }

func bar(day string, close float64) greenpoint.Quote {
	return greenpoint.Quote{Date: date.MustParse(day), Close: fp(close)}
}

func testInstrument(t *testing.T) greenpoint.Instrument {
	t.Helper()
	inst, err := greenpoint.NewInstrument("US0378331005", greenpoint.Stock, "Apple Inc.", "AAPL", "XNAS", "USD")
	require.NoError(t, err)
	return inst
}

func TestRefreshMergesByPriority(t *testing.T) {
	primary := &fakeProvider{
		name:   "primary",
		quotes: []greenpoint.Quote{{Date: date.MustParse("2021-01-04"), Close: fp(100)}},
	}
	secondary := &fakeProvider{
		name: "secondary",
		quotes: []greenpoint.Quote{
			{Date: date.MustParse("2021-01-04"), Close: fp(999), Volume: vol(5000)},
			bar("2021-01-05", 101),
		},
	}

	feed := New([]Provider{primary, secondary}, 0, zerolog.Nop())
	series, report := feed.Refresh(context.Background(), testInstrument(t),
		date.MustParse("2021-01-04"), date.MustParse("2021-01-05"))

	require.Empty(t, report.Failed())
	assert.Equal(t, 3, report.Fetched())
	require.Equal(t, 2, series.Len())

	q, ok := series.Get(date.MustParse("2021-01-04"))
	require.True(t, ok)
	// The primary's close wins; the secondary only fills the volume gap.
	assert.Equal(t, 100.0, *q.Close)
	require.NotNil(t, q.Volume)
	assert.Equal(t, int64(5000), *q.Volume)

	q, ok = series.Get(date.MustParse("2021-01-05"))
	require.True(t, ok)
	assert.Equal(t, 101.0, *q.Close)
}

func TestRefreshToleratesFailures(t *testing.T) {
	down := &fakeProvider{name: "down", err: errors.New("http 503")}
	up := &fakeProvider{name: "up", quotes: []greenpoint.Quote{bar("2021-01-04", 100)}}

	feed := New([]Provider{down, up}, 0, zerolog.Nop())
	series, report := feed.Refresh(context.Background(), testInstrument(t),
		date.MustParse("2021-01-04"), date.MustParse("2021-01-04"))

	require.Equal(t, 1, series.Len())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "down", failed[0].Provider)
	assert.ErrorContains(t, failed[0].Err, "503")
}

func TestRefreshAllProvidersFail(t *testing.T) {
	feed := New([]Provider{
		&fakeProvider{name: "a", err: errors.New("boom")},
		&fakeProvider{name: "b", err: errors.New("boom")},
	}, 0, zerolog.Nop())

	series, report := feed.Refresh(context.Background(), testInstrument(t),
		date.MustParse("2021-01-04"), date.MustParse("2021-01-04"))

	assert.Equal(t, 0, series.Len())
	assert.Len(t, report.Failed(), 2)
	assert.Equal(t, 0, report.Fetched())
}

func TestRefreshDeterministicUnderConcurrency(t *testing.T) {
	// The slower, higher-priority provider must still win the merge.
	slow := &fakeProvider{
		name:   "slow-primary",
		delay:  20 * time.Millisecond,
		quotes: []greenpoint.Quote{bar("2021-01-04", 100)},
	}
	fast := &fakeProvider{
		name:   "fast-secondary",
		quotes: []greenpoint.Quote{bar("2021-01-04", 999)},
	}

	feed := New([]Provider{slow, fast}, 2, zerolog.Nop())
	for i := 0; i < 5; i++ {
		series, report := feed.Refresh(context.Background(), testInstrument(t),
			date.MustParse("2021-01-04"), date.MustParse("2021-01-04"))
		require.Empty(t, report.Failed())
		q, ok := series.Get(date.MustParse("2021-01-04"))
		require.True(t, ok)
		assert.Equal(t, 100.0, *q.Close)
	}
}

func TestRefreshReportOrder(t *testing.T) {
	providers := []Provider{
		&fakeProvider{name: "first"},
		&fakeProvider{name: "second", delay: 5 * time.Millisecond},
		&fakeProvider{name: "third"},
	}
	feed := New(providers, 3, zerolog.Nop())

	_, report := feed.Refresh(context.Background(), testInstrument(t),
		date.MustParse("2021-01-04"), date.MustParse("2021-01-04"))

	require.Len(t, report, 3)
	for i, want := range []string{"first", "second", "third"} {
		assert.Equal(t, want, report[i].Provider)
	}
}

func TestRefreshCallsEveryProviderOnce(t *testing.T) {
	providers := make([]Provider, 4)
	fakes := make([]*fakeProvider, 4)
	for i := range providers {
		fakes[i] = &fakeProvider{name: string(rune('a' + i))}
		providers[i] = fakes[i]
	}

	// A limit below the provider count still reaches every provider.
	feed := New(providers, 2, zerolog.Nop())
	feed.Refresh(context.Background(), testInstrument(t),
		date.MustParse("2021-01-04"), date.MustParse("2021-01-04"))

	for _, f := range fakes {
		assert.Equal(t, 1, f.calls, "provider %s", f.name)
	}
}
