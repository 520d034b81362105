package greenpoint

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Resolver maps an ISIN to a full Instrument record.
//
// Resolution failures are reported to the caller; the accounting engine
// never guesses an instrument it does not know.
type Resolver interface {
	Resolve(ctx context.Context, isin string) (Instrument, error)
}

// UnknownInstrumentError reports an ISIN the resolver has no record for.
type UnknownInstrumentError struct {
	ISIN string
}

func (e UnknownInstrumentError) Error() string {
	return fmt.Sprintf("unknown instrument: %s", e.ISIN)
}

// StaticResolver resolves instruments from an in-memory table, typically
// decoded from the instruments file.
type StaticResolver struct {
	instruments map[string]Instrument
}

// NewStaticResolver builds a resolver over the given instruments, indexed
// by ISIN.
func NewStaticResolver(instruments []Instrument) *StaticResolver {
	m := make(map[string]Instrument, len(instruments))
	for _, inst := range instruments {
		m[inst.ISIN()] = inst
	}
	return &StaticResolver{instruments: m}
}

// Resolve implements Resolver.
func (r *StaticResolver) Resolve(_ context.Context, isin string) (Instrument, error) {
	inst, ok := r.instruments[strings.ToUpper(isin)]
	if !ok {
		return Instrument{}, UnknownInstrumentError{ISIN: strings.ToUpper(isin)}
	}
	return inst, nil
}

// CachedResolver decorates a Resolver with a TTL cache, so that repeated
// lookups during an import do not hit a slow upstream (a web search, a
// database) again and again. TTL and cleanup cadence are configuration,
// not process-wide globals.
type CachedResolver struct {
	upstream Resolver
	cache    *gocache.Cache
}

// NewCachedResolver wraps upstream with a cache holding entries for ttl.
// Expired entries are purged at twice the ttl.
func NewCachedResolver(upstream Resolver, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		upstream: upstream,
		cache:    gocache.New(ttl, 2*ttl),
	}
}

// Resolve implements Resolver. Only successful resolutions are cached:
// an instrument unknown now may become known after the next import.
func (r *CachedResolver) Resolve(ctx context.Context, isin string) (Instrument, error) {
	key := strings.ToUpper(isin)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(Instrument), nil
	}
	inst, err := r.upstream.Resolve(ctx, key)
	if err != nil {
		return Instrument{}, err
	}
	r.cache.SetDefault(key, inst)
	return inst, nil
}
