// Package greenpoint implements a portfolio accounting engine.
//
// The engine turns a chronological stream of brokerage events (trades,
// dividends, taxes, cash movements) into a point-in-time valuation:
// per-instrument position and cost basis, realized and unrealized gain,
// and aggregate cash balances by currency.
//
// The package is deliberately persistence and transport agnostic: it
// consumes already-materialized slices of Operation, CashOperation and
// Quote values, and returns plain state structures. Collaborators that
// acquire those records (brokerage importers, quote providers) live in
// their own packages or outside this module entirely.
package greenpoint
