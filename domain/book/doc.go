// Package book implements the resting order book for one asset pair: two
// independent sides, each a record store plus a sentinel-anchored priority
// index sorted by price with FIFO tie-break at equal price.
//
// The package is pure and deterministic. It performs no I/O, no matching and
// no collateral movement; coordination with custody, journaling and event
// publication lives in the service layer.
package book
