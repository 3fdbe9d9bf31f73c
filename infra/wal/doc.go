// Package wal journals every committed mutating operation (pair
// registration, order placement, order cancellation) so the engine can
// rebuild its in-memory books after a restart. Records are written after the
// operation commits; a record in the journal is a fact, not an intent.
package wal
