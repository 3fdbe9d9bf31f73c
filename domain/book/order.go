package book

// ParticipantID identifies an account holding resting orders. The zero value
// is reserved as the list sentinel and is never a valid participant.
type ParticipantID string

// sentinel anchors each side's priority index: sentinel -> sentinel is an
// empty side, sentinel -> X means X is the best resting order, and the last
// order of a non-empty side links back to the sentinel.
const sentinel ParticipantID = ""

// Order is the resting record of one participant on one side. PlacedAt is a
// monotonic sequence number, not wall time; equal-price orders keep FIFO
// order by it.
type Order struct {
	Price    uint64
	Quantity uint64
	PlacedAt uint64
}

// Level is one row of a side enumeration, best first.
type Level struct {
	Participant ParticipantID
	Price       uint64
	Quantity    uint64
}
