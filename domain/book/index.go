package book

// priorityIndex keeps one side's participants in price-time priority order.
//
// It is a sentinel-anchored singly-linked list stored as a map from each
// participant to its next-lower-priority neighbour. Splices are O(1) given a
// predecessor; predecessor search is a linear scan bounded by side depth.
// Prices live in the side's record store, reached through priceOf, so the
// index itself never duplicates order state.
type priorityIndex struct {
	side    Side
	next    map[ParticipantID]ParticipantID
	priceOf func(ParticipantID) uint64
}

func newPriorityIndex(side Side, priceOf func(ParticipantID) uint64) priorityIndex {
	ix := priorityIndex{
		side:    side,
		next:    make(map[ParticipantID]ParticipantID),
		priceOf: priceOf,
	}
	ix.next[sentinel] = sentinel
	return ix
}

// front returns the best participant, or the sentinel on an empty side.
func (ix priorityIndex) front() ParticipantID {
	return ix.next[sentinel]
}

// insertionPredecessor returns the node after which an order at price must be
// spliced: the last node whose price is no worse than price under the side's
// comparator. Ties count as no worse, so an equal-price order lands behind
// every resting order at that price.
func (ix priorityIndex) insertionPredecessor(price uint64) ParticipantID {
	prev := sentinel
	for cur := ix.next[sentinel]; cur != sentinel; cur = ix.next[cur] {
		if !ix.side.noWorse(ix.priceOf(cur), price) {
			break
		}
		prev = cur
	}
	return prev
}

// predecessorOf returns the node linking to id. Used only by cancel.
func (ix priorityIndex) predecessorOf(id ParticipantID) (ParticipantID, bool) {
	prev := sentinel
	for cur := ix.next[sentinel]; cur != sentinel; cur = ix.next[cur] {
		if cur == id {
			return prev, true
		}
		prev = cur
	}
	return sentinel, false
}

// insertAfter splices id between prev and prev's former successor.
func (ix priorityIndex) insertAfter(prev, id ParticipantID) {
	ix.next[id] = ix.next[prev]
	ix.next[prev] = id
}

// removeAfter splices id out, linking prev to id's former successor.
func (ix priorityIndex) removeAfter(prev, id ParticipantID) {
	ix.next[prev] = ix.next[id]
	delete(ix.next, id)
}
