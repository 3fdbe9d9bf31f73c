package book

import (
	"fmt"
	"sync"
)

// Book is a two-sided resting order book for a single asset pair.
//
// It composes, per side, an order record store, a priority index and a length
// counter, all guarded by one mutex per side. The two sides are fully
// independent and may be mutated concurrently. The book never matches or
// executes orders; collateral movement belongs to the caller.
type Book struct {
	buy  *bookSide
	sell *bookSide

	// next supplies placedAt values. It is called under the side lock, so
	// placement order within a side always matches commit order.
	next func() uint64
}

// bookSide is one side's mutual-exclusion domain: the predecessor scan and
// the splice that follows must never interleave with another mutation of the
// same side.
type bookSide struct {
	mu     sync.Mutex
	orders map[ParticipantID]Order
	index  priorityIndex
	count  uint64
}

func newBookSide(s Side) *bookSide {
	bs := &bookSide{orders: make(map[ParticipantID]Order)}
	bs.index = newPriorityIndex(s, func(id ParticipantID) uint64 {
		return bs.orders[id].Price
	})
	return bs
}

// New creates an empty book. next must issue strictly monotonic values
// shared by every book of the engine; they become placedAt sequence numbers.
func New(next func() uint64) *Book {
	return &Book{
		buy:  newBookSide(Buy),
		sell: newBookSide(Sell),
		next: next,
	}
}

func (b *Book) sideOf(s Side) *bookSide {
	if s == Buy {
		return b.buy
	}
	return b.sell
}

// TransferFn moves collateral for an order. The book invokes it while still
// holding the side lock, after the splice: a transfer error unwinds the
// record, index and counter before the lock is released, so no caller ever
// observes a partially applied operation.
type TransferFn func(Order) error

// Place records a resting order for id on side s and stamps it with the next
// placedAt sequence, the FIFO tie-break at equal price. fund, if non-nil,
// escrows the order's collateral as the final step.
func (b *Book) Place(id ParticipantID, s Side, price, qty uint64, fund TransferFn) (Order, error) {
	if id == sentinel {
		return Order{}, fmt.Errorf("%w: empty participant", ErrInvalidParameters)
	}
	if price == 0 || qty == 0 {
		return Order{}, fmt.Errorf("%w: price=%d qty=%d", ErrInvalidParameters, price, qty)
	}

	bs := b.sideOf(s)
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if _, ok := bs.orders[id]; ok {
		return Order{}, fmt.Errorf("%w: %s already resting on %s", ErrDuplicateOrder, id, s)
	}

	prev := bs.index.insertionPredecessor(price)
	o := Order{Price: price, Quantity: qty, PlacedAt: b.next()}
	bs.orders[id] = o
	bs.index.insertAfter(prev, id)
	bs.count++

	if fund != nil {
		if err := fund(o); err != nil {
			bs.index.removeAfter(prev, id)
			delete(bs.orders, id)
			bs.count--
			return Order{}, fmt.Errorf("fund %s order: %w", s, err)
		}
	}
	return o, nil
}

// Cancel removes id's resting order from side s and returns it together
// with a cancellation sequence drawn from the shared clock. The draw happens
// before the side lock is released, so a replacement order racing the cancel
// always sequences after it. refund, if non-nil, releases the order's
// collateral as the final step.
func (b *Book) Cancel(id ParticipantID, s Side, refund TransferFn) (Order, uint64, error) {
	bs := b.sideOf(s)
	bs.mu.Lock()
	defer bs.mu.Unlock()

	o, ok := bs.orders[id]
	if !ok {
		return Order{}, 0, fmt.Errorf("%w: %s has nothing resting on %s", ErrNoSuchOrder, id, s)
	}
	prev, ok := bs.index.predecessorOf(id)
	if !ok {
		// Record without an index node: the side invariant is broken.
		return Order{}, 0, fmt.Errorf("%w: %s recorded but not indexed on %s", ErrNoSuchOrder, id, s)
	}

	bs.index.removeAfter(prev, id)
	delete(bs.orders, id)
	bs.count--

	if refund != nil {
		if err := refund(o); err != nil {
			bs.orders[id] = o
			bs.index.insertAfter(prev, id)
			bs.count++
			return Order{}, 0, fmt.Errorf("refund %s order: %w", s, err)
		}
	}
	return o, b.next(), nil
}

// Best returns the highest-priority order on side s.
func (b *Book) Best(s Side) (Order, ParticipantID, error) {
	bs := b.sideOf(s)
	bs.mu.Lock()
	defer bs.mu.Unlock()

	front := bs.index.front()
	if front == sentinel {
		return Order{}, sentinel, fmt.Errorf("%w: %s", ErrEmptySide, s)
	}
	return bs.orders[front], front, nil
}

// Count returns the number of resting orders on side s.
func (b *Book) Count(s Side) uint64 {
	bs := b.sideOf(s)
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.count
}

// Enumerate walks side s front to back and returns a snapshot of every
// resting order in priority order. The result is already sorted by the side's
// comparator with FIFO tie-break, by the index invariant.
func (b *Book) Enumerate(s Side) []Level {
	bs := b.sideOf(s)
	bs.mu.Lock()
	defer bs.mu.Unlock()

	out := make([]Level, 0, bs.count)
	for cur := bs.index.front(); cur != sentinel; cur = bs.index.next[cur] {
		o := bs.orders[cur]
		out = append(out, Level{Participant: cur, Price: o.Price, Quantity: o.Quantity})
	}
	return out
}

// Spread returns |best buy - best sell|. A side without a resting order makes
// the spread undefined and yields ErrEmptySide; the price of a missing order
// is never read as zero.
func (b *Book) Spread() (uint64, error) {
	// Lock order is fixed buy-then-sell so concurrent spread reads cannot
	// deadlock against each other.
	b.buy.mu.Lock()
	defer b.buy.mu.Unlock()
	b.sell.mu.Lock()
	defer b.sell.mu.Unlock()

	bestBuy := b.buy.index.front()
	if bestBuy == sentinel {
		return 0, fmt.Errorf("%w: buy", ErrEmptySide)
	}
	bestSell := b.sell.index.front()
	if bestSell == sentinel {
		return 0, fmt.Errorf("%w: sell", ErrEmptySide)
	}

	bp := b.buy.orders[bestBuy].Price
	sp := b.sell.orders[bestSell].Price
	if bp > sp {
		return bp - sp, nil
	}
	return sp - bp, nil
}
