package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pairbook/custody"
	"pairbook/domain/book"
	"pairbook/domain/registry"
	"pairbook/events"
	"pairbook/infra/outbox"
	"pairbook/infra/sequence"
	"pairbook/infra/wal"
	"pairbook/metrics"
)

// Engine is the only write entry point into the system. It resolves pairs
// through the registry, drives the domain book, moves collateral through the
// custodian, journals committed operations and enqueues notification events.
//
// Journal and outbox are best-effort after the domain commit: a write failure
// is logged and the operation still succeeds, matching the synchronous
// all-or-nothing contract of the book itself.
type Engine struct {
	registry  *registry.Registry
	custodian custody.Custodian
	seq       *sequence.Sequencer
	journal   *wal.WAL       // nil disables journaling (tests)
	outbox    *outbox.Outbox // nil disables notifications (tests)
	log       *zap.Logger
}

func NewEngine(
	reg *registry.Registry,
	custodian custody.Custodian,
	seq *sequence.Sequencer,
	journal *wal.WAL,
	ob *outbox.Outbox,
	log *zap.Logger,
) *Engine {
	return &Engine{
		registry:  reg,
		custodian: custodian,
		seq:       seq,
		journal:   journal,
		outbox:    ob,
		log:       log,
	}
}

// RegisterPair creates the order book for an unordered asset pair. The
// sequence is drawn before the registry commit so that every placedAt on the
// new book sorts after the registration record in the journal.
func (e *Engine) RegisterPair(ctx context.Context, a, b custody.AssetID) (*registry.Entry, error) {
	seq := e.seq.Next()

	entry, err := e.registry.Register(a, b)
	if err != nil {
		metrics.OrdersRejected.WithLabelValues(reason(err)).Inc()
		return nil, err
	}

	e.journalRecord(wal.RecordRegister, seq, registerPayload{
		Base:  string(entry.Base),
		Quote: string(entry.Quote),
	})
	e.notify(seq, events.Event{
		V:     1,
		Type:  events.TypePairRegistered,
		Seq:   seq,
		Pair:  pairLabel(entry),
		Base:  string(entry.Base),
		Quote: string(entry.Quote),
	})

	metrics.PairsRegistered.Inc()
	e.log.Info("pair registered",
		zap.String("base", string(entry.Base)),
		zap.String("quote", string(entry.Quote)),
		zap.String("key", string(entry.Key)),
	)
	return entry, nil
}

// Place rests a new order. The custody debit runs as the final step inside
// the side's lock; a rejected debit rolls the whole operation back.
func (e *Engine) Place(
	ctx context.Context,
	a, b custody.AssetID,
	participant book.ParticipantID,
	side book.Side,
	price, qty uint64,
) (book.Order, error) {
	entry, ok := e.registry.Lookup(a, b)
	if !ok {
		return book.Order{}, fmt.Errorf("%w: %s/%s", registry.ErrUnknownPair, a, b)
	}

	asset := entry.AssetOf(side)
	o, err := entry.Book.Place(participant, side, price, qty, func(o book.Order) error {
		return e.custodian.Debit(ctx, asset, participant, o.Quantity)
	})
	if err != nil {
		if errors.Is(err, custody.ErrTransferFailed) {
			metrics.CustodyFailures.Inc()
		}
		metrics.OrdersRejected.WithLabelValues(reason(err)).Inc()
		return book.Order{}, err
	}

	seq := o.PlacedAt
	e.journalRecord(wal.RecordPlace, seq, placePayload{
		Base:        string(entry.Base),
		Quote:       string(entry.Quote),
		Participant: string(participant),
		Side:        side.String(),
		Price:       price,
		Quantity:    qty,
	})
	e.notify(seq, events.Event{
		V:           1,
		Type:        events.TypeOrderPlaced,
		Seq:         seq,
		Pair:        pairLabel(entry),
		Side:        side.String(),
		Price:       price,
		Quantity:    qty,
		Participant: string(participant),
	})

	metrics.OrdersPlaced.WithLabelValues(side.String()).Inc()
	metrics.RestingOrders.WithLabelValues(pairLabel(entry), side.String()).Set(float64(entry.Book.Count(side)))
	e.log.Info("order placed",
		zap.String("pair", pairLabel(entry)),
		zap.Stringer("side", side),
		zap.Uint64("price", price),
		zap.Uint64("qty", qty),
		zap.String("participant", string(participant)),
		zap.Uint64("seq", seq),
	)
	return o, nil
}

// Cancel removes a resting order and refunds its collateral.
func (e *Engine) Cancel(
	ctx context.Context,
	a, b custody.AssetID,
	participant book.ParticipantID,
	side book.Side,
) (book.Order, error) {
	entry, ok := e.registry.Lookup(a, b)
	if !ok {
		return book.Order{}, fmt.Errorf("%w: %s/%s", registry.ErrUnknownPair, a, b)
	}

	asset := entry.AssetOf(side)
	// The cancel sequence comes out of Book.Cancel, stamped under the side
	// lock: a replacement order racing the cancel journals after it.
	o, seq, err := entry.Book.Cancel(participant, side, func(o book.Order) error {
		return e.custodian.Credit(ctx, asset, participant, o.Quantity)
	})
	if err != nil {
		if errors.Is(err, custody.ErrTransferFailed) {
			metrics.CustodyFailures.Inc()
		}
		metrics.OrdersRejected.WithLabelValues(reason(err)).Inc()
		return book.Order{}, err
	}

	e.journalRecord(wal.RecordCancel, seq, cancelPayload{
		Base:        string(entry.Base),
		Quote:       string(entry.Quote),
		Participant: string(participant),
		Side:        side.String(),
	})
	e.notify(seq, events.Event{
		V:           1,
		Type:        events.TypeOrderCancelled,
		Seq:         seq,
		Pair:        pairLabel(entry),
		Side:        side.String(),
		Participant: string(participant),
	})

	metrics.OrdersCancelled.WithLabelValues(side.String()).Inc()
	metrics.RestingOrders.WithLabelValues(pairLabel(entry), side.String()).Set(float64(entry.Book.Count(side)))
	e.log.Info("order cancelled",
		zap.String("pair", pairLabel(entry)),
		zap.Stringer("side", side),
		zap.String("participant", string(participant)),
		zap.Uint64("seq", seq),
	)
	return o, nil
}

// Side returns one side of a pair's book in priority order.
func (e *Engine) Side(a, b custody.AssetID, side book.Side) ([]book.Level, error) {
	entry, ok := e.registry.Lookup(a, b)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", registry.ErrUnknownPair, a, b)
	}
	return entry.Book.Enumerate(side), nil
}

// Best returns the highest-priority order on one side.
func (e *Engine) Best(a, b custody.AssetID, side book.Side) (book.Order, book.ParticipantID, error) {
	entry, ok := e.registry.Lookup(a, b)
	if !ok {
		return book.Order{}, "", fmt.Errorf("%w: %s/%s", registry.ErrUnknownPair, a, b)
	}
	return entry.Book.Best(side)
}

// Spread returns |best buy - best sell| for a pair.
func (e *Engine) Spread(a, b custody.AssetID) (uint64, error) {
	entry, ok := e.registry.Lookup(a, b)
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s", registry.ErrUnknownPair, a, b)
	}
	return entry.Book.Spread()
}

// PairsSupported returns the number of registered pairs.
func (e *Engine) PairsSupported() int {
	return e.registry.Len()
}

// Pairs returns every registered pair.
func (e *Engine) Pairs() []*registry.Entry {
	return e.registry.Entries()
}

// LookupBook resolves an unordered pair to its canonical entry.
func (e *Engine) LookupBook(a, b custody.AssetID) (*registry.Entry, bool) {
	return e.registry.Lookup(a, b)
}

func (e *Engine) append(rec *wal.Record) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Append(rec); err != nil {
		e.log.Error("journal append failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
		return
	}
	if err := e.journal.Sync(); err != nil {
		e.log.Error("journal sync failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
	}
}

func (e *Engine) notify(seq uint64, ev events.Event) {
	if e.outbox == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		e.log.Error("event encode failed", zap.Uint64("seq", seq), zap.Error(err))
		return
	}
	if err := e.outbox.Enqueue(seq, payload); err != nil {
		e.log.Error("outbox enqueue failed", zap.Uint64("seq", seq), zap.Error(err))
	}
}

func pairLabel(e *registry.Entry) string {
	return string(e.Base) + "/" + string(e.Quote)
}

func reason(err error) string {
	switch {
	case errors.Is(err, book.ErrInvalidParameters):
		return "invalid_parameters"
	case errors.Is(err, book.ErrDuplicateOrder):
		return "duplicate_order"
	case errors.Is(err, book.ErrNoSuchOrder):
		return "no_such_order"
	case errors.Is(err, registry.ErrPairExists):
		return "pair_exists"
	case errors.Is(err, registry.ErrUnknownPair):
		return "unknown_pair"
	case errors.Is(err, custody.ErrTransferFailed):
		return "custody_transfer_failed"
	default:
		return "internal"
	}
}
