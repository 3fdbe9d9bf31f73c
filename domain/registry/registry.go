package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"

	"pairbook/custody"
	"pairbook/domain/book"
)

// PairKey is the canonical identifier of an unordered asset pair: the hex
// SHA-256 of the pair after canonical ordering. KeyOf(a, b) == KeyOf(b, a).
type PairKey string

var (
	// ErrPairExists rejects a second registration of the same unordered pair.
	ErrPairExists = errors.New("pair exists")

	// ErrUnknownPair rejects operations against a pair with no book.
	ErrUnknownPair = errors.New("unknown pair")
)

// Entry ties one canonical pair to its order book. Base is the asset that
// orders by identifier above Quote; sell orders escrow Base, buy orders
// escrow Quote.
type Entry struct {
	Key   PairKey
	Base  custody.AssetID
	Quote custody.AssetID
	Book  *book.Book
}

// AssetOf returns the asset a given side escrows.
func (e *Entry) AssetOf(s book.Side) custody.AssetID {
	if s == book.Sell {
		return e.Base
	}
	return e.Quote
}

// Canonical orders an asset pair: the byte-wise larger identifier becomes
// the base.
func Canonical(a, b custody.AssetID) (base, quote custody.AssetID) {
	if a > b {
		return a, b
	}
	return b, a
}

// KeyOf derives the pair key from the canonically ordered pair.
func KeyOf(a, b custody.AssetID) PairKey {
	base, quote := Canonical(a, b)
	sum := sha256.Sum256([]byte(string(base) + "\x00" + string(quote)))
	return PairKey(hex.EncodeToString(sum[:]))
}

// Registry maps pair keys to order books, at most one book per unordered
// pair. Entries are created once and never updated or deleted.
type Registry struct {
	mu    sync.RWMutex
	next  func() uint64 // shared placedAt clock handed to every book
	books map[PairKey]*Entry
}

func New(next func() uint64) *Registry {
	return &Registry{next: next, books: make(map[PairKey]*Entry)}
}

// Register creates the book for an unordered pair. The check-then-insert runs
// under one lock, so concurrent registrations of the same pair cannot both
// succeed.
func (r *Registry) Register(a, b custody.AssetID) (*Entry, error) {
	if a == "" || b == "" {
		return nil, fmt.Errorf("%w: empty asset identifier", book.ErrInvalidParameters)
	}
	if a == b {
		return nil, fmt.Errorf("%w: identical assets %s", book.ErrInvalidParameters, a)
	}

	base, quote := Canonical(a, b)
	key := KeyOf(a, b)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[key]; ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrPairExists, base, quote)
	}
	e := &Entry{Key: key, Base: base, Quote: quote, Book: book.New(r.next)}
	r.books[key] = e
	return e, nil
}

// Lookup resolves an unordered pair to its entry, if registered.
func (r *Registry) Lookup(a, b custody.AssetID) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.books[KeyOf(a, b)]
	return e, ok
}

// Entries returns every registered pair, ordered by base then quote.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Entry, 0, len(r.books))
	for _, e := range r.books {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Base != out[j].Base {
			return out[i].Base < out[j].Base
		}
		return out[i].Quote < out[j].Quote
	})
	return out
}

// Len returns the number of supported pairs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.books)
}
