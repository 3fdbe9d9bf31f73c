package book

import "fmt"

// Side selects one of the two resting lists of a book.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// ParseSide maps the wire spelling of a side back to its constant.
func ParseSide(v string) (Side, error) {
	switch v {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("%w: unknown side %q", ErrInvalidParameters, v)
	}
}

// noWorse reports whether a resting order at price p keeps at least the
// priority of a new order at price q. Equal prices count as no worse, which
// is what pushes a new order behind every resting order at the same price
// (FIFO tie-break).
func (s Side) noWorse(p, q uint64) bool {
	if s == Buy {
		return p >= q
	}
	return p <= q
}
