package book

import "errors"

var (
	// ErrInvalidParameters rejects a zero price or quantity, a sentinel
	// participant, or an unknown side.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrDuplicateOrder rejects a second place on a side the participant
	// already occupies.
	ErrDuplicateOrder = errors.New("duplicate order")

	// ErrNoSuchOrder rejects a cancel with nothing resting.
	ErrNoSuchOrder = errors.New("no such order")

	// ErrEmptySide is returned by spread and best-of-side reads that need a
	// resting order on a side that has none.
	ErrEmptySide = errors.New("empty side")
)
