// Package events defines the JSON payloads published to the notification
// topic. Observers consume them; nothing in the engine reads them back.
package events

const (
	TypePairRegistered = "pair_registered"
	TypeOrderPlaced    = "order_placed"
	TypeOrderCancelled = "order_cancelled"
)

// Event is the envelope for every notification. Seq is the engine-wide
// operation sequence and deduplicates at-least-once delivery.
type Event struct {
	V    int    `json:"v"`
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
	Pair string `json:"pair"`

	Base  string `json:"base,omitempty"`
	Quote string `json:"quote,omitempty"`

	Side        string `json:"side,omitempty"`
	Price       uint64 `json:"price,omitempty"`
	Quantity    uint64 `json:"quantity,omitempty"`
	Participant string `json:"participant,omitempty"`
}
