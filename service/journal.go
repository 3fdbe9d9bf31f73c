package service

import (
	"encoding/json"

	"go.uber.org/zap"

	"pairbook/infra/wal"
)

// Journal payload bodies. JSON framing keeps opaque asset and participant
// identifiers intact inside a record, whatever bytes they contain.

type registerPayload struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

type placePayload struct {
	Base        string `json:"base"`
	Quote       string `json:"quote"`
	Participant string `json:"participant"`
	Side        string `json:"side"`
	Price       uint64 `json:"price"`
	Quantity    uint64 `json:"quantity"`
}

type cancelPayload struct {
	Base        string `json:"base"`
	Quote       string `json:"quote"`
	Participant string `json:"participant"`
	Side        string `json:"side"`
}

func (e *Engine) journalRecord(t wal.RecordType, seq uint64, payload any) {
	if e.journal == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		e.log.Error("journal payload encode failed", zap.Uint64("seq", seq), zap.Error(err))
		return
	}
	e.append(wal.NewRecord(t, seq, data))
}
