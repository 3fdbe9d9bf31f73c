package service

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"pairbook/custody"
	"pairbook/domain/book"
	"pairbook/domain/registry"
	"pairbook/infra/sequence"
	"pairbook/infra/wal"
)

// Replay rebuilds the registry and every book from the journal. It must run
// before the engine accepts traffic. Records are applied in sequence order;
// the sequencer is advanced alongside so each replayed placement receives its
// original placedAt. Custody transfers are not re-applied: the custodian's
// ledger is durable on its own.
func Replay(dir string, reg *registry.Registry, seq *sequence.Sequencer, log *zap.Logger) error {
	var records []*wal.Record
	if _, err := wal.Replay(dir, func(rec *wal.Record) error {
		records = append(records, rec)
		return nil
	}); err != nil {
		return err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })

	for _, rec := range records {
		if err := apply(rec, reg, seq); err != nil {
			return fmt.Errorf("replay seq %d: %w", rec.Seq, err)
		}
	}

	log.Info("journal replayed",
		zap.String("dir", dir),
		zap.Int("records", len(records)),
		zap.Uint64("last_seq", seq.Current()),
	)
	return nil
}

func apply(rec *wal.Record, reg *registry.Registry, seq *sequence.Sequencer) error {
	switch rec.Type {
	case wal.RecordRegister:
		var p registerPayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return fmt.Errorf("malformed register payload %q: %w", rec.Data, err)
		}
		seq.Advance(rec.Seq)
		_, err := reg.Register(custody.AssetID(p.Base), custody.AssetID(p.Quote))
		return err

	case wal.RecordPlace:
		var p placePayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return fmt.Errorf("malformed place payload %q: %w", rec.Data, err)
		}
		entry, ok := reg.Lookup(custody.AssetID(p.Base), custody.AssetID(p.Quote))
		if !ok {
			return fmt.Errorf("%w: %s/%s", registry.ErrUnknownPair, p.Base, p.Quote)
		}
		side, err := book.ParseSide(p.Side)
		if err != nil {
			return err
		}

		// The book draws placedAt from the shared clock; park it one short
		// of the recorded sequence so the replayed order gets the original.
		seq.Advance(rec.Seq - 1)
		_, err = entry.Book.Place(book.ParticipantID(p.Participant), side, p.Price, p.Quantity, nil)
		return err

	case wal.RecordCancel:
		var p cancelPayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return fmt.Errorf("malformed cancel payload %q: %w", rec.Data, err)
		}
		entry, ok := reg.Lookup(custody.AssetID(p.Base), custody.AssetID(p.Quote))
		if !ok {
			return fmt.Errorf("%w: %s/%s", registry.ErrUnknownPair, p.Base, p.Quote)
		}
		side, err := book.ParseSide(p.Side)
		if err != nil {
			return err
		}

		// Cancel draws its sequence from the clock too; park it the same way.
		seq.Advance(rec.Seq - 1)
		_, _, err = entry.Book.Cancel(book.ParticipantID(p.Participant), side, nil)
		return err

	default:
		return fmt.Errorf("unknown record type %d", rec.Type)
	}
}
