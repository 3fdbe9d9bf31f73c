package outbox

import (
	"testing"
)

func openTestOutbox(t *testing.T) *Outbox {
	t.Helper()
	ob, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open outbox: %v", err)
	}
	t.Cleanup(func() { _ = ob.Close() })
	return ob
}

func TestEnqueueAndGet(t *testing.T) {
	ob := openTestOutbox(t)

	if err := ob.Enqueue(7, []byte(`{"type":"order.placed"}`)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	rec, err := ob.Get(7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Seq != 7 || rec.State != StateNew || rec.Retries != 0 {
		t.Errorf("record = %+v, want fresh NEW row", rec)
	}
	if string(rec.Payload) != `{"type":"order.placed"}` {
		t.Errorf("payload = %q", rec.Payload)
	}
}

func TestStateTransitions(t *testing.T) {
	ob := openTestOutbox(t)
	_ = ob.Enqueue(1, []byte("x"))

	if err := ob.MarkSent(1); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	rec, _ := ob.Get(1)
	if rec.State != StateSent || rec.Retries != 1 || rec.LastAttempt == 0 {
		t.Errorf("after sent: %+v", rec)
	}

	if err := ob.MarkFailed(1); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	rec, _ = ob.Get(1)
	if rec.State != StateFailed || rec.Retries != 2 {
		t.Errorf("after failed: %+v", rec)
	}

	if err := ob.MarkAcked(1); err != nil {
		t.Fatalf("mark acked: %v", err)
	}
	rec, _ = ob.Get(1)
	if rec.State != StateAcked || rec.Retries != 2 {
		t.Errorf("ack must not bump retries: %+v", rec)
	}
}

func TestScanPendingSkipsAckedAndKeepsOrder(t *testing.T) {
	ob := openTestOutbox(t)
	for seq := uint64(1); seq <= 5; seq++ {
		_ = ob.Enqueue(seq, []byte("x"))
	}
	_ = ob.MarkSent(3)
	_ = ob.MarkAcked(3)

	var seen []uint64
	if err := ob.ScanPending(func(rec Record) error {
		seen = append(seen, rec.Seq)
		return nil
	}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []uint64{1, 2, 4, 5}
	if len(seen) != len(want) {
		t.Fatalf("pending = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("pending = %v, want %v in sequence order", seen, want)
		}
	}
}

func TestSentRowsStayPending(t *testing.T) {
	ob := openTestOutbox(t)
	_ = ob.Enqueue(1, []byte("x"))
	_ = ob.MarkSent(1)

	// A crash between send and ack leaves SENT; the next pass must retry it.
	n, err := ob.PendingCount()
	if err != nil {
		t.Fatalf("pending count: %v", err)
	}
	if n != 1 {
		t.Errorf("pending = %d, want 1", n)
	}
}

func TestSweepAcked(t *testing.T) {
	ob := openTestOutbox(t)
	for seq := uint64(1); seq <= 3; seq++ {
		_ = ob.Enqueue(seq, []byte("x"))
	}
	_ = ob.MarkAcked(1)
	_ = ob.MarkAcked(2)

	n, err := ob.SweepAcked()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 2 {
		t.Errorf("swept %d, want 2", n)
	}
	if _, err := ob.Get(1); err == nil {
		t.Error("swept row must be gone")
	}
	if pending, _ := ob.PendingCount(); pending != 1 {
		t.Errorf("pending = %d, want 1", pending)
	}
}

func TestRowsSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	ob, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = ob.Enqueue(9, []byte("durable"))
	if err := ob.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ob2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer ob2.Close()

	rec, err := ob2.Get(9)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if rec.State != StateNew || string(rec.Payload) != "durable" {
		t.Errorf("record = %+v", rec)
	}
}
