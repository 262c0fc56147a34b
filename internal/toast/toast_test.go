package toast

import (
	"testing"
	"time"
)

func TestPushAndDrain(t *testing.T) {
	q := NewQueue(0)

	q.Push("s1", Success, "Saved")
	q.Push("s1", Error, "Failed")
	q.Push("s2", Info, "Other")

	got := q.Drain("s1")
	if len(got) != 2 {
		t.Fatalf("expected 2 toasts, got %d", len(got))
	}
	if got[0].Message != "Saved" || got[1].Message != "Failed" {
		t.Errorf("expected oldest first, got %q, %q", got[0].Message, got[1].Message)
	}
	if got[0].TTL != 3*time.Second || got[0].TTLMillis() != 3000 {
		t.Errorf("expected 3s ttl, got %v", got[0].TTL)
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Errorf("expected unique ids, got %q and %q", got[0].ID, got[1].ID)
	}

	if again := q.Drain("s1"); len(again) != 0 {
		t.Errorf("expected queue drained, got %d", len(again))
	}
	if other := q.Drain("s2"); len(other) != 1 {
		t.Errorf("expected other key untouched, got %d", len(other))
	}
}

func TestPushWithoutKeyIsDropped(t *testing.T) {
	q := NewQueue(time.Second)
	q.Push("", Info, "nobody")
	if got := q.Drain(""); len(got) != 0 {
		t.Errorf("expected nothing queued, got %d", len(got))
	}
}

func TestSinkAndPeek(t *testing.T) {
	q := NewQueue(time.Second)
	q.For("s1").Push(Success, "Created")

	peeked := q.Peek("s1")
	if len(peeked) != 1 || peeked[0].Kind != Success {
		t.Fatalf("unexpected peek: %+v", peeked)
	}
	if len(q.Drain("s1")) != 1 {
		t.Error("expected peek to leave the toast queued")
	}
}

func TestMoveAndPurge(t *testing.T) {
	q := NewQueue(time.Second)
	q.Push("visitor", Info, "Welcome")
	q.Push("s1", Success, "Hello")

	q.Move("visitor", "s1")
	got := q.Drain("s1")
	if len(got) != 2 || got[1].Message != "Welcome" {
		t.Errorf("unexpected toasts after move: %+v", got)
	}
	if len(q.Drain("visitor")) != 0 {
		t.Error("expected source key emptied")
	}

	q.Push("s1", Error, "x")
	q.Purge("s1")
	if len(q.Drain("s1")) != 0 {
		t.Error("expected purge to drop toasts")
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	if r.Last().Message != "" {
		t.Error("expected zero toast")
	}
	r.Push(Error, "boom")
	if last := r.Last(); last.Kind != Error || last.Message != "boom" {
		t.Errorf("unexpected last toast: %+v", last)
	}
}
